package calculator

import "math"

// MortgageParams describes a fixed-rate repayment mortgage
type MortgageParams struct {
	PropertyPrice float64 `json:"property_price" validate:"gte=0"`
	Deposit       float64 `json:"deposit" validate:"gte=0,ltefield=PropertyPrice"`
	InterestRate  float64 `json:"interest_rate" validate:"gte=0,lte=100"` // annual, percent
	TermYears     int     `json:"term_years" validate:"gt=0,lte=100"`
}

type MortgageResult struct {
	Principal      float64 `json:"principal"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalInterest  float64 `json:"total_interest"`
	TotalPaid      float64 `json:"total_paid"`
}

// CalculateMortgage applies the standard amortization formula to the borrowed amount
func CalculateMortgage(params MortgageParams) (MortgageResult, error) {
	if err := validateParams(params); err != nil {
		return MortgageResult{}, err
	}
	return mortgage(params), nil
}

func mortgage(params MortgageParams) MortgageResult {
	principal := params.PropertyPrice - params.Deposit
	months := float64(params.TermYears * 12)
	rate := params.InterestRate / 1200

	// (1+r)^n - 1 without cancellation for rates close to zero
	compounded := math.Expm1(months * math.Log1p(rate))
	if rate == 0 || compounded == 0 {
		return MortgageResult{
			Principal:      principal,
			MonthlyPayment: principal / months,
			TotalInterest:  0,
			TotalPaid:      principal,
		}
	}

	monthly := principal * rate * (1 + compounded) / compounded
	totalPaid := monthly * months

	return MortgageResult{
		Principal:      principal,
		MonthlyPayment: monthly,
		TotalInterest:  math.Max(0, totalPaid-principal),
		TotalPaid:      math.Max(principal, totalPaid),
	}
}
