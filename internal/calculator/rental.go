package calculator

// BTLParams describes a buy-to-let purchase financed by a repayment mortgage
type BTLParams struct {
	MortgageParams
	MonthlyRent     float64 `json:"monthly_rent" validate:"gte=0"`
	ManagementFee   float64 `json:"management_fee" validate:"gte=0,lte=100"`   // percent of gross rent
	MaintenanceCost float64 `json:"maintenance_cost" validate:"gte=0,lte=100"` // percent of gross rent
	InsuranceCost   float64 `json:"insurance_cost" validate:"gte=0"`           // monthly premium
	VoidPeriods     float64 `json:"void_periods" validate:"gte=0,lte=12"`      // empty months per year
}

type BTLResult struct {
	AnnualIncome       float64 `json:"annual_income"`
	OperatingCosts     float64 `json:"operating_costs"`
	MortgageAnnualCost float64 `json:"mortgage_annual_cost"`
	NetIncome          float64 `json:"net_income"`
	MonthlyCashflow    float64 `json:"monthly_cashflow"`
	YieldGross         float64 `json:"yield_gross"`
	YieldNet           float64 `json:"yield_net"`
}

// CalculateBTLReturns derives annual income, costs and yields for a buy-to-let
func CalculateBTLReturns(params BTLParams) (BTLResult, error) {
	if err := validateParams(params); err != nil {
		return BTLResult{}, err
	}
	if params.PropertyPrice <= 0 {
		return BTLResult{}, &ConfigError{Field: "property_price", Reason: "must be greater than 0"}
	}

	gross := params.MonthlyRent * (12 - params.VoidPeriods)
	operating := (params.ManagementFee+params.MaintenanceCost)/100*gross + params.InsuranceCost*12
	mortgageAnnual := mortgage(params.MortgageParams).MonthlyPayment * 12
	net := gross - operating - mortgageAnnual

	return BTLResult{
		AnnualIncome:       gross,
		OperatingCosts:     operating,
		MortgageAnnualCost: mortgageAnnual,
		NetIncome:          net,
		MonthlyCashflow:    net / 12,
		YieldGross:         gross / params.PropertyPrice * 100,
		YieldNet:           net / params.PropertyPrice * 100,
	}, nil
}

// SAParams describes a short-term accommodation (holiday let) strategy
type SAParams struct {
	MortgageParams
	NightlyRate         float64 `json:"nightly_rate" validate:"gte=0"`
	OccupancyRate       float64 `json:"occupancy_rate" validate:"gte=0,lte=100"` // percent of nights booked
	PlatformFee         float64 `json:"platform_fee" validate:"gte=0,lte=100"`   // percent of gross
	ManagementFee       float64 `json:"management_fee" validate:"gte=0,lte=100"` // percent of gross
	MonthlyRunningCosts float64 `json:"monthly_running_costs" validate:"gte=0"`  // utilities, cleaning, supplies
}

type SAResult struct {
	AnnualIncome       float64 `json:"annual_income"`
	BookedNights       float64 `json:"booked_nights"`
	OperatingCosts     float64 `json:"operating_costs"`
	MortgageAnnualCost float64 `json:"mortgage_annual_cost"`
	NetIncome          float64 `json:"net_income"`
	MonthlyCashflow    float64 `json:"monthly_cashflow"`
	YieldGross         float64 `json:"yield_gross"`
	YieldNet           float64 `json:"yield_net"`
}

// CalculateSAReturns derives annual income, costs and yields for a short-let
func CalculateSAReturns(params SAParams) (SAResult, error) {
	if err := validateParams(params); err != nil {
		return SAResult{}, err
	}
	if params.PropertyPrice <= 0 {
		return SAResult{}, &ConfigError{Field: "property_price", Reason: "must be greater than 0"}
	}

	nights := 365 * params.OccupancyRate / 100
	gross := params.NightlyRate * nights
	operating := (params.PlatformFee+params.ManagementFee)/100*gross + params.MonthlyRunningCosts*12
	mortgageAnnual := mortgage(params.MortgageParams).MonthlyPayment * 12
	net := gross - operating - mortgageAnnual

	return SAResult{
		AnnualIncome:       gross,
		BookedNights:       nights,
		OperatingCosts:     operating,
		MortgageAnnualCost: mortgageAnnual,
		NetIncome:          net,
		MonthlyCashflow:    net / 12,
		YieldGross:         gross / params.PropertyPrice * 100,
		YieldNet:           net / params.PropertyPrice * 100,
	}, nil
}
