package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/georgecharles/verygoodestates/internal/calculator"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "calculator",
		Short:         "Property investment calculators",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newMortgageCmd())
	rootCmd.AddCommand(newBTLCmd())
	rootCmd.AddCommand(newShortLetCmd())
	return rootCmd
}

func addMortgageFlags(cmd *cobra.Command, p *calculator.MortgageParams) {
	cmd.Flags().Float64Var(&p.PropertyPrice, "price", 250000, "Property price")
	cmd.Flags().Float64Var(&p.Deposit, "deposit", 50000, "Deposit")
	cmd.Flags().Float64Var(&p.InterestRate, "rate", 4.5, "Annual interest rate in percent")
	cmd.Flags().IntVar(&p.TermYears, "term", 25, "Mortgage term in years")
}

func newMortgageCmd() *cobra.Command {
	var params calculator.MortgageParams

	cmd := &cobra.Command{
		Use:   "mortgage",
		Short: "Monthly repayment for a fixed-rate mortgage",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := calculator.CalculateMortgage(params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			row(out, "Loan amount", result.Principal)
			row(out, "Monthly payment", result.MonthlyPayment)
			row(out, "Total interest", result.TotalInterest)
			row(out, "Total paid", result.TotalPaid)
			return nil
		},
	}
	addMortgageFlags(cmd, &params)
	return cmd
}

func newBTLCmd() *cobra.Command {
	var params calculator.BTLParams

	cmd := &cobra.Command{
		Use:   "btl",
		Short: "Returns for a buy-to-let",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := calculator.CalculateBTLReturns(params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			row(out, "Annual income", result.AnnualIncome)
			row(out, "Operating costs", result.OperatingCosts)
			row(out, "Mortgage costs", result.MortgageAnnualCost)
			row(out, "Net income", result.NetIncome)
			row(out, "Monthly cashflow", result.MonthlyCashflow)
			percent(out, "Gross yield", result.YieldGross)
			percent(out, "Net yield", result.YieldNet)
			return nil
		},
	}
	addMortgageFlags(cmd, &params.MortgageParams)
	cmd.Flags().Float64Var(&params.MonthlyRent, "rent", 1200, "Monthly rent")
	cmd.Flags().Float64Var(&params.ManagementFee, "management", 10, "Management fee in percent of rent")
	cmd.Flags().Float64Var(&params.MaintenanceCost, "maintenance", 1, "Maintenance in percent of rent")
	cmd.Flags().Float64Var(&params.InsuranceCost, "insurance", 30, "Monthly insurance premium")
	cmd.Flags().Float64Var(&params.VoidPeriods, "voids", 1, "Empty months per year")
	return cmd
}

func newShortLetCmd() *cobra.Command {
	var params calculator.SAParams

	cmd := &cobra.Command{
		Use:   "shortlet",
		Short: "Returns for a short-term let",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := calculator.CalculateSAReturns(params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			row(out, "Booked nights", result.BookedNights)
			row(out, "Annual income", result.AnnualIncome)
			row(out, "Operating costs", result.OperatingCosts)
			row(out, "Mortgage costs", result.MortgageAnnualCost)
			row(out, "Net income", result.NetIncome)
			row(out, "Monthly cashflow", result.MonthlyCashflow)
			percent(out, "Gross yield", result.YieldGross)
			percent(out, "Net yield", result.YieldNet)
			return nil
		},
	}
	addMortgageFlags(cmd, &params.MortgageParams)
	cmd.Flags().Float64Var(&params.NightlyRate, "nightly", 150, "Nightly rate")
	cmd.Flags().Float64Var(&params.OccupancyRate, "occupancy", 70, "Occupancy in percent")
	cmd.Flags().Float64Var(&params.PlatformFee, "platform", 15, "Platform fee in percent")
	cmd.Flags().Float64Var(&params.ManagementFee, "management", 20, "Management fee in percent")
	cmd.Flags().Float64Var(&params.MonthlyRunningCosts, "running", 300, "Monthly running costs")
	return cmd
}

func row(w io.Writer, label string, value float64) {
	fmt.Fprintf(w, "%-18s %12.2f\n", label+":", value)
}

func percent(w io.Writer, label string, value float64) {
	fmt.Fprintf(w, "%-18s %11.2f%%\n", label+":", value)
}
