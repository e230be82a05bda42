// Package output renders calculation results for the CLI and assembles the
// content document stored by the report version store.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finhelm/taxengine/internal/pipeline"
)

// ReportGenerator handles result output in various formats.
type ReportGenerator struct{}

// NewReportGenerator creates a new report generator.
func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{}
}

// GenerateReport renders a result in the specified format.
func GenerateReport(res *pipeline.Result, format string) error {
	generator := NewReportGenerator()

	switch format {
	case "console":
		return generator.GenerateConsoleReport(res)
	case "json":
		return generator.GenerateJSONReport(res)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// GenerateConsoleReport prints a line-item summary of the computation.
func (rg *ReportGenerator) GenerateConsoleReport(res *pipeline.Result) error {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("FEDERAL TAX CALCULATION SUMMARY")
	fmt.Println(strings.Repeat("=", 60))

	for _, issue := range res.Errors {
		fmt.Printf("ERROR   [%s] %s: %s\n", issue.RuleID, issue.Path, issue.Message)
	}
	for _, issue := range res.Warnings {
		fmt.Printf("WARNING [%s] %s: %s\n", issue.RuleID, issue.Path, issue.Message)
	}
	if res.Federal == nil {
		fmt.Println("No computation performed.")
		return nil
	}

	f := res.Federal
	fmt.Printf("Tax Year:             %d (%s)\n", f.TaxYear, f.FilingStatus)
	fmt.Printf("Total Income:         %s\n", FormatCurrency(f.TotalIncome))
	fmt.Printf("Adjusted Gross Income:%s\n", FormatCurrency(f.AGI))
	deductionLabel := "Standard Deduction"
	if f.Itemized {
		deductionLabel = "Itemized Deductions"
	}
	fmt.Printf("%-22s%s\n", deductionLabel+":", FormatCurrency(f.DeductionTaken))
	if f.QBIDeduction.IsPositive() {
		fmt.Printf("QBI Deduction:        %s\n", FormatCurrency(f.QBIDeduction))
	}
	fmt.Printf("Taxable Income:       %s\n", FormatCurrency(f.TaxableIncome))
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Regular Tax:          %s\n", FormatCurrency(f.RegularTax))
	if f.AMT.IsPositive() {
		fmt.Printf("Alternative Min Tax:  %s\n", FormatCurrency(f.AMT))
	}
	if f.SETax.IsPositive() {
		fmt.Printf("Self-Employment Tax:  %s\n", FormatCurrency(f.SETax))
	}
	if f.AdditionalTaxes.IsPositive() {
		fmt.Printf("Additional Taxes:     %s\n", FormatCurrency(f.AdditionalTaxes))
	}
	if f.NonrefundableCredits.IsPositive() || f.RefundableCredits.IsPositive() {
		fmt.Printf("Credits:              %s\n", FormatCurrency(f.NonrefundableCredits.Add(f.RefundableCredits)))
	}
	fmt.Printf("Total Tax:            %s\n", FormatCurrency(f.TotalTax))
	fmt.Printf("Payments:             %s\n", FormatCurrency(f.Payments))
	if f.Refund.IsPositive() {
		fmt.Printf("Refund:               %s\n", FormatCurrency(f.Refund))
	} else {
		fmt.Printf("Balance Due:          %s\n", FormatCurrency(f.BalanceDue))
	}
	fmt.Printf("Effective Rate:       %s%%\n", f.EffectiveRate.Mul(decimal.NewFromInt(100)).Round(2))

	for _, risk := range f.AMTRisks {
		fmt.Printf("AMT risk [%s]: %s\n", risk.Code, risk.Message)
	}
	if res.CacheHit {
		fmt.Println("(served from cache)")
	}
	return nil
}

// GenerateJSONReport prints the full result as indented JSON.
func (rg *ReportGenerator) GenerateJSONReport(res *pipeline.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// BuildReportContent assembles the content document the version store
// persists: the headline numbers rounded at emission, plus each computed
// form's summary.
func BuildReportContent(res *pipeline.Result) map[string]any {
	content := map[string]any{
		"success":     res.Success,
		"fingerprint": res.Fingerprint,
	}
	if len(res.Errors) > 0 {
		content["errors"] = res.Errors
	}
	if len(res.Warnings) > 0 {
		content["warnings"] = res.Warnings
	}
	f := res.Federal
	if f == nil {
		return content
	}

	content["tax_year"] = f.TaxYear
	content["filing_status"] = string(f.FilingStatus)
	content["total_income"] = f.TotalIncome.Round(2).String()
	content["agi"] = f.AGI.Round(2).String()
	content["deduction_taken"] = f.DeductionTaken.Round(2).String()
	content["qbi_deduction"] = f.QBIDeduction.Round(2).String()
	content["taxable_income"] = f.TaxableIncome.Round(2).String()
	content["regular_tax"] = f.RegularTax.Round(2).String()
	content["amt"] = f.AMT.Round(2).String()
	content["se_tax"] = f.SETax.Round(2).String()
	content["total_tax"] = f.TotalTax.Round(2).String()
	content["payments"] = f.Payments.Round(2).String()
	content["balance_due"] = f.BalanceDue.Round(2).String()
	content["refund"] = f.Refund.Round(2).String()

	forms := map[string]any{}
	addForm := func(name string, summary map[string]any) {
		if summary != nil {
			forms[name] = summary
		}
	}
	if r := f.Forms.Form6251; r != nil {
		addForm("form_6251", r.Summary())
	}
	if r := f.Forms.Form8582; r != nil {
		addForm("form_8582", r.Summary())
	}
	if r := f.Forms.Form1116; r != nil {
		addForm("form_1116", r.Summary())
	}
	if r := f.Forms.Form8606; r != nil {
		addForm("form_8606", r.Summary())
	}
	if r := f.Forms.Form5329; r != nil {
		addForm("form_5329", r.Summary())
	}
	if r := f.Forms.Form5471; r != nil {
		addForm("form_5471", r.Summary())
	}
	if r := f.Forms.Form8801; r != nil {
		addForm("form_8801", r.Summary())
	}
	if r := f.Forms.Form8814; r != nil {
		addForm("form_8814", r.Summary())
	}
	if r := f.Forms.Form8863; r != nil {
		addForm("form_8863", r.Summary())
	}
	if r := f.Forms.Form982; r != nil {
		addForm("form_982", r.Summary())
	}
	if r := f.Forms.Form5884; r != nil {
		addForm("form_5884", r.Summary())
	}
	if r := f.Forms.Schedule1; r != nil {
		addForm("schedule_1", r.Summary())
	}
	if len(forms) > 0 {
		content["forms"] = forms
	}
	return content
}

// FormatCurrency renders a money amount as $1,234.56.
func FormatCurrency(d decimal.Decimal) string {
	rounded := d.Round(2)
	negative := rounded.IsNegative()
	s := rounded.Abs().StringFixed(2)

	parts := strings.SplitN(s, ".", 2)
	whole := parts[0]
	var grouped []string
	for len(whole) > 3 {
		grouped = append([]string{whole[len(whole)-3:]}, grouped...)
		whole = whole[:len(whole)-3]
	}
	grouped = append([]string{whole}, grouped...)

	out := "$" + strings.Join(grouped, ",") + "." + parts[1]
	if negative {
		return "-" + out
	}
	return out
}
