// Package config loads calculation input files. A file carries the tax
// return, optional prior-year carryovers, and run options.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/finhelm/taxengine/internal/domain"
)

// CalculationInput is the on-disk shape of one calculation request.
type CalculationInput struct {
	TaxReturn domain.TaxReturn           `yaml:"tax_return" json:"tax_return"`
	Prior     domain.PriorYearCarryovers `yaml:"prior_year_carryovers,omitempty" json:"prior_year_carryovers,omitempty"`

	UseCache bool `yaml:"use_cache,omitempty" json:"use_cache,omitempty"`
	Strict   bool `yaml:"strict,omitempty" json:"strict,omitempty"`
}

// InputParser handles parsing of input files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a calculation input from a YAML file.
func (ip *InputParser) LoadFromFile(filename string) (*CalculationInput, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and structurally validates raw YAML input.
func (ip *InputParser) Parse(data []byte) (*CalculationInput, error) {
	var input CalculationInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ip.ValidateInput(&input); err != nil {
		return nil, fmt.Errorf("input validation failed: %w", err)
	}
	return &input, nil
}

// ValidateInput checks the structural minimum the pipeline needs before it
// can even run its own rule set. Rule-level findings belong to the pipeline
// validator, not here.
func (ip *InputParser) ValidateInput(input *CalculationInput) error {
	tr := &input.TaxReturn
	if tr.Taxpayer.FilingStatus == "" {
		return fmt.Errorf("taxpayer filing status is required")
	}
	if !tr.Taxpayer.FilingStatus.Valid() {
		return fmt.Errorf("unknown filing status %q", tr.Taxpayer.FilingStatus)
	}
	if tr.TaxYear == 0 {
		return fmt.Errorf("tax year is required")
	}
	for i, w2 := range tr.Income.W2Forms {
		if w2.Employer == "" {
			return fmt.Errorf("w2 form %d: employer is required", i)
		}
	}
	for i, carry := range input.Prior.FTCCarryovers {
		if carry.OriginYear == 0 {
			return fmt.Errorf("ftc carryover %d: origin year is required", i)
		}
		if carry.OriginalAmount.IsNegative() {
			return fmt.Errorf("ftc carryover %d: original amount cannot be negative", i)
		}
	}
	for i, carry := range input.Prior.MTCCarryforwards {
		if carry.OriginYear == 0 {
			return fmt.Errorf("mtc carryforward %d: origin year is required", i)
		}
	}
	return nil
}
