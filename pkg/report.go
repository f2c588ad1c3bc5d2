// Package pkg provides functionality for processing Xbox disc images.
// This file contains the YAML exporter for batch results.
package pkg

import (
	"fmt"
	"io"

	"github.com/hansbonini/xisotools/pkg/common"
	"gopkg.in/yaml.v3"
)

// BatchReport is the YAML document written after a batch run
type BatchReport struct {
	Total     int          `yaml:"total"`
	Succeeded int          `yaml:"succeeded"`
	Failed    int          `yaml:"failed"`
	Items     []ItemResult `yaml:"items"`
}

// NewBatchReport summarizes results
func NewBatchReport(results []ItemResult) *BatchReport {
	report := &BatchReport{Total: len(results), Items: results}
	for _, result := range results {
		if result.Layout == LayoutFailed {
			report.Failed++
		} else {
			report.Succeeded++
		}
	}
	return report
}

// ExportReport writes the batch results as YAML
func ExportReport(results []ItemResult, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(NewBatchReport(results)); err != nil {
		return fmt.Errorf("%s: %w", common.ErrFailedToWriteReport, err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("%s: %w", common.ErrFailedToWriteReport, err)
	}
	return nil
}
