package schema

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// EnvelopeVersion is the version of the result document layout.
const EnvelopeVersion = "1.0.0"

// Metadata describes how and from what a result document was produced.
type Metadata struct {
	AnalysisName string   `json:"analysis_name" validate:"required"`
	Timestamp    string   `json:"timestamp" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Version      string   `json:"version" validate:"required"`
	DataSources  []string `json:"data_sources" validate:"required,dive,required"`
	RunID        string   `json:"run_id,omitempty" validate:"omitempty,uuid"`
}

// Envelope is the stable wrapper around every analysis payload.
// Error is set when the payload is a partial result of a failed step.
type Envelope struct {
	Metadata Metadata `json:"metadata" validate:"required"`
	Data     any      `json:"data" validate:"required"`
	Error    string   `json:"error,omitempty"`
}

// NewEnvelope wraps data with metadata stamped at the given time.
func NewEnvelope(name, runID string, sources []string, at time.Time, data any) Envelope {
	if sources == nil {
		sources = []string{}
	}
	return Envelope{
		Metadata: Metadata{
			AnalysisName: name,
			Timestamp:    at.UTC().Format(time.RFC3339),
			Version:      EnvelopeVersion,
			DataSources:  sources,
			RunID:        runID,
		},
		Data: data,
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// getValidator returns the shared validator with json tag names in errors.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		validate = v
	})
	return validate
}

// ValidateEnvelope checks the envelope and, when the payload is a known
// result type, the metric bounds inside it.
func ValidateEnvelope(env Envelope) error {
	v := getValidator()
	if err := v.Struct(env); err != nil {
		return fmt.Errorf("invalid envelope: %w", err)
	}
	switch data := env.Data.(type) {
	case ConcentrationResult:
		return validatePayload(v, data)
	case ConcentrationReport:
		for _, a := range data.Activities {
			if err := validatePayload(v, a.Result); err != nil {
				return fmt.Errorf("activity %s: %w", a.Activity, err)
			}
		}
	case NetworkResult:
		for _, c := range []ConcentrationResult{data.OutStrengthConcentration, data.InStrengthConcentration, data.PageRankConcentration} {
			if err := validatePayload(v, c); err != nil {
				return fmt.Errorf("relation %s: %w", data.Relation, err)
			}
		}
	}
	return nil
}

// validatePayload validates one metric struct.
func validatePayload(v *validator.Validate, payload any) error {
	if err := v.Struct(payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// ReportDocument is one result document written by a report run.
type ReportDocument struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Error string `json:"error,omitempty"`
}
