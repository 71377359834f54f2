package compat

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"

	"github.com/spigell/match-advisor/internal/apperr"
)

//go:embed requirements.schema.json
var requirementsSchema string

var schemaLoader = gojsonschema.NewStringLoader(requirementsSchema)

// Range is an inclusive numeric range. A nil bound is unbounded.
type Range struct {
	Min *float64 `json:"min" mapstructure:"min"`
	Max *float64 `json:"max" mapstructure:"max"`
}

// IsSet reports whether at least one bound is present.
func (r *Range) IsSet() bool {
	return r != nil && (r.Min != nil || r.Max != nil)
}

// Contains reports whether v falls inside the range.
func (r *Range) Contains(v float64) bool {
	if r == nil {
		return false
	}
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

func (r *Range) validate(field string) error {
	if r == nil || r.Min == nil || r.Max == nil {
		return nil
	}
	if *r.Min > *r.Max {
		return apperr.NewValidation(field, fmt.Sprintf("min (%g) must not exceed max (%g)", *r.Min, *r.Max))
	}
	return nil
}

// Requirements is the preference set a user states about a partner.
type Requirements struct {
	AgeRange *Range `json:"ageRange,omitempty" mapstructure:"ageRange"`
	Income   *Range `json:"income,omitempty" mapstructure:"income"`
	Height   *Range `json:"height,omitempty" mapstructure:"height"`

	Education     []string `json:"education,omitempty" mapstructure:"education"`
	Occupation    []string `json:"occupation,omitempty" mapstructure:"occupation"`
	Location      []string `json:"location,omitempty" mapstructure:"location"`
	Caste         []string `json:"caste,omitempty" mapstructure:"caste"`
	Religion      []string `json:"religion,omitempty" mapstructure:"religion"`
	MotherTongue  []string `json:"motherTongue,omitempty" mapstructure:"motherTongue"`
	MaritalStatus []string `json:"maritalStatus,omitempty" mapstructure:"maritalStatus"`
	Diet          []string `json:"diet,omitempty" mapstructure:"diet"`
	ProfileTag    []string `json:"profileTag,omitempty" mapstructure:"profileTag"`

	Verification bool `json:"verification" mapstructure:"verification"`
	Photos       bool `json:"photos" mapstructure:"photos"`

	Priorities   map[string]string `json:"priorities,omitempty" mapstructure:"priorities"`
	DealBreakers []string          `json:"dealBreakers,omitempty" mapstructure:"dealBreakers"`
}

// ParseRequirements validates a decoded JSON object against the requirements
// schema and converts it into Requirements.
func ParseRequirements(raw map[string]any) (*Requirements, error) {
	if raw == nil {
		return nil, apperr.NewValidation("requirements", "Requirements are required")
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validate requirements: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, apperr.NewValidation("requirements", strings.Join(errs, "; "))
	}

	var reqs Requirements
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &reqs,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, apperr.NewValidation("requirements", err.Error())
	}

	if err := reqs.Validate(); err != nil {
		return nil, err
	}

	return &reqs, nil
}

// Validate checks that every range has min <= max when both bounds are set.
func (r *Requirements) Validate() error {
	ranges := []struct {
		field string
		rng   *Range
	}{
		{"ageRange", r.AgeRange},
		{"income", r.Income},
		{"height", r.Height},
	}

	for _, item := range ranges {
		if err := item.rng.validate(item.field); err != nil {
			return err
		}
	}

	return nil
}

// includes reports whether any of values is listed in list.
func includes(list []string, values ...string) bool {
	for _, v := range values {
		if v != "" && slices.Contains(list, v) {
			return true
		}
	}
	return false
}
