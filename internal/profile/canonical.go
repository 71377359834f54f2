package profile

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// numericKeys are canonical fields holding optional numbers that clients
// often send as labelled text such as "28 yrs".
var numericKeys = []string{"age", "matchScore"}

// FromCanonical decodes a client supplied profile in canonical shape. Values
// may use mixed encodings: numbers as text, booleans as "true" or 1, text as
// numbers. Derived attributes are recomputed.
func FromCanonical(raw map[string]any) (*Profile, error) {
	input := maps.Clone(raw)
	if input == nil {
		input = map[string]any{}
	}

	for _, key := range numericKeys {
		v, ok := input[key]
		if !ok {
			continue
		}
		if n := ExtractNumber(coerceString(v)); n != nil {
			input[key] = *n
		} else {
			delete(input, key)
		}
	}

	var p Profile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       coerceHook,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(input); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	if p.Name == "" {
		p.Name = NameNotProvided
	}
	if p.Photos == nil {
		p.Photos = []string{}
	}
	if p.VerificationSeals == nil {
		p.VerificationSeals = []string{}
	}

	Derive(&p)

	return &p, nil
}

var stringSlice = reflect.TypeOf([]string(nil))

func coerceHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch {
	case to.Kind() == reflect.Bool:
		return coerceBool(data), nil
	case to.Kind() == reflect.String:
		return coerceString(data), nil
	case to.Kind() == reflect.Int:
		return coerceInt(data), nil
	case to == stringSlice:
		return coerceStrings(data), nil
	default:
		return data, nil
	}
}
