package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spigell/match-advisor/internal/apperr"
	"github.com/spigell/match-advisor/internal/compat"
)

var listParams = []string{"location", "education", "caste", "religion", "motherTongue", "maritalStatus"}

// requirementsFromQuery builds listing filters from query parameters. It
// returns nil when no filter parameter is present.
//
// Accepted forms: ageRange=25-30 or ageMin/ageMax, list parameters either
// repeated or comma separated, and verified/photos booleans.
func requirementsFromQuery(q url.Values) (*compat.Requirements, error) {
	raw := make(map[string]any)

	ageRange, err := ageRangeFromQuery(q)
	if err != nil {
		return nil, err
	}
	if ageRange != nil {
		raw["ageRange"] = ageRange
	}

	for _, name := range listParams {
		if values := splitList(q[name]); len(values) > 0 {
			raw[name] = values
		}
	}

	for param, field := range map[string]string{"verified": "verification", "photos": "photos"} {
		value := strings.TrimSpace(q.Get(param))
		if value == "" {
			continue
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, apperr.NewValidation(param, fmt.Sprintf("Invalid %s: %q is not a boolean", param, value))
		}
		raw[field] = b
	}

	if len(raw) == 0 {
		return nil, nil
	}

	return compat.ParseRequirements(raw)
}

func ageRangeFromQuery(q url.Values) (map[string]any, error) {
	var minValue, maxValue string

	if value := strings.TrimSpace(q.Get("ageRange")); value != "" {
		lo, hi, ok := strings.Cut(value, "-")
		if !ok {
			return nil, apperr.NewValidation("ageRange", fmt.Sprintf("Invalid ageRange %q: expected min-max", value))
		}
		minValue, maxValue = strings.TrimSpace(lo), strings.TrimSpace(hi)
	} else {
		minValue, maxValue = strings.TrimSpace(q.Get("ageMin")), strings.TrimSpace(q.Get("ageMax"))
	}

	if minValue == "" && maxValue == "" {
		return nil, nil
	}

	result := make(map[string]any, 2)
	for key, value := range map[string]string{"min": minValue, "max": maxValue} {
		if value == "" {
			continue
		}
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, apperr.NewValidation("ageRange", fmt.Sprintf("Invalid age %q", value))
		}
		result[key] = n
	}

	return result, nil
}

func splitList(values []string) []any {
	var result []any
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				result = append(result, item)
			}
		}
	}
	return result
}
