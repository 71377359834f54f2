package server

import (
	"net/url"
	"reflect"
	"testing"
)

func TestRequirementsFromQuery(t *testing.T) {
	reqs, err := requirementsFromQuery(url.Values{
		"ageMin":   {"24"},
		"location": {"Mumbai, Pune", "Delhi"},
		"religion": {"Hindu"},
		"photos":   {"true"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reqs.AgeRange == nil || *reqs.AgeRange.Min != 24 || reqs.AgeRange.Max != nil {
		t.Fatalf("unexpected age range: %+v", reqs.AgeRange)
	}
	if !reflect.DeepEqual(reqs.Location, []string{"Mumbai", "Pune", "Delhi"}) {
		t.Fatalf("unexpected locations: %v", reqs.Location)
	}
	if !reqs.Photos || reqs.Verification {
		t.Fatalf("unexpected flags: %+v", reqs)
	}
}

func TestRequirementsFromQueryEmpty(t *testing.T) {
	reqs, err := requirementsFromQuery(url.Values{"page": {"2"}})
	if err != nil || reqs != nil {
		t.Fatalf("expected no requirements, got %+v, %v", reqs, err)
	}
}

func TestRequirementsFromQueryInvalid(t *testing.T) {
	tests := map[string]url.Values{
		"range without dash": {"ageRange": {"25"}},
		"non numeric age":    {"ageMax": {"thirty"}},
		"inverted range":     {"ageRange": {"40-30"}},
		"bad boolean":        {"verified": {"sometimes"}},
	}

	for name, q := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := requirementsFromQuery(q); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
