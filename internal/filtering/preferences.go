package filtering

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/match-advisor/internal/compat"
	"github.com/spigell/match-advisor/internal/profile"
)

type ageRangeFilter struct {
	toggle
	rng *compat.Range
}

// NewAgeRange creates a filter that removes profiles with a known age outside
// the requested range. Profiles without an age are kept.
func NewAgeRange() Filter {
	return &ageRangeFilter{}
}

func (f *ageRangeFilter) Name() string { return "age_range" }

func (f *ageRangeFilter) Validate(cfg *Config) error {
	f.rng = cfg.requirements().AgeRange
	if f.rng != nil && f.rng.Min != nil && f.rng.Max != nil && *f.rng.Min > *f.rng.Max {
		return fmt.Errorf("age range min %g exceeds max %g", *f.rng.Min, *f.rng.Max)
	}
	return nil
}

func (f *ageRangeFilter) Apply(_ context.Context, deps Deps, p *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := p.Len()
	if f.rng == nil {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	removed := p.Keep(func(item *profile.Profile) bool {
		return item.Age == nil || f.rng.Contains(float64(*item.Age))
	})
	logDropped(deps, "excluding profiles by age range", removed, p.Len())

	return p, Step{Initial: initial, Dropped: len(removed), Left: p.Len()}, nil
}

func (f *ageRangeFilter) Status() Status {
	details := map[string]string{}
	if f.rng != nil {
		if f.rng.Min != nil {
			details["min"] = fmt.Sprintf("%g", *f.rng.Min)
		}
		if f.rng.Max != nil {
			details["max"] = fmt.Sprintf("%g", *f.rng.Max)
		}
	}
	return f.status(f.Name(), details)
}

type categoryFilter struct {
	toggle
	name    string
	allowed func(*compat.Requirements) []string
	values  func(*profile.Profile) []string
	list    []string
}

// NewCategory creates a filter that keeps profiles whose value is in the
// requested list. An empty list allows everything and profiles without a
// value are kept.
func NewCategory(name string, allowed func(*compat.Requirements) []string, values func(*profile.Profile) []string) Filter {
	return &categoryFilter{name: name, allowed: allowed, values: values}
}

func (f *categoryFilter) Name() string { return f.name }

func (f *categoryFilter) Validate(cfg *Config) error {
	f.list = f.allowed(cfg.requirements())
	return nil
}

func (f *categoryFilter) Apply(_ context.Context, deps Deps, p *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := p.Len()
	if len(f.list) == 0 {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	removed := p.Keep(func(item *profile.Profile) bool {
		values := f.values(item)
		known := false
		for _, v := range values {
			if v == "" || v == profile.NotSpecified {
				continue
			}
			known = true
			if slices.Contains(f.list, v) {
				return true
			}
		}
		return !known
	})
	logDropped(deps, "excluding profiles by "+f.name, removed, p.Len(), zap.Strings("allowed", f.list))

	return p, Step{Initial: initial, Dropped: len(removed), Left: p.Len()}, nil
}

func (f *categoryFilter) Status() Status {
	details := map[string]string{}
	if len(f.list) > 0 {
		details["allowed"] = strings.Join(f.list, ",")
	}
	return f.status(f.Name(), details)
}

type flagFilter struct {
	toggle
	name     string
	required func(*compat.Requirements) bool
	keep     func(*profile.Profile) bool
	active   bool
}

// NewVerified creates a filter that removes unverified profiles when the
// requirements ask for verification.
func NewVerified() Filter {
	return &flagFilter{
		name:     "verified",
		required: func(r *compat.Requirements) bool { return r.Verification },
		keep:     func(p *profile.Profile) bool { return p.IsVerified },
	}
}

// NewPhotos creates a filter that removes profiles without photos when the
// requirements ask for photos.
func NewPhotos() Filter {
	return &flagFilter{
		name:     "photos",
		required: func(r *compat.Requirements) bool { return r.Photos },
		keep:     (*profile.Profile).HasPhotos,
	}
}

func (f *flagFilter) Name() string { return f.name }

func (f *flagFilter) Validate(cfg *Config) error {
	f.active = f.required(cfg.requirements())
	return nil
}

func (f *flagFilter) Apply(_ context.Context, deps Deps, p *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := p.Len()
	if !f.active {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	removed := p.Keep(f.keep)
	logDropped(deps, "excluding profiles by "+f.name+" requirement", removed, p.Len())

	return p, Step{Initial: initial, Dropped: len(removed), Left: p.Len()}, nil
}

func (f *flagFilter) Status() Status {
	return f.status(f.Name(), map[string]string{"required": fmt.Sprintf("%t", f.active)})
}
