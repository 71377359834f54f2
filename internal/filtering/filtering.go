package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/match-advisor/internal/compat"
	"github.com/spigell/match-advisor/internal/profile"
)

// Filter represents a single filtering step applied to profiles.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, p *profile.Profiles) (*profile.Profiles, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	Requirements *compat.Requirements
	ExcludeFile  string
}

func (c *Config) requirements() *compat.Requirements {
	if c == nil || c.Requirements == nil {
		return &compat.Requirements{}
	}
	return c.Requirements
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Default returns every preference filter in execution order.
func Default() []Filter {
	return []Filter{
		NewExcludeFile(),
		NewAgeRange(),
		NewCategory("location", func(r *compat.Requirements) []string { return r.Location }, func(p *profile.Profile) []string { return []string{p.Location} }),
		NewCategory("education", func(r *compat.Requirements) []string { return r.Education }, func(p *profile.Profile) []string { return []string{p.Education, p.EducationLevel} }),
		NewCategory("caste", func(r *compat.Requirements) []string { return r.Caste }, func(p *profile.Profile) []string { return []string{p.Caste} }),
		NewCategory("religion", func(r *compat.Requirements) []string { return r.Religion }, func(p *profile.Profile) []string { return []string{p.Religion} }),
		NewCategory("mother_tongue", func(r *compat.Requirements) []string { return r.MotherTongue }, func(p *profile.Profile) []string { return []string{p.MotherTongue} }),
		NewCategory("marital_status", func(r *compat.Requirements) []string { return r.MaritalStatus }, func(p *profile.Profile) []string { return []string{p.MaritalStatus} }),
		NewVerified(),
		NewPhotos(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
// It reports whether such a filter exists.
func DisableByName(steps []Filter, name, reason string) bool {
	found := false
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
			found = true
		}
	}
	return found
}

// Run executes the supplied filters sequentially and returns the remaining profiles.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, p *profile.Profiles) (*profile.Profiles, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !step.IsEnabled() {
			deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Debug("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		p = next
	}

	return p, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// toggle holds the enabled state shared by all filters.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

func (t *toggle) status(name string, details map[string]string) Status {
	return Status{Name: name, Enabled: !t.disabled, Reason: t.reason, Details: details}
}

func logDropped(deps Deps, msg string, removed []string, left int, fields ...zap.Field) {
	if len(removed) == 0 || deps.Logger == nil {
		return
	}
	fields = append(fields,
		zap.Strings("excluded_profiles", removed),
		zap.Int("profiles_left", left),
	)
	deps.Logger.Info(msg, fields...)
}
