package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/spigell/match-advisor/internal/compat"
	"github.com/spigell/match-advisor/internal/filtering"
	"github.com/spigell/match-advisor/internal/profile"
)

// loadProfiles fetches one search page, canonicalizes it and applies the
// preference filters for reqs.
func loadProfiles(ctx context.Context, config *Config, reqs *compat.Requirements, steps []filtering.Filter, logger *zap.Logger) (*profile.Profiles, error) {
	source, err := newSource(config.Source, logger)
	if err != nil {
		return nil, err
	}

	payload, err := source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profiles: %w", err)
	}

	result, err := profile.Transform(payload, time.Now())
	if err != nil {
		return nil, err
	}

	logger.Info("getting profiles",
		zap.Int("count", len(result.Profiles)),
		zap.Int("total", result.Pagination.TotalResults),
	)

	cfg := &filtering.Config{Requirements: reqs, ExcludeFile: config.ExcludeFile}
	return filtering.Run(ctx, cfg, filtering.Deps{Logger: logger}, steps, &profile.Profiles{Items: result.Profiles})
}

// filterSteps returns the default filters with the configured ones disabled.
func filterSteps(config *Config, logger *zap.Logger) []filtering.Filter {
	steps := filtering.Default()
	for _, name := range config.SkipFilters {
		if !filtering.DisableByName(steps, name, "skipped by configuration") {
			logger.Warn("unknown filter in skip list", zap.String("name", name))
		}
	}
	return steps
}

// pickProfile returns the profile with id, or asks the user to choose one.
func pickProfile(profiles *profile.Profiles, id, label string) (*profile.Profile, error) {
	if id != "" {
		p := profiles.FindByID(id)
		if p == nil {
			return nil, fmt.Errorf("profile %q not found", id)
		}
		return p, nil
	}

	if profiles.Len() == 0 {
		return nil, fmt.Errorf("no profiles to choose from")
	}

	items := make([]string, 0, profiles.Len())
	for _, p := range profiles.Items {
		items = append(items, profileLabel(p))
	}

	picker := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}

	idx, _, err := picker.Run()
	if err != nil {
		return nil, err
	}

	return profiles.Items[idx], nil
}

func profileLabel(p *profile.Profile) string {
	age := "?"
	if p.Age != nil {
		age = fmt.Sprint(*p.Age)
	}
	return fmt.Sprintf("%s %s / %s / %s / %s", p.ID, p.Name, age, p.Location, p.Education)
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
