package filtering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/match-advisor/internal/profile"
)

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes profiles listed in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, p *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := p.Len()
	if f.path == "" {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	ids, err := ExcludedIDsFromFile(f.path)
	if err != nil {
		return p, Step{}, fmt.Errorf("getting excluded profiles from file: %w", err)
	}

	removed := p.Exclude(ids)
	logDropped(deps, "excluding profiles based on exclude file", removed, p.Len(), zap.String("path", f.path))

	return p, Step{Initial: initial, Dropped: len(removed), Left: p.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return f.status(f.Name(), details)
}

// ExcludedIDsFromFile reads a JSON array of profile ids. An empty file
// excludes nothing.
func ExcludedIDsFromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}

	return ids, nil
}

// AppendExcludedIDs adds ids to the exclude file, creating it when missing.
// Ids already present are not duplicated.
func AppendExcludedIDs(path string, ids []string) error {
	existing, err := ExcludedIDsFromFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	seen := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		seen[id] = struct{}{}
	}

	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		existing = append(existing, id)
	}

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write exclude file %q: %w", path, err)
	}

	return nil
}
