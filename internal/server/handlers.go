package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spigell/match-advisor/internal/ai"
	"github.com/spigell/match-advisor/internal/apperr"
	"github.com/spigell/match-advisor/internal/compat"
	"github.com/spigell/match-advisor/internal/filtering"
	"github.com/spigell/match-advisor/internal/metrics"
	"github.com/spigell/match-advisor/internal/profile"
)

type analyzeRequest struct {
	Profile          json.RawMessage `json:"profile"`
	UserRequirements json.RawMessage `json:"userRequirements"`
}

func (s *Server) analyzeProfile(w http.ResponseWriter, r *http.Request) {
	const title = "Failed to analyze profile"

	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, title, err)
		return
	}

	if !present(req.Profile) {
		s.writeError(w, r, title, apperr.NewValidation("profile", "Profile data is required"))
		return
	}
	if !present(req.UserRequirements) {
		s.writeError(w, r, title, apperr.NewValidation("userRequirements", "User requirements are required"))
		return
	}

	p, err := decodeProfile(req.Profile, "profile")
	if err != nil {
		s.writeError(w, r, title, err)
		return
	}

	reqs, err := decodeRequirements(req.UserRequirements, "userRequirements")
	if err != nil {
		s.writeError(w, r, title, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.AITimeout)
	defer cancel()

	analysis, err := s.analyzer.AnalyzeProfile(ctx, p, reqs)
	if err != nil {
		s.writeError(w, r, title, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"analysis": analysis,
		"message":  "Profile analyzed successfully",
	})
}

type recommendRequest struct {
	Profiles         json.RawMessage `json:"profiles"`
	UserProfile      json.RawMessage `json:"userProfile"`
	UserRequirements json.RawMessage `json:"userRequirements"`
}

func (s *Server) recommendMatches(w http.ResponseWriter, r *http.Request) {
	const title = "Failed to generate recommendations"

	var req recommendRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, title, err)
		return
	}

	var items []json.RawMessage
	if !present(req.Profiles) || json.Unmarshal(req.Profiles, &items) != nil {
		s.writeError(w, r, title, apperr.NewValidation("profiles", "Profiles array is required"))
		return
	}
	if !present(req.UserProfile) {
		s.writeError(w, r, title, apperr.NewValidation("userProfile", "User profile is required"))
		return
	}
	if !present(req.UserRequirements) {
		s.writeError(w, r, title, apperr.NewValidation("userRequirements", "User requirements are required"))
		return
	}

	profiles := make([]*profile.Profile, 0, len(items))
	for i, item := range items {
		p, err := decodeProfile(item, fmt.Sprintf("profiles[%d]", i))
		if err != nil {
			s.writeError(w, r, title, err)
			return
		}
		profiles = append(profiles, p)
	}

	var user map[string]any
	if err := json.Unmarshal(req.UserProfile, &user); err != nil {
		s.writeError(w, r, title, apperr.NewValidation("userProfile", "User profile must be an object"))
		return
	}

	reqs, err := decodeRequirements(req.UserRequirements, "userRequirements")
	if err != nil {
		s.writeError(w, r, title, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.AITimeout)
	defer cancel()

	recommendations, err := s.analyzer.RecommendMatches(ctx, profiles, user, reqs)
	if err != nil {
		s.writeError(w, r, title, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"recommendations": recommendations,
		"message":         "Match recommendations generated successfully",
	})
}

type requirementsRequest struct {
	Requirements json.RawMessage `json:"requirements"`
}

func (s *Server) setRequirements(w http.ResponseWriter, r *http.Request) {
	const title = "Failed to set requirements"

	var req requirementsRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, title, err)
		return
	}

	if !present(req.Requirements) {
		s.writeError(w, r, title, apperr.NewValidation("requirements", "Requirements are required"))
		return
	}

	reqs, err := decodeRequirements(req.Requirements, "requirements")
	if err != nil {
		s.writeError(w, r, title, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"requirements": reqs,
		"message":      "Requirements saved successfully",
	})
}

func (s *Server) listProfiles(w http.ResponseWriter, r *http.Request) {
	const title = "Failed to load profile data"

	reqs, err := requirementsFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, title, err)
		return
	}

	if s.source == nil {
		s.writeError(w, r, title, fmt.Errorf("profile source is not configured"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()

	payload, err := s.source.Fetch(ctx)
	if err != nil {
		s.writeError(w, r, title, err)
		return
	}

	result, err := s.transformAndFilter(ctx, payload, reqs)
	if err != nil {
		s.writeError(w, r, title, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    result,
		"message": "Profiles loaded successfully",
	})
}

type transformRequest struct {
	JeevansathiData map[string]any  `json:"jeevansathiData"`
	UserPreferences json.RawMessage `json:"userPreferences"`
}

func (s *Server) transform(w http.ResponseWriter, r *http.Request) {
	const title = "Failed to transform profile data"

	var req transformRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, title, err)
		return
	}

	if req.JeevansathiData == nil {
		s.writeError(w, r, title, apperr.NewValidation("jeevansathiData", "Jeevansathi data is required"))
		return
	}

	var reqs *compat.Requirements
	if present(req.UserPreferences) {
		var err error
		if reqs, err = decodeRequirements(req.UserPreferences, "userPreferences"); err != nil {
			s.writeError(w, r, title, err)
			return
		}
	}

	result, err := s.transformAndFilter(r.Context(), req.JeevansathiData, reqs)
	if err != nil {
		s.writeError(w, r, title, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    result,
		"message": "Profiles transformed successfully",
	})
}

type compatibilityRequest struct {
	Profile1 json.RawMessage `json:"profile1"`
	Profile2 json.RawMessage `json:"profile2"`
}

func (s *Server) compatibility(w http.ResponseWriter, r *http.Request) {
	const title = "Failed to calculate compatibility"

	var req compatibilityRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, title, err)
		return
	}

	if !present(req.Profile1) || !present(req.Profile2) {
		s.writeError(w, r, title, apperr.NewValidation("profile1", "Both profiles are required"))
		return
	}

	a, err := decodeProfile(req.Profile1, "profile1")
	if err != nil {
		s.writeError(w, r, title, err)
		return
	}
	b, err := decodeProfile(req.Profile2, "profile2")
	if err != nil {
		s.writeError(w, r, title, err)
		return
	}

	result := compat.Pair(a, b)
	metrics.Scores.WithLabelValues("pair").Observe(float64(result.TotalScore))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"compatibility": result,
		"message":       "Compatibility calculated successfully",
	})
}

type evaluateRequest struct {
	Profile      json.RawMessage `json:"profile"`
	Requirements json.RawMessage `json:"requirements"`
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) {
	const title = "Failed to evaluate profile"

	var req evaluateRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, title, err)
		return
	}

	if !present(req.Profile) {
		s.writeError(w, r, title, apperr.NewValidation("profile", "Profile data is required"))
		return
	}
	if !present(req.Requirements) {
		s.writeError(w, r, title, apperr.NewValidation("requirements", "Requirements are required"))
		return
	}

	p, err := decodeProfile(req.Profile, "profile")
	if err != nil {
		s.writeError(w, r, title, err)
		return
	}

	reqs, err := decodeRequirements(req.Requirements, "requirements")
	if err != nil {
		s.writeError(w, r, title, err)
		return
	}

	result := compat.Evaluate(p, reqs)
	metrics.Scores.WithLabelValues("requirements").Observe(float64(result.CompatibilityScore))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"evaluation": result,
		"message":    "Profile evaluated successfully",
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	var handle *ai.ClientHandle
	if s.analyzer != nil {
		handle = s.analyzer.Handle()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"ai":        handle.State().String(),
		"aiModel":   handle.Model(),
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

// transformAndFilter canonicalizes an upstream payload and applies the
// preference filters when requirements were supplied.
func (s *Server) transformAndFilter(ctx context.Context, payload map[string]any, reqs *compat.Requirements) (*profile.SearchResult, error) {
	result, err := profile.Transform(payload, s.now())
	if err != nil {
		return nil, err
	}

	cfg := &filtering.Config{Requirements: reqs, ExcludeFile: s.excludeFile}
	deps := filtering.Deps{Logger: loggerFrom(ctx, s.logger)}

	filtered, err := filtering.Run(ctx, cfg, deps, filtering.Default(), &profile.Profiles{Items: result.Profiles})
	if err != nil {
		return nil, err
	}

	result.Profiles = filtered.Items
	return result, nil
}

func decodeProfile(raw json.RawMessage, field string) (*profile.Profile, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, apperr.NewValidation(field, fmt.Sprintf("Invalid %s: must be an object", field))
	}

	p, err := profile.FromCanonical(m)
	if err != nil {
		return nil, apperr.NewValidation(field, fmt.Sprintf("Invalid %s: %v", field, err))
	}
	return p, nil
}

func decodeRequirements(raw json.RawMessage, field string) (*compat.Requirements, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil, apperr.NewValidation(field, fmt.Sprintf("Invalid %s: must be an object", field))
	}
	return compat.ParseRequirements(m)
}
