// Package compat implements the deterministic compatibility scorers.
package compat

import (
	"github.com/spigell/match-advisor/internal/profile"
)

const maxScore = 100

type Band string

const (
	Excellent Band = "Excellent"
	Good      Band = "Good"
	Average   Band = "Average"
	Poor      Band = "Poor"
)

type Recommendation string

const (
	HighlyRecommended Recommendation = "Highly Recommended"
	Recommended       Recommendation = "Recommended"
	Consider          Recommendation = "Consider"
	NotRecommended    Recommendation = "Not Recommended"
)

// Factor is one scored compatibility dimension.
type Factor struct {
	Factor string `json:"factor"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// Result is the profile-vs-profile compatibility outcome.
type Result struct {
	TotalScore int      `json:"totalScore"`
	Percentage int      `json:"percentage"`
	Factors    []Factor `json:"factors"`
	Band       Band     `json:"compatibility"`
}

// RequirementsResult is the profile-vs-requirements outcome.
type RequirementsResult struct {
	CompatibilityScore int            `json:"compatibilityScore"`
	Factors            []string       `json:"factors"`
	Recommendation     Recommendation `json:"recommendation"`
}

// BandFor maps a clamped score to its band.
func BandFor(score int) Band {
	switch {
	case score >= 80:
		return Excellent
	case score >= 60:
		return Good
	case score >= 40:
		return Average
	default:
		return Poor
	}
}

// RecommendationFor maps a clamped requirements score to a recommendation.
func RecommendationFor(score int) Recommendation {
	switch {
	case score >= 70:
		return HighlyRecommended
	case score >= 50:
		return Recommended
	case score >= 30:
		return Consider
	default:
		return NotRecommended
	}
}

func clamp(score int) int {
	return min(max(score, 0), maxScore)
}

type pairFactor func(a, b *profile.Profile) Factor

// pairFactors run in display order.
var pairFactors = []pairFactor{
	ageFactor,
	matchFactor("Education", 20, "Same education level", 10, "Different education levels", func(p *profile.Profile) string { return p.Education }),
	matchFactor("Location", 15, "Same city", 8, "Different cities", func(p *profile.Profile) string { return p.Location }),
	matchFactor("Caste", 15, "Same caste", 5, "Different caste", func(p *profile.Profile) string { return p.Caste }),
	incomeFactor,
	matchFactor("Language", 15, "Same mother tongue", 5, "Different mother tongues", func(p *profile.Profile) string { return p.MotherTongue }),
}

// Pair scores two canonical profiles against each other. It never fails.
func Pair(a, b *profile.Profile) Result {
	if a == nil {
		a = &profile.Profile{}
	}
	if b == nil {
		b = &profile.Profile{}
	}

	factors := make([]Factor, 0, len(pairFactors))
	sum := 0
	for _, fn := range pairFactors {
		f := fn(a, b)
		sum += f.Score
		factors = append(factors, f)
	}

	total := clamp(sum)

	return Result{
		TotalScore: total,
		Percentage: total,
		Factors:    factors,
		Band:       BandFor(total),
	}
}

func ageFactor(a, b *profile.Profile) Factor {
	if a.Age == nil || b.Age == nil {
		return Factor{Factor: "Age", Score: 5, Reason: "Age information missing"}
	}

	diff := *a.Age - *b.Age
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff <= 3:
		return Factor{Factor: "Age", Score: 25, Reason: "Similar age range"}
	case diff <= 5:
		return Factor{Factor: "Age", Score: 15, Reason: "Acceptable age difference"}
	default:
		return Factor{Factor: "Age", Score: 5, Reason: "Large age difference"}
	}
}

func matchFactor(name string, same int, sameReason string, diff int, diffReason string, field func(*profile.Profile) string) pairFactor {
	return func(a, b *profile.Profile) Factor {
		if field(a) == field(b) {
			return Factor{Factor: name, Score: same, Reason: sameReason}
		}
		return Factor{Factor: name, Score: diff, Reason: diffReason}
	}
}

func incomeFactor(a, b *profile.Profile) Factor {
	if a.Income != "" && b.Income != "" {
		return Factor{Factor: "Income", Score: 10, Reason: "Both have income information"}
	}
	return Factor{Factor: "Income", Score: 0, Reason: "Income information missing"}
}

// Evaluate scores a profile against stated requirements. Only matched
// factors are listed. It never fails.
func Evaluate(p *profile.Profile, r *Requirements) RequirementsResult {
	factors := []string{}
	sum := 0

	grant := func(points int, reason string) {
		sum += points
		factors = append(factors, reason)
	}

	if p == nil {
		p = &profile.Profile{}
	}
	if r == nil {
		r = &Requirements{}
	}

	if r.AgeRange.IsSet() && p.Age != nil && r.AgeRange.Contains(float64(*p.Age)) {
		grant(20, "Age matches preference")
	}

	if includes(r.Education, p.Education, p.EducationLevel) {
		grant(15, "Education matches preference")
	}

	if includes(r.Location, p.Location) {
		grant(15, "Location matches preference")
	}

	// Presence only; the profile income is not compared against the range.
	if r.Income != nil && p.Income != "" {
		grant(10, "Income information available")
	}

	if includes(r.Caste, p.Caste) {
		grant(15, "Caste matches preference")
	}

	if p.IsVerified {
		grant(10, "Verified profile")
	}

	if p.HasPhotos() {
		grant(5, "Photos available")
	}

	score := clamp(sum)

	return RequirementsResult{
		CompatibilityScore: score,
		Factors:            factors,
		Recommendation:     RecommendationFor(score),
	}
}
