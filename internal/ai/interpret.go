package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"

	"github.com/spigell/match-advisor/internal/apperr"
	"github.com/spigell/match-advisor/internal/compat"
)

const (
	fallbackScore     = 70
	fallbackNextSteps = "Review profile manually for more details"

	rankingFallbackInsights        = "AI analysis was limited, manual review recommended"
	rankingFallbackRecommendations = "Review profiles manually for best results"
)

// ExtractJSON returns the greedy span from the first '{' to the last '}'.
func ExtractJSON(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// ParseObject extracts and decodes the JSON object embedded in raw. The
// decoded object is returned as is; shape checks are left to callers.
func ParseObject(raw string) (map[string]any, error) {
	span, ok := ExtractJSON(raw)
	if !ok {
		return nil, &apperr.UpstreamParseError{Reason: "no JSON object found"}
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(span), &data); err != nil {
		return nil, &apperr.UpstreamParseError{Reason: "invalid JSON object", Err: err}
	}

	if data == nil {
		return nil, &apperr.UpstreamParseError{Reason: "JSON value is not an object"}
	}

	return data, nil
}

// InterpretAnalysis turns generated text into an AnalysisResult. The returned
// error is informational: the result is always usable and is the fallback
// whenever err is not nil.
func InterpretAnalysis(raw string) (AnalysisResult, error) {
	data, err := ParseObject(raw)
	if err != nil {
		return FallbackAnalysis(raw), err
	}
	return AnalysisFromMap(data), nil
}

// FallbackAnalysis is the fixed analysis used when generated text cannot be
// interpreted. raw is kept verbatim as the summary.
func FallbackAnalysis(raw string) AnalysisResult {
	return AnalysisResult{
		CompatibilityScore:    fallbackScore,
		OverallRecommendation: compat.Consider,
		PositiveFactors:       []string{"Profile information available"},
		NegativeFactors:       []string{"Unable to perform detailed analysis"},
		ConversationStarters:  []string{"General interests and background"},
		RedFlags:              []string{},
		Summary:               raw,
		NextSteps:             fallbackNextSteps,
		FallbackUsed:          true,
	}
}

// AnalysisFromMap reads the known keys of a decoded response and substitutes
// defaults for missing or mistyped ones.
func AnalysisFromMap(data map[string]any) AnalysisResult {
	return AnalysisResult{
		CompatibilityScore:    coerceScore(data["compatibilityScore"], fallbackScore),
		OverallRecommendation: coerceRecommendation(data["overallRecommendation"]),
		PositiveFactors:       coerceStrings(data["positiveFactors"]),
		NegativeFactors:       coerceStrings(data["negativeFactors"]),
		ConversationStarters:  coerceStrings(data["conversationStarters"]),
		RedFlags:              coerceStrings(data["redFlags"]),
		Summary:               coerceString(data["summary"]),
		NextSteps:             coerceString(data["nextSteps"]),
	}
}

// InterpretRanking turns generated text into a RankingResult over ids, the
// input profile ids in input order.
func InterpretRanking(raw string, ids []string, rnd *rand.Rand) (RankingResult, error) {
	data, err := ParseObject(raw)
	if err != nil {
		return FallbackRanking(ids, rnd), err
	}

	items, ok := data["rankings"].([]any)
	if !ok {
		return FallbackRanking(ids, rnd), &apperr.UpstreamParseError{Reason: "rankings is not a list"}
	}

	return RankingResult{
		Rankings:        reconcile(items, ids, rnd),
		OverallInsights: coerceString(data["overallInsights"]),
		Recommendations: coerceString(data["recommendations"]),
	}, nil
}

// FallbackRanking keeps the input order and assigns a bounded pseudo-random
// score in [60, 90) to every profile.
func FallbackRanking(ids []string, rnd *rand.Rand) RankingResult {
	rankings := make([]RankEntry, 0, len(ids))
	for i, id := range ids {
		entry := fallbackEntry(id, rnd)
		entry.Rank = i + 1
		rankings = append(rankings, entry)
	}

	return RankingResult{
		Rankings:        rankings,
		OverallInsights: rankingFallbackInsights,
		Recommendations: rankingFallbackRecommendations,
		FallbackUsed:    true,
	}
}

func fallbackEntry(id string, rnd *rand.Rand) RankEntry {
	return RankEntry{
		ProfileID:          id,
		CompatibilityScore: rnd.IntN(30) + 60,
		Recommendation:     compat.Consider,
		KeyPoints:          []string{"Manual review recommended"},
		Concerns:           []string{"AI analysis unavailable"},
		Summary:            "Please review manually",
	}
}

type rankedItem struct {
	rank  float64
	order int
	entry RankEntry
}

// reconcile maps parsed entries onto the input profiles so that every input
// appears exactly once. Entries are ordered by their reported rank; unknown
// or repeated ids are dropped, inputs the response skipped are appended with
// fallback content, and ranks are renumbered 1..N.
func reconcile(items []any, ids []string, rnd *rand.Rand) []RankEntry {
	parsed := make([]rankedItem, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}

		rank := coerceFloat(m["rank"])
		if math.IsNaN(rank) {
			rank = math.Inf(1)
		}

		parsed = append(parsed, rankedItem{
			rank:  rank,
			order: i,
			entry: RankEntry{
				ProfileID:          coerceString(m["profileId"]),
				CompatibilityScore: coerceScore(m["compatibilityScore"], 0),
				Recommendation:     coerceRecommendation(m["recommendation"]),
				KeyPoints:          coerceStrings(m["keyPoints"]),
				Concerns:           coerceStrings(m["concerns"]),
				Summary:            coerceString(m["summary"]),
			},
		})
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		if parsed[i].rank == parsed[j].rank {
			return parsed[i].order < parsed[j].order
		}
		return parsed[i].rank < parsed[j].rank
	})

	used := make([]bool, len(ids))
	claim := func(id string) bool {
		for i, candidate := range ids {
			if !used[i] && candidate == id {
				used[i] = true
				return true
			}
		}
		return false
	}

	rankings := make([]RankEntry, 0, len(ids))
	for _, item := range parsed {
		if !claim(item.entry.ProfileID) {
			continue
		}
		rankings = append(rankings, item.entry)
	}

	for i, id := range ids {
		if !used[i] {
			rankings = append(rankings, fallbackEntry(id, rnd))
		}
	}

	for i := range rankings {
		rankings[i].Rank = i + 1
	}

	return rankings
}

func coerceScore(v any, def int) int {
	f := coerceFloat(v)
	if math.IsNaN(f) {
		return def
	}
	return int(math.Round(min(max(f, 0), 100)))
}

func coerceRecommendation(v any) compat.Recommendation {
	s := strings.TrimSpace(coerceString(v))
	for _, known := range []compat.Recommendation{
		compat.HighlyRecommended,
		compat.Recommended,
		compat.Consider,
		compat.NotRecommended,
	} {
		if strings.EqualFold(s, string(known)) {
			return known
		}
	}
	return compat.Consider
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "%"))
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	}
	return out
}
