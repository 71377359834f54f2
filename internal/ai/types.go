package ai

import "github.com/spigell/match-advisor/internal/compat"

// AnalysisResult is the narrative assessment of one profile. Every field is
// populated whether it came from parsed output or from the fallback.
type AnalysisResult struct {
	CompatibilityScore    int                   `json:"compatibilityScore"`
	OverallRecommendation compat.Recommendation `json:"overallRecommendation"`
	PositiveFactors       []string              `json:"positiveFactors"`
	NegativeFactors       []string              `json:"negativeFactors"`
	ConversationStarters  []string              `json:"conversationStarters"`
	RedFlags              []string              `json:"redFlags"`
	Summary               string                `json:"summary"`
	NextSteps             string                `json:"nextSteps"`

	AIGenerated  bool   `json:"aiGenerated"`
	FallbackUsed bool   `json:"fallbackUsed"`
	Timestamp    string `json:"timestamp"`
	ProfileID    string `json:"profileId"`
}

// RankEntry is one ranked profile.
type RankEntry struct {
	ProfileID          string                `json:"profileId"`
	Rank               int                   `json:"rank"`
	CompatibilityScore int                   `json:"compatibilityScore"`
	Recommendation     compat.Recommendation `json:"recommendation"`
	KeyPoints          []string              `json:"keyPoints"`
	Concerns           []string              `json:"concerns"`
	Summary            string                `json:"summary"`
}

// RankingResult orders a batch of profiles. Ranks always form 1..N over
// the input batch.
type RankingResult struct {
	Rankings        []RankEntry `json:"rankings"`
	OverallInsights string      `json:"overallInsights"`
	Recommendations string      `json:"recommendations"`

	AIGenerated   bool   `json:"aiGenerated"`
	FallbackUsed  bool   `json:"fallbackUsed"`
	Timestamp     string `json:"timestamp"`
	TotalProfiles int    `json:"totalProfiles"`
}
