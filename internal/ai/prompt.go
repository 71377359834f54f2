package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/match-advisor/internal/compat"
	"github.com/spigell/match-advisor/internal/profile"
)

const notProvided = "Not provided"

var (
	//go:embed prompts/analysis.md
	analysisTemplate string

	//go:embed prompts/ranking.md
	rankingTemplate string
)

type promptLine struct {
	label string
	value func(p *profile.Profile) string
}

// analysisLines are always rendered, in this order.
var analysisLines = []promptLine{
	{"Name", func(p *profile.Profile) string { return text(p.Name) }},
	{"Age", func(p *profile.Profile) string { return ageText(p.Age) }},
	{"Education", func(p *profile.Profile) string { return text(p.Education) }},
	{"Occupation", func(p *profile.Profile) string { return text(p.Occupation) }},
	{"Location", func(p *profile.Profile) string { return text(p.Location) }},
	{"Income", func(p *profile.Profile) string { return text(p.Income) }},
	{"Caste", func(p *profile.Profile) string { return text(p.Caste) }},
	{"Religion", func(p *profile.Profile) string { return text(p.Religion) }},
	{"Mother Tongue", func(p *profile.Profile) string { return text(p.MotherTongue) }},
	{"Height", func(p *profile.Profile) string { return text(p.Height) }},
	{"Marital Status", func(p *profile.Profile) string { return text(p.MaritalStatus) }},
	{"Managed By", func(p *profile.Profile) string { return text(p.ManagedBy) }},
	{"Verification Status", func(p *profile.Profile) string {
		if p.IsVerified {
			return "Verified"
		}
		return "Not verified"
	}},
}

// BuildAnalysisPrompt renders the single profile analysis prompt.
func BuildAnalysisPrompt(p *profile.Profile, reqs *compat.Requirements) (string, error) {
	if p == nil {
		return "", fmt.Errorf("profile is required")
	}

	reqsJSON, err := indentJSON(requirementsOrEmpty(reqs))
	if err != nil {
		return "", fmt.Errorf("marshal requirements: %w", err)
	}

	lines := make([]string, 0, len(analysisLines))
	for _, line := range analysisLines {
		lines = append(lines, fmt.Sprintf("%s: %s", line.label, line.value(p)))
	}

	prompt := strings.ReplaceAll(analysisTemplate, "{{REQUIREMENTS_JSON}}", reqsJSON)
	prompt = strings.ReplaceAll(prompt, "{{PROFILE}}", strings.Join(lines, "\n"))
	return prompt, nil
}

// rankCandidate is the reduced profile shape embedded in ranking prompts.
type rankCandidate struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Age          any    `json:"age"`
	Education    string `json:"education"`
	Occupation   string `json:"occupation"`
	Location     string `json:"location"`
	Income       string `json:"income"`
	Caste        string `json:"caste"`
	Religion     string `json:"religion"`
	MotherTongue string `json:"motherTongue"`
}

// BuildRankingPrompt renders the batch ranking prompt.
func BuildRankingPrompt(profiles []*profile.Profile, user map[string]any, reqs *compat.Requirements) (string, error) {
	candidates := make([]rankCandidate, 0, len(profiles))
	for _, p := range profiles {
		if p == nil {
			continue
		}
		var age any = notProvided
		if p.Age != nil {
			age = *p.Age
		}
		candidates = append(candidates, rankCandidate{
			ID:           text(p.ID),
			Name:         text(p.Name),
			Age:          age,
			Education:    text(p.Education),
			Occupation:   text(p.Occupation),
			Location:     text(p.Location),
			Income:       text(p.Income),
			Caste:        text(p.Caste),
			Religion:     text(p.Religion),
			MotherTongue: text(p.MotherTongue),
		})
	}

	if user == nil {
		user = map[string]any{}
	}

	userJSON, err := indentJSON(user)
	if err != nil {
		return "", fmt.Errorf("marshal user profile: %w", err)
	}

	reqsJSON, err := indentJSON(requirementsOrEmpty(reqs))
	if err != nil {
		return "", fmt.Errorf("marshal requirements: %w", err)
	}

	profilesJSON, err := indentJSON(candidates)
	if err != nil {
		return "", fmt.Errorf("marshal profiles: %w", err)
	}

	prompt := strings.ReplaceAll(rankingTemplate, "{{USER_PROFILE_JSON}}", userJSON)
	prompt = strings.ReplaceAll(prompt, "{{REQUIREMENTS_JSON}}", reqsJSON)
	prompt = strings.ReplaceAll(prompt, "{{PROFILES_JSON}}", profilesJSON)
	return prompt, nil
}

func requirementsOrEmpty(reqs *compat.Requirements) *compat.Requirements {
	if reqs == nil {
		return &compat.Requirements{}
	}
	return reqs
}

func indentJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func text(s string) string {
	if strings.TrimSpace(s) == "" {
		return notProvided
	}
	return s
}

func ageText(age *int) string {
	if age == nil {
		return notProvided
	}
	return strconv.Itoa(*age)
}
