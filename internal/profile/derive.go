package profile

import "strings"

type educationRule struct {
	level    string
	keywords []string
}

// educationRules are checked in order; the first matching keyword wins.
var educationRules = []educationRule{
	{level: "Doctorate", keywords: []string{"phd", "ph.d"}},
	{level: "Post Graduate", keywords: []string{"m.tech", "m.e", "ms", "mba", "m."}},
	{level: "Graduate", keywords: []string{"b.tech", "b.e", "b."}},
	{level: "Diploma", keywords: []string{"diploma"}},
	{level: "High School", keywords: []string{"high school", "12th"}},
}

// Derive fills the derived fields of p from its canonical fields.
func Derive(p *Profile) {
	p.AgeGroup = AgeGroup(p.Age)
	p.EducationLevel = EducationLevel(p.Education)
	p.IncomeRange = IncomeRange(p.Income)
	p.IsNearby = p.ProfileTag == TagNearby
	p.IsJustJoined = p.ProfileTag == TagJustJoined
}

func AgeGroup(age *int) string {
	if age == nil {
		return "Unknown"
	}
	switch a := *age; {
	case a < 25:
		return "Young (18-24)"
	case a < 30:
		return "Mid-twenties (25-29)"
	case a < 35:
		return "Early thirties (30-34)"
	case a < 40:
		return "Late thirties (35-39)"
	default:
		return "Mature (40+)"
	}
}

func EducationLevel(education string) string {
	if strings.TrimSpace(education) == "" {
		return NotSpecified
	}

	lower := strings.ToLower(education)
	for _, rule := range educationRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.level
			}
		}
	}

	return "Other"
}

func IncomeRange(income string) string {
	if strings.TrimSpace(income) == "" || income == NoIncome {
		return NotSpecified
	}
	return income
}
