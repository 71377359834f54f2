package profile

import (
	"time"

	"github.com/spigell/match-advisor/internal/apperr"
	"github.com/spigell/match-advisor/internal/jeevansathi"
)

// SearchResult is the canonical view of one upstream search response.
type SearchResult struct {
	Profiles    []*Profile   `json:"profiles"`
	Filters     []Filter     `json:"filters"`
	SearchTypes []SearchType `json:"searchTypes"`
	Pagination  Pagination   `json:"pagination"`
	Metadata    Metadata     `json:"metadata"`
}

type Filter struct {
	ID           string         `json:"id"`
	Label        string         `json:"label"`
	IsSlider     bool           `json:"isSlider"`
	SelectedText string         `json:"selectedText"`
	IsLocked     any            `json:"isLocked"`
	Options      []FilterOption `json:"options"`
}

type FilterOption struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Count      any    `json:"count"`
	IsSelected bool   `json:"isSelected"`
	IsHeading  bool   `json:"isHeading"`
	ParentID   string `json:"parentId"`
	Min        any    `json:"min,omitempty"`
	Max        any    `json:"max,omitempty"`
}

type SearchType struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	IsSelected  bool   `json:"isSelected"`
	Count       any    `json:"count"`
	SearchParam string `json:"searchParam"`
	IsChicklet  bool   `json:"isChicklet"`
}

type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalResults int  `json:"totalResults"`
	HasNext      bool `json:"hasNext"`
}

type Metadata struct {
	SearchID      string `json:"searchId"`
	SearchSummary string `json:"searchSummary"`
	Timestamp     string `json:"timestamp"`
}

// Transform decodes and canonicalizes a raw upstream search payload.
func Transform(payload map[string]any, now time.Time) (*SearchResult, error) {
	response, err := jeevansathi.Decode(payload)
	if err != nil {
		return nil, &apperr.TransformError{Err: err}
	}
	return TransformSearch(response, now)
}

// TransformSearch canonicalizes an upstream search response. Only profile
// items that are not objects cause an error.
func TransformSearch(response *jeevansathi.SearchResponse, now time.Time) (*SearchResult, error) {
	if response == nil {
		return nil, apperr.NewTransform("search response is empty")
	}

	profiles := make([]*Profile, 0, len(response.Profiles))
	for i, item := range response.Profiles {
		p, err := FromAny(item)
		if err != nil {
			return nil, apperr.NewTransform("profiles[%d]: %v", i, err)
		}
		profiles = append(profiles, p)
	}

	currentPage := 1
	if n := ExtractNumber(response.PageIndex); n != nil && *n > 0 {
		currentPage = *n
	}

	totalResults := 0
	if n := ExtractNumber(response.ResultCount); n != nil {
		totalResults = *n
	}

	summary := ""
	if response.SearchSummary != nil {
		summary = response.SearchSummary.Formatted
	}

	return &SearchResult{
		Profiles:    profiles,
		Filters:     transformFilters(response.Clusters),
		SearchTypes: transformSearchTypes(response.SearchTypes),
		Pagination: Pagination{
			CurrentPage:  currentPage,
			TotalResults: totalResults,
			HasNext:      isTrueLiteral(response.NextAvail),
		},
		Metadata: Metadata{
			SearchID:      response.SearchID,
			SearchSummary: summary,
			Timestamp:     now.UTC().Format(time.RFC3339),
		},
	}, nil
}

func transformFilters(clusters *jeevansathi.Clusters) []Filter {
	filters := []Filter{}
	if clusters == nil {
		return filters
	}

	for _, cluster := range clusters.Items {
		options := make([]FilterOption, 0, len(cluster.Options))
		for _, option := range cluster.Options {
			options = append(options, FilterOption{
				ID:         option.ID,
				Label:      option.Label,
				Count:      option.Count,
				IsSelected: isTrueLiteral(option.IsSelected),
				IsHeading:  option.IsHeading == "Y",
				ParentID:   option.ParentID,
				Min:        option.Min,
				Max:        option.Max,
			})
		}

		filters = append(filters, Filter{
			ID:           cluster.ID,
			Label:        cluster.Label,
			IsSlider:     isTrueLiteral(cluster.IsSlider),
			SelectedText: cluster.Text,
			IsLocked:     cluster.IsLocked,
			Options:      options,
		})
	}

	return filters
}

func transformSearchTypes(searchTypes *jeevansathi.SearchTypes) []SearchType {
	out := []SearchType{}
	if searchTypes == nil {
		return out
	}

	for _, st := range searchTypes.Items {
		out = append(out, SearchType{
			ID:          st.ID,
			Label:       st.Label,
			IsSelected:  isTrueLiteral(st.IsSelected),
			Count:       st.Count,
			SearchParam: st.SearchParam,
			IsChicklet:  isTrueLiteral(st.IsChicklet),
		})
	}

	return out
}

// isTrueLiteral matches upstream flags encoded as "true" or true.
func isTrueLiteral(v any) bool {
	return v == true || v == "true"
}
