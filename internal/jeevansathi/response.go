package jeevansathi

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

// SearchResponse is the subset of the upstream search payload we consume.
// Flag-like fields stay untyped because upstream mixes "true", true and "Y".
type SearchResponse struct {
	Profiles      []any          `json:"profiles"`
	SearchTypes   *SearchTypes   `json:"searchTypes"`
	ResultCount   string         `json:"result_count"`
	Clusters      *Clusters      `json:"clusters"`
	PageIndex     string         `json:"page_index"`
	NextAvail     any            `json:"next_avail"`
	SearchID      string         `json:"searchid"`
	SearchSummary *SearchSummary `json:"searchSummary"`
}

type SearchSummary struct {
	Formatted string `json:"searchSummaryFormatted"`
}

type Clusters struct {
	Items []Cluster `json:"result_arr"`
}

type Cluster struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	IsSlider any             `json:"isSlider"`
	Text     string          `json:"stext"`
	IsLocked any             `json:"isLocked"`
	Options  []ClusterOption `json:"arr2"`
}

type ClusterOption struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Count      any    `json:"count"`
	IsSelected any    `json:"isSelected"`
	IsHeading  any    `json:"isHeading"`
	ParentID   string `json:"parentId"`
	Min        any    `json:"min"`
	Max        any    `json:"max"`
}

type SearchTypes struct {
	Items []SearchType `json:"arr2"`
}

type SearchType struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	IsSelected  any    `json:"isSelected"`
	Count       any    `json:"count"`
	SearchParam string `json:"searchParam"`
	IsChicklet  any    `json:"isChicklet"`
}

// Decode converts a raw payload into a SearchResponse, tolerating numbers
// where strings are expected.
func Decode(payload map[string]any) (*SearchResponse, error) {
	var response SearchResponse

	cfg := &mapstructure.DecoderConfig{
		Result:           &response,
		TagName:          "json",
		WeaklyTypedInput: true,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	return &response, nil
}

// FileSource reads a stored search payload from disk.
type FileSource struct {
	Path string
}

func (s *FileSource) Fetch(_ context.Context) (map[string]any, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read search payload %q: %w", s.Path, err)
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse search payload %q: %w", s.Path, err)
	}

	if payload == nil {
		payload = make(map[string]any)
	}

	return payload, nil
}
