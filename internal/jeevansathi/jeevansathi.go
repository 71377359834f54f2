// Package jeevansathi talks to the upstream matrimony search API and reads
// stored search payloads.
package jeevansathi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://www.jeevansathi.com"
	userAgent = "spigell/match-advisor"
)

// Source yields one raw upstream search payload.
type Source interface {
	Fetch(ctx context.Context) (map[string]any, error)
}

type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// Search performs a single search request and returns the raw payload.
func (c *Client) Search(ctx context.Context, params *SearchParams) (map[string]any, error) {
	if params == nil {
		params = &SearchParams{}
	}

	var payload map[string]any
	if err := c.getJSON(ctx, fmt.Sprintf("%s%s", c.APIURL, SearchPath), buildParams(params), &payload); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	if payload == nil {
		payload = make(map[string]any)
	}

	return payload, nil
}

// Source binds the client to fixed search parameters.
func (c *Client) Source(params *SearchParams) Source {
	return &searchSource{client: c, params: params}
}

type searchSource struct {
	client *Client
	params *SearchParams
}

func (s *searchSource) Fetch(ctx context.Context) (map[string]any, error) {
	return s.client.Search(ctx, s.params)
}
