package ai

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/match-advisor/internal/apperr"
	"github.com/spigell/match-advisor/internal/compat"
	"github.com/spigell/match-advisor/internal/logger"
	"github.com/spigell/match-advisor/internal/metrics"
	"github.com/spigell/match-advisor/internal/profile"
	"github.com/spigell/match-advisor/internal/utils"
)

const (
	KindAnalysis = "analysis"
	KindRanking  = "ranking"

	defaultMaxLogLength = 200
)

// Analyzer runs AI-assisted analyses. Each call makes at most one generator
// request and always returns a structurally valid result unless the handle is
// unavailable.
type Analyzer struct {
	handle    *ClientHandle
	logger    *zap.Logger
	now       func() time.Time
	seed      func() (uint64, uint64)
	maxLogLen int
}

type Option func(*Analyzer)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithSeed fixes the seed of fallback ranking scores. Every call still gets
// its own generator.
func WithSeed(seed1, seed2 uint64) Option {
	return func(a *Analyzer) {
		a.seed = func() (uint64, uint64) { return seed1, seed2 }
	}
}

func WithMaxLogLength(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxLogLen = n
		}
	}
}

func NewAnalyzer(handle *ClientHandle, log *zap.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		handle:    handle,
		logger:    logger.WithCommonFields(log, handle.Provider(), handle.Model()),
		now:       time.Now,
		seed:      randomSeed,
		maxLogLen: defaultMaxLogLength,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Handle returns the client handle the analyzer was built with.
func (a *Analyzer) Handle() *ClientHandle {
	return a.handle
}

// AnalyzeProfile assesses one profile against the user's requirements.
func (a *Analyzer) AnalyzeProfile(ctx context.Context, p *profile.Profile, reqs *compat.Requirements) (*AnalysisResult, error) {
	if p == nil {
		return nil, apperr.NewValidation("profile", "Profile data is required")
	}

	log := logger.WithFields(a.logger, logger.AnalysisFields(KindAnalysis, p.ID)...)

	generator, err := a.handle.Generator()
	if err != nil {
		metrics.Analyses.WithLabelValues(KindAnalysis, metrics.OutcomeUnavailable).Inc()
		return nil, err
	}

	prompt, err := BuildAnalysisPrompt(p, reqs)
	if err != nil {
		return nil, err
	}

	raw := a.generate(ctx, log, generator, KindAnalysis, prompt)

	result, parseErr := InterpretAnalysis(raw)
	a.record(log, KindAnalysis, parseErr)

	result.AIGenerated = true
	result.Timestamp = a.timestamp()
	result.ProfileID = p.ID

	return &result, nil
}

// RecommendMatches ranks a batch of profiles with a single generator call.
func (a *Analyzer) RecommendMatches(ctx context.Context, profiles []*profile.Profile, user map[string]any, reqs *compat.Requirements) (*RankingResult, error) {
	log := logger.WithFields(a.logger, logger.AnalysisFields(KindRanking, "")...)

	generator, err := a.handle.Generator()
	if err != nil {
		metrics.Analyses.WithLabelValues(KindRanking, metrics.OutcomeUnavailable).Inc()
		return nil, err
	}

	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p != nil {
			ids = append(ids, p.ID)
		}
	}

	prompt, err := BuildRankingPrompt(profiles, user, reqs)
	if err != nil {
		return nil, err
	}

	raw := a.generate(ctx, log.With(zap.Int("profiles", len(ids))), generator, KindRanking, prompt)

	result, parseErr := InterpretRanking(raw, ids, rand.New(rand.NewPCG(a.seed())))
	a.record(log, KindRanking, parseErr)

	result.AIGenerated = true
	result.Timestamp = a.timestamp()
	result.TotalProfiles = len(ids)

	return &result, nil
}

// generate performs the single generator call. A failed call yields an empty
// response, which the interpreter handles like text without a JSON object.
func (a *Analyzer) generate(ctx context.Context, log *zap.Logger, generator Generator, kind, prompt string) string {
	log.Debug("generate content request",
		zap.Int("prompt_length", utils.RuneLength(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	started := time.Now()
	raw, err := generator.GenerateContent(ctx, prompt)
	metrics.GenerationDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())

	if err != nil {
		log.Warn("generate content failed, using fallback", zap.Error(err))
		return ""
	}

	log.Debug("generate content response",
		zap.Int("response_length", utils.RuneLength(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return raw
}

func (a *Analyzer) record(log *zap.Logger, kind string, parseErr error) {
	if parseErr == nil {
		metrics.Analyses.WithLabelValues(kind, metrics.OutcomeParsed).Inc()
		return
	}

	reason := "unparseable"
	var upstreamErr *apperr.UpstreamParseError
	if errors.As(parseErr, &upstreamErr) {
		reason = upstreamErr.Reason
	}

	log.Warn("failed to interpret generated response, using fallback", zap.String("reason", reason))
	metrics.Analyses.WithLabelValues(kind, metrics.OutcomeFallback).Inc()
	metrics.Fallbacks.WithLabelValues(kind, reason).Inc()
}

// randomSeed draws from the global generator, which is safe for concurrent use.
func randomSeed() (uint64, uint64) {
	return rand.Uint64(), rand.Uint64()
}

func (a *Analyzer) timestamp() string {
	return a.now().UTC().Format(time.RFC3339)
}
