package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/match-advisor/internal/compat"
	"github.com/spigell/match-advisor/internal/metrics"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Deterministic compatibility scoring without the AI model",
}

var scorePairCmd = &cobra.Command{
	Use:   "pair [profile-id] [profile-id]",
	Short: "Score two loaded profiles against each other",
	Args:  cobra.MaximumNArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		scorePair(args)
	},
}

var scoreEvaluateCmd = &cobra.Command{
	Use:   "evaluate [profile-id]",
	Short: "Score a loaded profile against the requirements file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		scoreEvaluate(id)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.AddCommand(scorePairCmd, scoreEvaluateCmd)
}

func scorePair(args []string) {
	logger, config := setup()

	ctx, cancel := context.WithTimeout(context.Background(), config.Server.Timeout)
	defer cancel()

	profiles, err := loadProfiles(ctx, config, nil, filterSteps(config, logger), logger)
	if err != nil {
		logger.Fatal("loading profiles", zap.Error(err))
	}

	ids := make([]string, 2)
	copy(ids, args)

	first, err := pickProfile(profiles, ids[0], "Choose the first profile")
	if err != nil {
		logger.Fatal("choosing a profile", zap.Error(err))
	}
	second, err := pickProfile(profiles, ids[1], "Choose the second profile")
	if err != nil {
		logger.Fatal("choosing a profile", zap.Error(err))
	}

	result := compat.Pair(first, second)
	metrics.Scores.WithLabelValues("pair").Observe(float64(result.TotalScore))

	if err := printJSON(result); err != nil {
		logger.Fatal("printing compatibility", zap.Error(err))
	}
}

func scoreEvaluate(id string) {
	logger, config := setup()

	reqs, err := loadRequirements(viper.GetString("requirements-file"))
	if err != nil {
		logger.Fatal("loading requirements", zap.Error(err))
	}
	if reqs == nil {
		logger.Fatal("requirements are required", zap.String("hint", "pass --requirements or set requirements-file"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.Server.Timeout)
	defer cancel()

	// Requirements are scored here, not used to filter the candidates.
	profiles, err := loadProfiles(ctx, config, nil, filterSteps(config, logger), logger)
	if err != nil {
		logger.Fatal("loading profiles", zap.Error(err))
	}

	selected, err := pickProfile(profiles, id, "Choose a profile to evaluate")
	if err != nil {
		logger.Fatal("choosing a profile", zap.Error(err))
	}

	result := compat.Evaluate(selected, reqs)
	metrics.Scores.WithLabelValues("requirements").Observe(float64(result.CompatibilityScore))

	if err := printJSON(result); err != nil {
		logger.Fatal("printing evaluation", zap.Error(err))
	}
}
