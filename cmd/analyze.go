package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [profile-id]",
	Short: "Ask the AI model how well a profile fits the requirements",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		analyze(id)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func analyze(id string) {
	logger, config := setup()

	reqs, err := loadRequirements(viper.GetString("requirements-file"))
	if err != nil {
		logger.Fatal("loading requirements", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.AI.Timeout+config.Server.Timeout)
	defer cancel()

	profiles, err := loadProfiles(ctx, config, reqs, filterSteps(config, logger), logger)
	if err != nil {
		logger.Fatal("loading profiles", zap.Error(err))
	}

	selected, err := pickProfile(profiles, id, "Choose a profile to analyze and press ENTER")
	if err != nil {
		logger.Fatal("choosing a profile", zap.Error(err))
	}

	analyzer := newAnalyzer(ctx, config, logger)

	result, err := analyzer.AnalyzeProfile(ctx, selected, reqs)
	if err != nil {
		logger.Fatal("analyzing profile", zap.Error(err))
	}

	if err := printJSON(result); err != nil {
		logger.Fatal("printing analysis", zap.Error(err))
	}
}
