package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank the loaded profiles against the user profile with one AI request",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("user", "u", "", "json file with the user's own profile")
	rankCmd.Flags().IntP("limit", "n", 0, "rank only the first n profiles. Default is all.")
}

func rank(cmd *cobra.Command) {
	logger, config := setup()

	reqs, err := loadRequirements(viper.GetString("requirements-file"))
	if err != nil {
		logger.Fatal("loading requirements", zap.Error(err))
	}

	user := map[string]any{}
	if path, _ := cmd.Flags().GetString("user"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Fatal("reading user profile", zap.Error(err))
		}
		if err := json.Unmarshal(data, &user); err != nil {
			logger.Fatal("parsing user profile", zap.String("file", path), zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.AI.Timeout+config.Server.Timeout)
	defer cancel()

	profiles, err := loadProfiles(ctx, config, reqs, filterSteps(config, logger), logger)
	if err != nil {
		logger.Fatal("loading profiles", zap.Error(err))
	}

	if profiles.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no profiles left after filters"))
		return
	}

	items := profiles.Items
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	analyzer := newAnalyzer(ctx, config, logger)

	result, err := analyzer.RecommendMatches(ctx, items, user, reqs)
	if err != nil {
		logger.Fatal("ranking profiles", zap.Error(err))
	}

	if err := printJSON(result); err != nil {
		logger.Fatal("printing rankings", zap.Error(err))
	}
}
