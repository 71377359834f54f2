package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/match-advisor/internal/ai"
	"github.com/spigell/match-advisor/internal/compat"
	"github.com/spigell/match-advisor/internal/filtering"
	"github.com/spigell/match-advisor/internal/profile"
)

const (
	PromptAnalyze             = "Analyze a profile"
	PromptRank                = "Rank all profiles"
	PromptReportByRequirement = "Report by requirements"
	PromptProfilesToFile      = "Dump profiles to file"
	PromptShowFilters         = "Show filters"
	PromptAppendToExcludeFile = "Append all profiles to exclude file"
	PromptExit                = "Exit"
)

var errExit = errors.New("exit requested")

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Load profiles, apply the requirements and work through them interactively",
	Run: func(_ *cobra.Command, _ []string) {
		browse()
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().StringP("exclude-file", "e", "", "json file with profile ids to exclude. Default is unset.")

	viper.BindPFlag("exclude-file", browseCmd.Flags().Lookup("exclude-file"))
}

type session struct {
	config   *Config
	logger   *zap.Logger
	analyzer *ai.Analyzer
	reqs     *compat.Requirements
	profiles *profile.Profiles
	steps    []filtering.Filter
}

func browse() {
	ctx := context.Background()

	logger, config := setup()

	logger.Info("starting the match-advisor", zap.String("version", version))

	reqs, err := loadRequirements(viper.GetString("requirements-file"))
	if err != nil {
		logger.Fatal("loading requirements", zap.Error(err))
	}

	steps := filterSteps(config, logger)

	fetchCtx, cancel := context.WithTimeout(ctx, config.Server.Timeout)
	profiles, err := loadProfiles(fetchCtx, config, reqs, steps, logger)
	cancel()
	if err != nil {
		logger.Fatal("loading profiles", zap.Error(err))
	}

	if profiles.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no profiles left after filters"))
		return
	}

	s := &session{
		config:   config,
		logger:   logger,
		analyzer: newAnalyzer(ctx, config, logger),
		reqs:     reqs,
		profiles: profiles,
		steps:    steps,
	}

	items := []string{PromptAnalyze, PromptRank, PromptReportByRequirement, PromptShowFilters, PromptProfilesToFile}
	if config.ExcludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}

	menu := promptui.Select{
		Label: "What next?",
		Items: append(items, PromptExit),
	}

	for {
		logger.Info("current list of profiles", zap.Int("count", s.profiles.Len()))

		_, action, err := menu.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := s.handleAction(ctx, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func (s *session) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptAnalyze:
		return s.analyzeOne(ctx)
	case PromptRank:
		return s.rankAll(ctx)
	case PromptReportByRequirement:
		return s.report()
	case PromptShowFilters:
		return printJSON(filtering.Describe(s.steps))
	case PromptProfilesToFile:
		filename, err := s.profiles.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump profiles to file: %w", err)
		}
		s.logger.Info("dumping profiles to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return s.excludeAll()
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *session) analyzeOne(ctx context.Context) error {
	selected, err := pickProfile(s.profiles, "", "Choose a profile and press ENTER")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.AI.Timeout)
	defer cancel()

	result, err := s.analyzer.AnalyzeProfile(ctx, selected, s.reqs)
	if err != nil {
		return err
	}

	return printJSON(result)
}

func (s *session) rankAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.AI.Timeout)
	defer cancel()

	result, err := s.analyzer.RecommendMatches(ctx, s.profiles.Items, map[string]any{}, s.reqs)
	if err != nil {
		return err
	}

	return printJSON(result)
}

type requirementReport struct {
	ID     string                    `json:"id"`
	Name   string                    `json:"name"`
	Result compat.RequirementsResult `json:"result"`
}

func (s *session) report() error {
	if s.reqs == nil {
		s.logger.Warn("no requirements loaded", zap.String("hint", "pass --requirements"))
		return nil
	}

	reports := make([]requirementReport, 0, s.profiles.Len())
	for _, p := range s.profiles.Items {
		reports = append(reports, requirementReport{ID: p.ID, Name: p.Name, Result: compat.Evaluate(p, s.reqs)})
	}

	return printJSON(reports)
}

func (s *session) excludeAll() error {
	excludeFile := s.config.ExcludeFile

	if err := filtering.AppendExcludedIDs(excludeFile, s.profiles.IDs()); err != nil {
		return err
	}

	s.logger.Info("appended to exclude file", zap.String("filename", excludeFile))

	s.profiles.Exclude(s.profiles.IDs())
	if s.profiles.Len() == 0 {
		s.logger.Info("exiting", zap.String("reason", "no profiles left"))
		return errExit
	}

	return nil
}
