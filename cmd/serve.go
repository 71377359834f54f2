package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/match-advisor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP api",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", server.DefaultListen, "address to listen on")
	serveCmd.Flags().StringP("exclude-file", "e", "", "json file with profile ids to exclude. Default is unset.")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("exclude-file", serveCmd.Flags().Lookup("exclude-file"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := setup()

	logger.Info("starting the match-advisor", zap.String("version", version))

	analyzer := newAnalyzer(ctx, config, logger)

	// The listing endpoint fails per request when no source is configured.
	source, err := newSource(config.Source, logger)
	if err != nil {
		logger.Warn("profile source unavailable", zap.Error(err))
	}

	srv := server.New(server.Config{
		Listen:        config.Server.Listen,
		Prefix:        config.Server.Prefix,
		Timeout:       config.Server.Timeout,
		AITimeout:     config.AI.Timeout,
		AllowedOrigin: config.Server.AllowedOrigin,
	}, server.Deps{
		Analyzer:    analyzer,
		Source:      source,
		ExcludeFile: config.ExcludeFile,
		Logger:      logger,
	})

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("serving http", zap.Error(err))
	}
}
