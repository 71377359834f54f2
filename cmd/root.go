package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/match-advisor/internal/ai"
	"github.com/spigell/match-advisor/internal/ai/gemini"
	"github.com/spigell/match-advisor/internal/compat"
	"github.com/spigell/match-advisor/internal/jeevansathi"
	"github.com/spigell/match-advisor/internal/logger"
	"github.com/spigell/match-advisor/internal/secrets"
	"github.com/spigell/match-advisor/internal/server"
)

const (
	app = "match-advisor"

	apiKeyEnv = "GOOGLE_API_KEY"
)

type Config struct {
	Server           *ServerConfig `mapstructure:"server"`
	Source           *SourceConfig `mapstructure:"source"`
	ExcludeFile      string        `mapstructure:"exclude-file"`
	SkipFilters      []string      `mapstructure:"skip-filters"`
	RequirementsFile string        `mapstructure:"requirements-file"`
	AI               *AIConfig     `mapstructure:"ai"`
}

type ServerConfig struct {
	Listen        string        `mapstructure:"listen"`
	Prefix        string        `mapstructure:"prefix"`
	Timeout       time.Duration `mapstructure:"timeout"`
	AllowedOrigin string        `mapstructure:"allowed-origin"`
}

type SourceConfig struct {
	File      string                    `mapstructure:"file"`
	URL       string                    `mapstructure:"url"`
	TokenFile string                    `mapstructure:"token-file"`
	UserAgent string                    `mapstructure:"user-agent"`
	Search    *jeevansathi.SearchParams `mapstructure:"search"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string  `mapstructure:"api-key-file"`
	Model        string  `mapstructure:"model"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxLogLength int     `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "match-advisor normalizes matrimony profiles, scores compatibility and asks an AI model for analysis",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults()

	if err := viper.BindEnv("source.token-file", "JEEVANSATHI_TOKEN_FILE"); err != nil {
		log.Fatalf("binding JEEVANSATHI_TOKEN_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is match-advisor.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("requirements", "", "json file with partner requirements")
	rootCmd.PersistentFlags().String("data", "", "stored search payload to read instead of calling the upstream api")
	rootCmd.PersistentFlags().StringSlice("skip-filter", nil, "name of a profile filter to disable. Can be repeated.")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("requirements-file", rootCmd.PersistentFlags().Lookup("requirements"))
	viper.BindPFlag("source.file", rootCmd.PersistentFlags().Lookup("data"))
	viper.BindPFlag("skip-filters", rootCmd.PersistentFlags().Lookup("skip-filter"))
}

func setDefaults() {
	viper.SetDefault("server.listen", server.DefaultListen)
	viper.SetDefault("server.prefix", server.DefaultPrefix)
	viper.SetDefault("server.timeout", server.DefaultTimeout)
	viper.SetDefault("server.allowed-origin", "*")
	viper.SetDefault("source.file", "")
	viper.SetDefault("source.url", "")
	viper.SetDefault("source.user-agent", "")
	viper.SetDefault("exclude-file", "")
	viper.SetDefault("skip-filters", []string{})
	viper.SetDefault("requirements-file", "")
	viper.SetDefault("ai.enabled", true)
	viper.SetDefault("ai.provider", gemini.Provider)
	viper.SetDefault("ai.timeout", server.DefaultTimeout)
	viper.SetDefault("ai.gemini.api-key-file", "")
	viper.SetDefault("ai.gemini.model", gemini.DefaultModel)
	viper.SetDefault("ai.gemini.temperature", gemini.DefaultTemperature)
	viper.SetDefault("ai.gemini.max-log-length", 200)
}

func initConfig() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix("MATCH_ADVISOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Only an explicitly requested config file is mandatory.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Source == nil {
		config.Source = &SourceConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}

// setup builds the logger and reads the configuration shared by all commands.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), app)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return logger, config
}

// newClientHandle constructs the AI client once. Failures are logged and
// produce an unavailable handle instead of aborting startup.
func newClientHandle(ctx context.Context, cfg *AIConfig, log *zap.Logger) *ai.ClientHandle {
	if !cfg.Enabled {
		log.Info("ai analysis disabled by configuration")
		return ai.NewUnavailable(gemini.Provider, "ai.enabled", errors.New("ai is disabled in configuration"))
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.Provider {
		err := fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
		log.Warn("ai client unavailable", zap.Error(err))
		return ai.NewUnavailable(provider, "ai.provider", err)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  apiKeyEnv,
	})
	if err != nil {
		log.Warn("ai client unavailable",
			zap.Error(err),
			zap.String("hint", "set "+apiKeyEnv+" or ai.gemini.api-key-file"),
		)
		return ai.NewUnavailable(gemini.Provider, apiKeyEnv, err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.Temperature)
	if err != nil {
		log.Warn("ai client unavailable", zap.Error(err))
		return ai.NewUnavailable(gemini.Provider, apiKeyEnv, err)
	}

	log.Info("ai client ready", logger.CommonFields(gemini.Provider, generator.Model())...)

	return ai.NewReady(gemini.Provider, generator)
}

func newAnalyzer(ctx context.Context, config *Config, log *zap.Logger) *ai.Analyzer {
	handle := newClientHandle(ctx, config.AI, log)
	return ai.NewAnalyzer(handle, log, ai.WithMaxLogLength(config.AI.Gemini.MaxLogLength))
}

// newSource prefers a stored payload file and otherwise calls the upstream api.
func newSource(config *SourceConfig, log *zap.Logger) (jeevansathi.Source, error) {
	if file := strings.TrimSpace(config.File); file != "" {
		log.Info("reading profiles from file", zap.String("file", file))
		return &jeevansathi.FileSource{Path: file}, nil
	}

	token, err := secrets.Load(secrets.Source{
		Name: "jeevansathi token",
		File: config.TokenFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set source.file, source.token-file or JEEVANSATHI_TOKEN_FILE)", err)
	}

	client := jeevansathi.New(log, token)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}
	if config.URL != "" {
		client.APIURL = strings.TrimRight(config.URL, "/")
	}

	return client.Source(config.Search), nil
}

// loadRequirements reads a requirements json file. An empty path yields nil.
func loadRequirements(path string) (*compat.Requirements, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read requirements: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse requirements %q: %w", path, err)
	}

	return compat.ParseRequirements(raw)
}
