package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/presta-matcher/internal/directory"
	"github.com/spigell/presta-matcher/internal/logger"
	"github.com/spigell/presta-matcher/internal/server"
)

const (
	app = logger.AppName
)

type Config struct {
	Directory   *DirectoryConfig `mapstructure:"directory"`
	Matching    *MatchingConfig  `mapstructure:"matching"`
	AI          *AIConfig        `mapstructure:"ai"`
	Server      *server.Config   `mapstructure:"server"`
	ExcludeFile string           `mapstructure:"exclude-file"`
}

type DirectoryConfig struct {
	// Type is one of file, marketplace, postgres or static.
	Type        string               `mapstructure:"type"`
	File        string               `mapstructure:"file"`
	Marketplace *MarketplaceConfig   `mapstructure:"marketplace"`
	Postgres    *PostgresConfig      `mapstructure:"postgres"`
	Providers   []directory.Provider `mapstructure:"providers"`
}

type MarketplaceConfig struct {
	URL       string `mapstructure:"url"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"token-file"`
	UserAgent string `mapstructure:"user-agent"`
}

type PostgresConfig struct {
	DSN     string `mapstructure:"dsn"`
	DSNFile string `mapstructure:"dsn-file"`
}

type MatchingConfig struct {
	ApplySuggestedFilters *bool   `mapstructure:"apply-suggested-filters"`
	TopK                  int     `mapstructure:"top-k"`
	ResultLimit           int     `mapstructure:"result-limit"`
	MinimumScore          int     `mapstructure:"minimum-score"`
	ExcludedProviders     []int64 `mapstructure:"excluded-providers"`
}

type AIConfig struct {
	Enabled           bool           `mapstructure:"enabled"`
	Provider          string         `mapstructure:"provider"`
	PoolSize          int            `mapstructure:"pool-size"`
	Timeout           time.Duration  `mapstructure:"timeout"`
	RequestsPerSecond float64        `mapstructure:"requests-per-second"`
	Burst             int            `mapstructure:"burst"`
	Gemini            *GeminiConfig  `mapstructure:"gemini"`
	Mistral           *MistralConfig `mapstructure:"mistral"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type MistralConfig struct {
	APIKey       string  `mapstructure:"api-key"`
	APIKeyFile   string  `mapstructure:"api-key-file"`
	BaseURL      string  `mapstructure:"base-url"`
	Model        string  `mapstructure:"model"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxLogLength int     `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "presta-matcher ranks marketplace providers against a client's free-text request",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	bindings := map[string]string{
		"directory.marketplace.token-file": "MARKETPLACE_TOKEN_FILE",
		"ai.mistral.api-key":               "MISTRAL_API_KEY",
		"ai.gemini.api-key":                "GEMINI_API_KEY",
	}
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is presta-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Only search and serve need a config.
	if searchCmd.CalledAs() == "" && serveCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
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
	if config.Directory == nil {
		config.Directory = &DirectoryConfig{}
	}
	if config.Matching == nil {
		config.Matching = &MatchingConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.Server == nil {
		cfg := server.DefaultConfig()
		config.Server = &cfg
	}

	return config, nil
}
