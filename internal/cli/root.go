package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ppiankov/paradox/internal/anchor"
	"github.com/ppiankov/paradox/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const version = "paradox v0.1.0"

var (
	cfgFile     string
	verbose     bool
	anchorsFile string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "paradox",
	Short: "Paradox - anchor-guided four-valued resolution",
	Long: `Paradox resolves propositions under a set of interpretive anchors.

Each anchor switches on one or more frames. Evidence is filed under a frame
and only counts while that frame is active. A proposition resolves to one of
four values: true, false, both/contradictory or undetermined.

Paradox never decides which reading is right. It reports what the evidence
says under the anchors you chose.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Paradox.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.paradox/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&anchorsFile, "anchors", "", "anchor catalog YAML (default: built-in catalog)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env, config file and ENV variables
func initConfig() {
	// a missing .env is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.paradox")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// PARADOX_SELECTION_K maps to selection.k
	viper.SetEnvPrefix("PARADOX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds the effective configuration: defaults, then the config
// file, then PARADOX_* variables, then global flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyOverrides(viper.GetViper(), cfg)

	if anchorsFile != "" {
		cfg.Anchors.File = anchorsFile
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	return cfg, nil
}

// applyOverrides copies every key v knows about onto cfg
func applyOverrides(v *viper.Viper, cfg *model.Config) {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	integer := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	float := func(key string, dst *float64) {
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}
	boolean := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}

	str("anchors.file", &cfg.Anchors.File)
	integer("selection.k", &cfg.Selection.K)
	integer("selection.max_block_items", &cfg.Selection.MaxBlockItems)
	boolean("guardrails.enabled", &cfg.Guardrails.Enabled)
	integer("guardrails.max_active_anchors", &cfg.Guardrails.MaxActiveAnchors)
	boolean("guardrails.positional", &cfg.Guardrails.Positional)
	if v.IsSet("guardrails.pin_if_missing") {
		cfg.Guardrails.PinIfMissing = v.GetStringSlice("guardrails.pin_if_missing")
	}
	integer("fixpoint.max_iters", &cfg.Fixpoint.MaxIters)
	integer("fixpoint.change_tolerance", &cfg.Fixpoint.ChangeTolerance)
	float("fixpoint.epsilon", &cfg.Fixpoint.Epsilon)
	integer("concurrency.workers", &cfg.Concurrency.Workers)
	float("rate_limiting.requests_per_second", &cfg.RateLimiting.RequestsPerSecond)
	integer("rate_limiting.burst_size", &cfg.RateLimiting.BurstSize)
	boolean("output.verbose", &cfg.Output.Verbose)
	boolean("output.include_footer", &cfg.Output.IncludeFooter)
}

// newLogger returns a development logger when verbose, otherwise a no-op
func newLogger(cfg *model.Config) *zap.Logger {
	if !cfg.Output.Verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return zap.NewNop()
	}
	return logger
}

// loadCatalog opens the configured catalog, or the built-in one
func loadCatalog(cfg *model.Config) (*anchor.Catalog, error) {
	catalog, err := anchor.Open(cfg.Anchors.File)
	if err != nil {
		return nil, fmt.Errorf("load anchors: %w", err)
	}
	return catalog, nil
}
