package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loog-project/instrux/internal/config"
	"github.com/loog-project/instrux/internal/logging"
	"github.com/loog-project/instrux/internal/service"
	"github.com/loog-project/instrux/internal/store"
	badgerStore "github.com/loog-project/instrux/internal/store/badger"
	bboltStore "github.com/loog-project/instrux/internal/store/bbolt"
)

var (
	// persistent flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "instrux",
	Short: "Work instruction revision store and structural diff tool",
	Long: `Instrux stores work instruction documents as a history of revisions and
compares any two of them structurally: every change is reported with the path of
the field that changed and its old and new value.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		return logging.Configure(cfg.Log, cmd.ErrOrStderr())
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	config.Setup(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.instrux.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info",
		"Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console",
		"Log format, console or json")
	rootCmd.PersistentFlags().String("store-driver", config.DriverBbolt,
		"Revision store backend, bbolt or badger")
	rootCmd.PersistentFlags().String("store-path", "",
		"Path of the revision store (default is $HOME/.instrux/instrux.db)")
	rootCmd.PersistentFlags().Bool("no-durable-sync", false,
		"Skip fsync on every write to improve throughput (unsafe on crashes)")

	// allow the flags to be set via environment variables / config file
	flags := rootCmd.PersistentFlags()
	mustBind("log-level", viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level")))
	mustBind("log-format", viper.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format")))
	mustBind("store-driver", viper.BindPFlag(config.KeyStoreDriver, flags.Lookup("store-driver")))
	mustBind("store-path", viper.BindPFlag(config.KeyStorePath, flags.Lookup("store-path")))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".instrux")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logging.Setup.Info().Msgf("Using config file: %s", viper.ConfigFileUsed())
	}
}

// loadConfig returns the configuration with the command-local overrides applied.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return cfg, err
	}
	if noSync, _ := cmd.Flags().GetBool("no-durable-sync"); noSync {
		cfg.Store.SyncWrites = false
	}
	if noCache, _ := cmd.Flags().GetBool("disable-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

func openStore(cfg config.Store) (store.InstructionStore, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	log.Debug().
		Str("driver", cfg.Driver).
		Str("path", cfg.Path).
		Bool("sync-writes", cfg.SyncWrites).
		Msg("Opening revision store")

	switch cfg.Driver {
	case config.DriverBadger:
		return badgerStore.New(badgerStore.Config{Path: cfg.Path, SyncWrites: cfg.SyncWrites})
	default:
		return bboltStore.New(cfg.Path, nil, cfg.SyncWrites)
	}
}

// withService opens the configured store and runs fn with a service on top of it.
func withService(cmd *cobra.Command, fn func(cfg config.Config, svc *service.DocumentService) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Error closing store")
		}
	}()

	svc := service.New(st, service.Options{
		CacheTTL:     cfg.Cache.TTL,
		DisableCache: !cfg.Cache.Enabled,
	})
	defer func() { _ = svc.Close() }()

	return fn(cfg, svc)
}

func mustBind(flagName string, err error) {
	if err != nil {
		logging.Setup.Fatal().Err(err).Msgf("Failed to bind flag %s", flagName)
	}
}
