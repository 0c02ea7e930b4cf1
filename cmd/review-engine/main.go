// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the review-engine CLI, the terminal
// surface over the systematic-review workflow: search, triage, enrichment,
// chat, and export.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/review-engine/internal/gateway"
	"github.com/pdiddy/review-engine/internal/secrets"
	"github.com/pdiddy/review-engine/internal/session"
	"github.com/pdiddy/review-engine/internal/store"
	"github.com/pdiddy/review-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from the secrets directory at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the review-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "review-engine",
	Short: "Systematic literature review from the terminal",
	Long: `review-engine drives a systematic review workflow against a remote
literature backend: search for articles, triage them into included and
excluded sets, enrich them with summaries, statistics, and critical
appraisals, chat about individual articles, and export the included set.

Triage decisions persist across runs in a local store; everything else is
per-invocation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secretsDir(cmd))
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./review-engine.yaml or ~/.config/review-engine/config.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "backend base URL (default: http://localhost:8000)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory for review state (default: .review)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory holding credential files")
	rootCmd.PersistentFlags().String("store-backend", "", "decision store backend: file or sqlite (default: file)")
	rootCmd.PersistentFlags().Int("page-size", 0, "results per page the backend serves (default: 10)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("review-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "review-engine"))
		}
	}

	viper.SetEnvPrefix("REVIEW_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func secretsDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("secrets-dir")
	if dir == "" {
		dir = ".secrets"
	}
	return dir
}

// reviewConfig assembles layer configuration from flags first, then the
// config file and environment.
func reviewConfig(cmd *cobra.Command) types.ReviewConfig {
	baseURL, _ := cmd.Flags().GetString("base-url")
	if baseURL == "" {
		baseURL = viper.GetString("gateway.base_url")
	}

	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = viper.GetString("store.data_dir")
	}
	if dataDir == "" {
		dataDir = ".review"
	}

	backend, _ := cmd.Flags().GetString("store-backend")
	if backend == "" {
		backend = viper.GetString("store.backend")
	}

	pageSize, _ := cmd.Flags().GetInt("page-size")
	if pageSize == 0 {
		pageSize = viper.GetInt("session.page_size")
	}

	return types.ReviewConfig{
		Gateway: types.GatewayConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("gateway.timeout"),
				UserAgent: "review-engine/" + version,
			},
			BaseURL:    baseURL,
			MaxRetries: viper.GetInt("gateway.max_retries"),
		},
		Store: types.StoreConfig{
			DataDir: dataDir,
			Backend: types.StoreBackend(backend),
		},
		Session: types.SessionConfig{
			PageSize: pageSize,
		},
	}
}

// newGateway builds the backend client with any stored access token installed.
func newGateway(cmd *cobra.Command) *gateway.Client {
	cfg := reviewConfig(cmd)
	client := gateway.New(cfg.Gateway)
	if token := loadedSecrets[secrets.KeyAccessToken]; token != "" {
		client.SetToken(token)
	}
	return client
}

// newSession builds a review session over the configured gateway and store.
// The returned cleanup closes the store.
func newSession(cmd *cobra.Command) (*session.Session, func(), error) {
	cfg := reviewConfig(cmd)

	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("opening decision store: %w", err)
	}

	s := session.New(newGateway(cmd), st, cfg.Session)
	return s, func() { st.Close() }, nil
}

// requestTimeout bounds one CLI invocation's remote work.
const requestTimeout = 5 * time.Minute

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
