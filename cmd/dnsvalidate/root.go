package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nsmithuk/resolver"
)

//nolint:gochecknoglobals
var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "dnsvalidate",
	Short: "dnsvalidate sends a query through the DNSSEC-validating resolver core",
	Long: `dnsvalidate is a thin CLI over the resolver module: it forwards a
single query to a configured upstream, validates the chain of trust itself,
and prints the outcome - or dumps the trust anchors a config would load.`,
}

func init() {
	cobra.OnInitialize(configureLog)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to TOML config file (optional)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(anchorsCmd)
}

func configureLog() {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		log.Fatalf("invalid log level %q: %v", logLevel, err)
	}
	log.SetLevel(level)

	resolver.Debug = func(s string) { log.Debug(s) }
	resolver.Info = func(s string) { log.Info(s) }
	resolver.Warn = func(s string) { log.Warn(s) }
}

func loadFileConfig() *resolver.FileConfig {
	if configPath == "" {
		return &resolver.FileConfig{}
	}
	cfg, err := resolver.LoadFileConfig(configPath)
	if err != nil {
		log.Fatalf("could not load config %q: %v", configPath, err)
	}
	return cfg
}
