package cmd

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/zhubert/parley/internal/app"
	"github.com/zhubert/parley/internal/backend"
	"github.com/zhubert/parley/internal/config"
	"github.com/zhubert/parley/internal/logger"
)

var (
	debugMode             bool
	quietMode             bool
	serverURL             string
	language              string
	mode                  string
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Terminal chat client for the assistant backend",
	Long: `Parley is a terminal chat client for a request/response assistant backend.
It keeps one active chat session, lists past sessions in a sidebar, and lets
you switch the assistant mode and language while you talk.`,
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// gatewayFactory builds the backend client. Tests replace it.
var gatewayFactory = func(cfg *config.Config) backend.Gateway {
	return backend.NewHTTPGateway(cfg.GetServerURL(), cfg.GetRequestTimeout())
}

// configLoader loads the settings file. Tests replace it.
var configLoader = config.Load

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", true, "Enable debug logging (on by default)")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Reduce logging to info level only")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Assistant API root (overrides config and "+config.EnvServerURL+")")
	rootCmd.PersistentFlags().StringVar(&language, "lang", "", "Language code: en, fr or ar")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "Assistant mode: chatbot or assistant")
}

func initConfig() {
	if quietMode {
		logger.SetDebug(false)
	} else if debugMode {
		logger.SetDebug(true)
	}
}

// Execute runs the root command
func Execute() error {
	// Set version dynamically
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("parley %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("parley %s\n", version)
}

// loadConfig loads the settings file and applies the command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := configLoader()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.Override(serverURL, language, mode); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Ensure logger is closed on exit
	defer logger.Close()

	m := app.New(cfg, gatewayFactory(cfg), version)
	defer m.Close()
	p := tea.NewProgram(m)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
