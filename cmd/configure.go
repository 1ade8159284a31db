package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"charm.land/huh/v2"
	"github.com/spf13/cobra"

	"github.com/zhubert/parley/internal/chat"
	"github.com/zhubert/parley/internal/config"
	"github.com/zhubert/parley/internal/ui"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Edit the settings file interactively",
	Long: `Opens a form for the server URL, assistant name, default mode and language,
theme, desktop notifications and request timeout, then writes the answers to
~/.parley/config.yaml.`,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

// configureValues are the form answers, kept as strings the way huh binds them.
type configureValues struct {
	ServerURL     string
	AssistantName string
	Mode          string
	Language      string
	Theme         string
	Notifications bool
	Timeout       string
}

func valuesFromConfig(cfg *config.Config) configureValues {
	return configureValues{
		ServerURL:     cfg.GetServerURL(),
		AssistantName: cfg.GetAssistantName(),
		Mode:          string(cfg.GetMode()),
		Language:      cfg.GetLanguage(),
		Theme:         cfg.GetTheme(),
		Notifications: cfg.GetNotificationsEnabled(),
		Timeout:       cfg.GetRequestTimeout().String(),
	}
}

func runConfigure(cmd *cobra.Command, args []string) error {
	cfg, err := configLoader()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if theme := cfg.GetTheme(); theme != "" {
		ui.SetThemeByName(theme)
	}

	v := valuesFromConfig(cfg)
	if err := newConfigureForm(&v).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
			return nil
		}
		return err
	}
	return saveConfigureValues(cfg, v, cmd.OutOrStdout())
}

func newConfigureForm(v *configureValues) *huh.Form {
	modeOptions := make([]huh.Option[string], len(chat.Modes))
	for i, m := range chat.Modes {
		modeOptions[i] = huh.NewOption(m.String(), string(m))
	}

	languageOptions := make([]huh.Option[string], len(chat.SupportedLanguages))
	for i, code := range chat.SupportedLanguages {
		languageOptions[i] = huh.NewOption(chat.LanguageName(code), code)
	}

	themes := ui.ThemeNames()
	themeOptions := make([]huh.Option[string], len(themes))
	for i, name := range themes {
		themeOptions[i] = huh.NewOption(ui.GetTheme(name).Name, string(name))
	}
	if v.Theme == "" {
		v.Theme = string(ui.DefaultTheme)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server URL").
				Description("Root of the assistant API").
				Placeholder(config.DefaultServerURL).
				Validate(validateServerURL).
				Value(&v.ServerURL),
			huh.NewInput().
				Title("Assistant name").
				Description("Shown in the header and on replies").
				Value(&v.AssistantName),
			huh.NewInput().
				Title("Request timeout").
				Description("Go duration such as 60s; 0s waits forever").
				Validate(validateTimeout).
				Value(&v.Timeout),
		).Title("Connection"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default mode").
				Options(modeOptions...).
				Value(&v.Mode),
			huh.NewSelect[string]().
				Title("Default language").
				Options(languageOptions...).
				Value(&v.Language),
			huh.NewSelect[string]().
				Title("Theme").
				Options(themeOptions...).
				Value(&v.Theme),
			huh.NewConfirm().
				Title("Desktop notifications").
				Description("Notify when a reply arrives").
				Value(&v.Notifications),
		).Title("Preferences"),
	).WithTheme(ui.FormTheme())
}

func validateServerURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter an http or https URL")
	}
	return nil
}

func validateTimeout(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("enter a duration such as 60s")
	}
	if d < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// saveConfigureValues applies the answers to cfg, validates and writes it.
func saveConfigureValues(cfg *config.Config, v configureValues, out io.Writer) error {
	if err := validateTimeout(v.Timeout); err != nil {
		return err
	}
	timeout, _ := time.ParseDuration(v.Timeout)
	mode, err := chat.ParseMode(v.Mode)
	if err != nil {
		return err
	}

	cfg.SetServerURL(v.ServerURL)
	cfg.SetAssistantName(v.AssistantName)
	cfg.SetMode(mode)
	cfg.SetLanguage(v.Language)
	cfg.SetTheme(v.Theme)
	cfg.SetNotificationsEnabled(v.Notifications)
	cfg.SetRequestTimeout(timeout)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}
	fmt.Fprintf(out, "Saved %s\n", cfg.Path())
	return nil
}
