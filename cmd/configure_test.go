package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/zhubert/parley/internal/chat"
	"github.com/zhubert/parley/internal/config"
)

func TestValuesFromConfig(t *testing.T) {
	path := useTestConfig(t)
	cfg, err := configLoader()
	if err != nil {
		t.Fatalf("configLoader() error = %v", err)
	}

	v := valuesFromConfig(cfg)
	if v.ServerURL != config.DefaultServerURL {
		t.Errorf("ServerURL = %q", v.ServerURL)
	}
	if v.AssistantName != config.DefaultAssistantName {
		t.Errorf("AssistantName = %q", v.AssistantName)
	}
	if v.Mode != string(chat.ModeChatbot) || v.Language != "en" {
		t.Errorf("Mode/Language = %q/%q", v.Mode, v.Language)
	}
	if v.Timeout != "1m0s" {
		t.Errorf("Timeout = %q, want 1m0s", v.Timeout)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
}

func TestSaveConfigureValues(t *testing.T) {
	path := useTestConfig(t)
	cfg, err := configLoader()
	if err != nil {
		t.Fatalf("configLoader() error = %v", err)
	}

	v := configureValues{
		ServerURL:     "https://assistant.example.com/api",
		AssistantName: "Helper",
		Mode:          string(chat.ModeInteractiveAssistant),
		Language:      "fr",
		Theme:         "nord",
		Notifications: true,
		Timeout:       "30s",
	}

	var out bytes.Buffer
	if err := saveConfigureValues(cfg, v, &out); err != nil {
		t.Fatalf("saveConfigureValues() error = %v", err)
	}
	if !strings.Contains(out.String(), path) {
		t.Errorf("output = %q, want the config path", out.String())
	}

	reloaded, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if got := reloaded.GetServerURL(); got != v.ServerURL {
		t.Errorf("server = %q", got)
	}
	if got := reloaded.GetAssistantName(); got != "Helper" {
		t.Errorf("assistant name = %q", got)
	}
	if got := reloaded.GetMode(); got != chat.ModeInteractiveAssistant {
		t.Errorf("mode = %q", got)
	}
	if got := reloaded.GetLanguage(); got != "fr" {
		t.Errorf("language = %q", got)
	}
	if got := reloaded.GetTheme(); got != "nord" {
		t.Errorf("theme = %q", got)
	}
	if !reloaded.GetNotificationsEnabled() {
		t.Error("notifications should be enabled")
	}
	if got := reloaded.GetRequestTimeout(); got != 30*time.Second {
		t.Errorf("timeout = %v", got)
	}
}

func TestSaveConfigureValues_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(v *configureValues)
	}{
		{"bad timeout", func(v *configureValues) { v.Timeout = "soon" }},
		{"negative timeout", func(v *configureValues) { v.Timeout = "-1s" }},
		{"bad mode", func(v *configureValues) { v.Mode = "shouting" }},
		{"bad server", func(v *configureValues) { v.ServerURL = "localhost" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := useTestConfig(t)
			cfg, err := configLoader()
			if err != nil {
				t.Fatalf("configLoader() error = %v", err)
			}
			v := valuesFromConfig(cfg)
			tt.modify(&v)

			if err := saveConfigureValues(cfg, v, &bytes.Buffer{}); err == nil {
				t.Fatal("saveConfigureValues() expected error")
			}
			if _, err := config.LoadFrom(path); err != nil {
				t.Fatalf("LoadFrom() error = %v", err)
			}
		})
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(string) error
		input   string
		wantErr bool
	}{
		{"http url", validateServerURL, "http://localhost:5000/api", false},
		{"https url", validateServerURL, "https://example.com", false},
		{"no scheme", validateServerURL, "example.com", true},
		{"ftp", validateServerURL, "ftp://example.com", true},
		{"duration", validateTimeout, "45s", false},
		{"zero", validateTimeout, "0s", false},
		{"not a duration", validateTimeout, "45", true},
		{"negative", validateTimeout, "-5s", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestNewConfigureForm(t *testing.T) {
	v := configureValues{Mode: string(chat.ModeChatbot), Language: "en", Timeout: "60s"}
	if form := newConfigureForm(&v); form == nil {
		t.Fatal("newConfigureForm() returned nil")
	}
	if v.Theme == "" {
		t.Error("empty theme should default to the built-in theme")
	}
}
