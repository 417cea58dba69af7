package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/saulo-duarte/mathbank-lambda/internal/access"
	"github.com/saulo-duarte/mathbank-lambda/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"HTTP_ADDR", "PUBLIC_URL", "AUTH_MODE", "TOKEN_TTL", "PROVIDER_TIMEOUT",
		"ACCESS_REACH_MODE", "ACCESS_CLIP_MODE", "ACCESS_MODULE_LIST_MODE",
		"FREE_MODULES", "UNCAPPED_MODULES", "FREE_MAX_QUESTIONS", "FREE_MAX_MODULES",
		"FREE_MAX_YEARS", "FREE_MAX_LEVELS", "CORS_ORIGINS", "STRIPE_SECRET_KEY",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
	} {
		t.Setenv(k, "")
	}

	s, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.HTTPAddr != ":8080" || s.AuthMode != "email" {
		t.Errorf("unexpected defaults: addr=%s mode=%s", s.HTTPAddr, s.AuthMode)
	}
	if s.TokenTTL != 24*time.Hour || s.ProviderTimeout != 5*time.Second {
		t.Errorf("unexpected durations: ttl=%v timeout=%v", s.TokenTTL, s.ProviderTimeout)
	}
	if s.Policy.MaxQuestions != 3 || s.Policy.MaxModules != 2 || s.Policy.Reach != access.ReachSampleClipped {
		t.Errorf("unexpected policy: %+v", s.Policy)
	}
	if s.BillingEnabled() || s.GoogleEnabled() {
		t.Errorf("billing and google should be disabled without credentials")
	}
}

func TestLoadPolicyFromEnv(t *testing.T) {
	t.Setenv("ACCESS_REACH_MODE", "allow-list")
	t.Setenv("ACCESS_CLIP_MODE", "stratified")
	t.Setenv("ACCESS_MODULE_LIST_MODE", "allow-list-capped")
	t.Setenv("FREE_MODULES", "year11/advanced/functions, year12/extension1/trig")
	t.Setenv("FREE_MAX_QUESTIONS", "5")
	t.Setenv("FREE_MAX_YEARS", "1")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	s, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	p := s.Policy
	if p.Reach != access.ReachAllowList || p.Clip != access.ClipStratified || p.ModuleList != access.ModuleListAllowListCapped {
		t.Errorf("unexpected modes: %+v", p)
	}
	if !p.FreeModules.Has(access.ModuleLocator{Year: "year12", Level: "extension1", Module: "trig"}) || len(p.FreeModules) != 2 {
		t.Errorf("unexpected free modules: %v", p.FreeModules)
	}
	if p.MaxQuestions != 5 || p.MaxYears != 1 {
		t.Errorf("unexpected caps: questions=%d years=%d", p.MaxQuestions, p.MaxYears)
	}
	if len(s.CORSOrigins) != 2 || s.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("unexpected origins: %v", s.CORSOrigins)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"ReachMode", "ACCESS_REACH_MODE", "everything"},
		{"ClipMode", "ACCESS_CLIP_MODE", "random"},
		{"AuthMode", "AUTH_MODE", "magic-link"},
		{"Locator", "FREE_MODULES", "year11/advanced"},
		{"NegativeCap", "FREE_MAX_QUESTIONS", "-1"},
		{"Duration", "TOKEN_TTL", "forever"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := config.Load(); err == nil {
				t.Errorf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}

	t.Run("ModeErrorIsTyped", func(t *testing.T) {
		t.Setenv("ACCESS_CLIP_MODE", "random")
		_, err := config.Load()
		if !errors.Is(err, access.ErrInvalidMode) {
			t.Errorf("expected ErrInvalidMode, got %v", err)
		}
	})
}
