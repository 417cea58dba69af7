package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/saulo-duarte/mathbank-lambda/internal/access"
)

type Settings struct {
	HTTPAddr    string
	PublicURL   string
	QuestionDir string

	DBDriver string
	DBDSN    string

	AuthMode        string
	TokenTTL        time.Duration
	ProviderTimeout time.Duration
	CookieDomain    string
	CookieSecure    bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	StripeSecretKey      string
	StripeMonthlyPriceID string
	StripeYearlyPriceID  string
	StripeWebhookSecret  string

	Policy access.Policy

	CORSOrigins []string
}

func (s Settings) GoogleEnabled() bool {
	return s.GoogleClientID != "" && s.GoogleClientSecret != ""
}

func (s Settings) BillingEnabled() bool {
	return s.StripeSecretKey != ""
}

// Load reads a .env file when present and then the process environment.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Settings{}, fmt.Errorf("load .env: %w", err)
	}

	pub := strings.TrimSuffix(envOr("PUBLIC_URL", "http://localhost:8080"), "/")
	s := Settings{
		HTTPAddr:    envOr("HTTP_ADDR", ":8080"),
		PublicURL:   pub,
		QuestionDir: envOr("QUESTION_DIR", "./questions"),

		DBDriver: envOr("DB_DRIVER", "postgres"),
		DBDSN:    os.Getenv("DATABASE_DSN"),

		AuthMode:     envOr("AUTH_MODE", "email"),
		CookieDomain: os.Getenv("COOKIE_DOMAIN"),
		CookieSecure: envBool("COOKIE_SECURE", strings.HasPrefix(pub, "https://")),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  envOr("GOOGLE_REDIRECT_URL", pub+"/auth/google/callback"),

		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripeMonthlyPriceID: os.Getenv("STRIPE_MONTHLY_PRICE_ID"),
		StripeYearlyPriceID:  os.Getenv("STRIPE_YEARLY_PRICE_ID"),
		StripeWebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}

	switch s.AuthMode {
	case "email", "password":
	default:
		return Settings{}, fmt.Errorf("invalid AUTH_MODE %q: want email or password", s.AuthMode)
	}

	var err error
	if s.TokenTTL, err = envDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return Settings{}, err
	}
	if s.ProviderTimeout, err = envDuration("PROVIDER_TIMEOUT", 5*time.Second); err != nil {
		return Settings{}, err
	}
	if s.Policy, err = loadPolicy(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func loadPolicy() (access.Policy, error) {
	p := access.DefaultPolicy()
	p.Reach = access.ReachMode(envOr("ACCESS_REACH_MODE", string(p.Reach)))
	p.Clip = access.ClipMode(envOr("ACCESS_CLIP_MODE", string(p.Clip)))
	p.ModuleList = access.ModuleListMode(envOr("ACCESS_MODULE_LIST_MODE", string(p.ModuleList)))

	var err error
	if p.FreeModules, err = envLocators("FREE_MODULES"); err != nil {
		return p, err
	}
	if p.UncappedModules, err = envLocators("UNCAPPED_MODULES"); err != nil {
		return p, err
	}
	for key, dst := range map[string]*int{
		"FREE_MAX_QUESTIONS": &p.MaxQuestions,
		"FREE_MAX_MODULES":   &p.MaxModules,
		"FREE_MAX_YEARS":     &p.MaxYears,
		"FREE_MAX_LEVELS":    &p.MaxLevels,
	} {
		if *dst, err = envInt(key, *dst); err != nil {
			return p, err
		}
	}

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: want a non-negative integer", k, v)
	}
	return n, nil
}

func envDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want a positive duration", k, v)
	}
	return d, nil
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func envLocators(k string) (access.LocatorSet, error) {
	set := access.LocatorSet{}
	for _, raw := range csvOr(k, "") {
		loc, err := access.ParseLocator(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		set[loc] = struct{}{}
	}
	return set, nil
}
