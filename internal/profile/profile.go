package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where assistant stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the public url of the instance, used for OAuth redirects
	InstanceURL string
	// Secret signs session tokens and webhook signatures
	Secret string

	// AI configuration
	AIBaseURL     string // ASSISTANT_AI_BASE_URL (default: https://api.openai.com/v1)
	AIAPIKey      string // ASSISTANT_AI_API_KEY
	AIHaikuModel  string // ASSISTANT_AI_HAIKU_MODEL (override for the cheap tier)
	AISonnetModel string // ASSISTANT_AI_SONNET_MODEL
	AIOpusModel   string // ASSISTANT_AI_OPUS_MODEL

	// Google OAuth configuration
	GoogleClientID     string // ASSISTANT_GOOGLE_CLIENT_ID
	GoogleClientSecret string // ASSISTANT_GOOGLE_CLIENT_SECRET

	// Billing configuration
	BillingWebhookSecret string // ASSISTANT_BILLING_WEBHOOK_SECRET
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if an API key is configured for the LLM provider.
func (p *Profile) IsAIEnabled() bool {
	return p.AIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from ASSISTANT_* environment variables.
// Values already set (e.g. from flags) are only overridden when the
// corresponding variable is non-empty.
func (p *Profile) FromEnv() {
	p.AIBaseURL = getEnvOrDefault("ASSISTANT_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIAPIKey = getEnvOrDefault("ASSISTANT_AI_API_KEY", p.AIAPIKey)
	p.AIHaikuModel = os.Getenv("ASSISTANT_AI_HAIKU_MODEL")
	p.AISonnetModel = os.Getenv("ASSISTANT_AI_SONNET_MODEL")
	p.AIOpusModel = os.Getenv("ASSISTANT_AI_OPUS_MODEL")

	p.GoogleClientID = getEnvOrDefault("ASSISTANT_GOOGLE_CLIENT_ID", p.GoogleClientID)
	p.GoogleClientSecret = getEnvOrDefault("ASSISTANT_GOOGLE_CLIENT_SECRET", p.GoogleClientSecret)

	p.BillingWebhookSecret = getEnvOrDefault("ASSISTANT_BILLING_WEBHOOK_SECRET", p.BillingWebhookSecret)

	if p.Secret == "" {
		p.Secret = os.Getenv("ASSISTANT_SECRET")
	}
	if p.InstanceURL == "" {
		p.InstanceURL = os.Getenv("ASSISTANT_INSTANCE_URL")
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for the postgres driver")
	}

	if p.Mode == "prod" && p.Secret == "" {
		return errors.New("secret is required in prod mode, set ASSISTANT_SECRET")
	}
	if p.Secret == "" {
		// Dev/demo convenience only; sessions do not survive a redeploy.
		p.Secret = "assistant-dev-secret"
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("assistant_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
