package profile

import (
	"os"
	"testing"
)

func TestProfileDefaults(t *testing.T) {
	clearEnvVars()

	profile := &Profile{}
	profile.FromEnv()

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"AIBaseURL default", "https://api.openai.com/v1", profile.AIBaseURL},
		{"AIAPIKey empty by default", "", profile.AIAPIKey},
		{"GoogleClientID empty by default", "", profile.GoogleClientID},
		{"BillingWebhookSecret empty by default", "", profile.BillingWebhookSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, tt.actual)
			}
		})
	}
}

func TestProfileFromEnv(t *testing.T) {
	clearEnvVars()

	tests := []struct {
		name     string
		envVar   string
		envValue string
		field    func(*Profile) string
		expected string
	}{
		{
			name:     "ASSISTANT_AI_API_KEY",
			envVar:   "ASSISTANT_AI_API_KEY",
			envValue: "test-key-123",
			field:    func(p *Profile) string { return p.AIAPIKey },
			expected: "test-key-123",
		},
		{
			name:     "ASSISTANT_AI_BASE_URL",
			envVar:   "ASSISTANT_AI_BASE_URL",
			envValue: "https://custom.proxy/v1",
			field:    func(p *Profile) string { return p.AIBaseURL },
			expected: "https://custom.proxy/v1",
		},
		{
			name:     "ASSISTANT_AI_HAIKU_MODEL",
			envVar:   "ASSISTANT_AI_HAIKU_MODEL",
			envValue: "custom-cheap-model",
			field:    func(p *Profile) string { return p.AIHaikuModel },
			expected: "custom-cheap-model",
		},
		{
			name:     "ASSISTANT_GOOGLE_CLIENT_ID",
			envVar:   "ASSISTANT_GOOGLE_CLIENT_ID",
			envValue: "client-id",
			field:    func(p *Profile) string { return p.GoogleClientID },
			expected: "client-id",
		},
		{
			name:     "ASSISTANT_BILLING_WEBHOOK_SECRET",
			envVar:   "ASSISTANT_BILLING_WEBHOOK_SECRET",
			envValue: "whsec",
			field:    func(p *Profile) string { return p.BillingWebhookSecret },
			expected: "whsec",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()
			os.Setenv(tt.envVar, tt.envValue)

			profile := &Profile{}
			profile.FromEnv()

			actual := tt.field(profile)
			if actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, actual)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		profile     *Profile
		expectError bool
	}{
		{
			name:        "sqlite with data dir",
			profile:     &Profile{Mode: "dev", Driver: "sqlite", Data: dir},
			expectError: false,
		},
		{
			name:        "postgres without dsn",
			profile:     &Profile{Mode: "dev", Driver: "postgres", Data: dir},
			expectError: true,
		},
		{
			name:        "unsupported driver",
			profile:     &Profile{Mode: "dev", Driver: "mysql", Data: dir},
			expectError: true,
		},
		{
			name:        "prod without secret",
			profile:     &Profile{Mode: "prod", Driver: "sqlite", Data: dir},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateDefaultsSQLiteDSN(t *testing.T) {
	dir := t.TempDir()
	profile := &Profile{Mode: "dev", Driver: "sqlite", Data: dir}
	if err := profile.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.DSN == "" {
		t.Error("DSN should default for sqlite driver")
	}
}

func clearEnvVars() {
	envVars := []string{
		"ASSISTANT_AI_BASE_URL",
		"ASSISTANT_AI_API_KEY",
		"ASSISTANT_AI_HAIKU_MODEL",
		"ASSISTANT_AI_SONNET_MODEL",
		"ASSISTANT_AI_OPUS_MODEL",
		"ASSISTANT_GOOGLE_CLIENT_ID",
		"ASSISTANT_GOOGLE_CLIENT_SECRET",
		"ASSISTANT_BILLING_WEBHOOK_SECRET",
		"ASSISTANT_SECRET",
		"ASSISTANT_INSTANCE_URL",
	}
	for _, envVar := range envVars {
		os.Unsetenv(envVar)
	}
}
