package llm

import (
	"errors"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantErr     error
		wantBaseURL string
		wantModel   string
		wantTimeout time.Duration
	}{
		{
			name:        "defaults",
			env:         map[string]string{"OPENAI_API_KEY": "sk-test"},
			wantBaseURL: defaultBaseURL,
			wantModel:   defaultModel,
			wantTimeout: defaultTimeout,
		},
		{
			name: "overrides",
			env: map[string]string{
				"OPENAI_API_KEY":         "sk-test",
				"OPENAI_BASE_URL":        "http://localhost:9000/",
				"OPENAI_MODEL":           "gpt-4.1",
				"OPENAI_TIMEOUT_SECONDS": "5",
			},
			wantBaseURL: "http://localhost:9000",
			wantModel:   "gpt-4.1",
			wantTimeout: 5 * time.Second,
		},
		{
			name: "bad timeout ignored",
			env: map[string]string{
				"OPENAI_API_KEY":         "sk-test",
				"OPENAI_TIMEOUT_SECONDS": "soon",
			},
			wantBaseURL: defaultBaseURL,
			wantModel:   defaultModel,
			wantTimeout: defaultTimeout,
		},
		{
			name:    "missing API key",
			env:     map[string]string{"OPENAI_API_KEY": ""},
			wantErr: ErrMissingAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "OPENAI_TIMEOUT_SECONDS"} {
				t.Setenv(k, tt.env[k])
			}

			cfg, err := LoadConfig()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if cfg != nil {
					t.Error("LoadConfig() returned non-nil config with error")
				}
				return
			}
			if cfg.BaseURL != tt.wantBaseURL || cfg.Model != tt.wantModel || cfg.Timeout != tt.wantTimeout {
				t.Errorf("LoadConfig() = %+v", cfg)
			}
		})
	}
}
