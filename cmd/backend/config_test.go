package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	env := map[string]string{
		"OPENAI_API_KEY": "env-openai",
		"GROQ_API_KEY":   "env-groq",
		"TAVILY_API_KEY": "env-tavily",
	}
	getenv := func(key string) string { return env[key] }

	tests := []struct {
		name    string
		content string
		missing bool
		want    config
		wantErr bool
	}{
		{
			name:    "missing file takes keys from env",
			missing: true,
			want: config{
				Port:     defaultPort,
				LogLevel: slog.LevelInfo,
				OpenAI:   providerConfig{APIKey: "env-openai"},
				Groq:     providerConfig{APIKey: "env-groq"},
				Tavily:   tavilyConfig{APIKey: "env-tavily"},
			},
		},
		{
			name: "file keys win over env",
			content: `
port: "9000"
logLevel: warn
openai:
  apiKey: file-openai
groq:
  baseURL: http://groq.local/v1
tavily:
  apiKey: file-tavily
  endpoint: http://tavily.local/search
`,
			want: config{
				Port:     "9000",
				LogLevel: slog.LevelWarn,
				OpenAI:   providerConfig{APIKey: "file-openai"},
				Groq:     providerConfig{APIKey: "env-groq", BaseURL: "http://groq.local/v1"},
				Tavily:   tavilyConfig{APIKey: "file-tavily", Endpoint: "http://tavily.local/search"},
			},
		},
		{
			name:    "bad log level",
			content: "logLevel: loud\n",
			wantErr: true,
		},
		{
			name:    "not yaml",
			content: "port: [\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "backend.yaml")
			if !tt.missing {
				if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
					t.Fatal(err)
				}
			}

			got, err := loadConfig(path, getenv)
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("loadConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
