package agent_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MegaGrindStone/insighta-web-ui/internal/agent"
)

func TestTavilySearch(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{
			name:   "answer",
			status: http.StatusOK,
			body:   `{"answer":"Paris","results":[{"content":"Paris is the capital of France."}]}`,
			want:   "Paris",
		},
		{
			name:   "first result",
			status: http.StatusOK,
			body:   `{"answer":"","results":[{"content":"Paris is the capital of France."}]}`,
			want:   "Paris is the capital of France.",
		},
		{
			name:   "nothing found",
			status: http.StatusOK,
			body:   `{"results":[]}`,
			want:   "",
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"detail":"invalid key"}`,
			wantErr: true,
		},
		{
			name:    "garbage",
			status:  http.StatusOK,
			body:    `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				gotAuth string
				gotReq  map[string]any
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				_ = json.NewDecoder(r.Body).Decode(&gotReq)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			got, err := agent.NewTavily("tvly-key", srv.URL).Search(context.Background(), "capital of France")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Search() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Search() = %q, want %q", got, tt.want)
			}
			if gotAuth != "Bearer tvly-key" {
				t.Errorf("Authorization = %q", gotAuth)
			}
			if gotReq["query"] != "capital of France" || gotReq["search_depth"] != "advanced" ||
				gotReq["include_answer"] != true || gotReq["max_results"] != float64(1) {
				t.Errorf("request = %+v", gotReq)
			}
		})
	}
}
