package models_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/MegaGrindStone/insighta-web-ui/internal/models"
)

func TestNewChatRequest(t *testing.T) {
	settings := models.DefaultChatSettings()
	settings.InternetSearch = true
	transcript := []models.Message{
		{ID: "1", Role: models.RoleUser, Content: "Hi", Timestamp: time.Now()},
		{ID: "2", Role: models.RoleAssistant, Content: "Hello!", Timestamp: time.Now()},
		{ID: "3", Role: models.RoleUser, Content: "What is the capital of France?", Timestamp: time.Now()},
	}

	body, err := json.Marshal(models.NewChatRequest(settings, transcript))
	if err != nil {
		t.Fatal(err)
	}

	want := `{"model_name":"gpt-4o-mini","model_provider":"openai",` +
		`"system_prompt":"You are a helpful AI assistant.",` +
		`"messages":["Hi","Hello!","What is the capital of France?"],"allow_search":true}`
	if string(body) != want {
		t.Errorf("body = %s\nwant %s", body, want)
	}
}

func TestNewChatRequestEmptyTranscript(t *testing.T) {
	body, err := json.Marshal(models.NewChatRequest(models.DefaultChatSettings(), nil))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `"messages":[]`) {
		t.Errorf("body = %s, want an empty messages array", body)
	}
}

func TestExtractReply(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "response field", body: `{"response": "hello"}`, want: "hello"},
		{name: "bare string", body: `"hi there"`, want: "hi there"},
		{name: "content field", body: `{"content": "from content"}`, want: "from content"},
		{
			name: "response wins over content",
			body: `{"content": "second", "response": "first"}`,
			want: "first",
		},
		{
			name: "empty response falls back to content",
			body: `{"response": "", "content": "fallback"}`,
			want: "fallback",
		},
		{
			name: "null response falls back to content",
			body: `{"response": null, "content": "fallback"}`,
			want: "fallback",
		},
		{
			name: "falsy fields stringify whole payload",
			body: `{"response": 0, "content": false}`,
			want: `{"response":0,"content":false}`,
		},
		{
			name: "non-string response is encoded",
			body: `{"response": {"text": "x", "score": 1}}`,
			want: `{"text":"x","score":1}`,
		},
		{
			name: "unknown shape keeps key order",
			body: `{"error": "Model not allowed", "code": 3}`,
			want: `{"error":"Model not allowed","code":3}`,
		},
		{name: "array", body: `[1, 2]`, want: `[1,2]`},
		{
			name: "numbers are normalized",
			body: `{"a": 1e2, "b": 1.0, "c": -0.50, "d": 1e21, "e": 0.0000001, "f": 1e400, "g": -0}`,
			want: `{"a":100,"b":1,"c":-0.5,"d":1e+21,"e":1e-7,"f":null,"g":0}`,
		},
		{
			name: "nested values keep order and markup",
			body: `{"z": [true, null, {"y": "<b>&</b>", "x": []}], "a": {}}`,
			want: `{"z":[true,null,{"y":"<b>&</b>","x":[]}],"a":{}}`,
		},
		{
			name: "non-string content is normalized",
			body: `{"content": [1.50, 2e0]}`,
			want: `[1.5,2]`,
		},
		{name: "number", body: `42`, want: `42`},
		{name: "agent backend reply", body: `{"response":"Paris","model_used":"gpt-4o-mini","provider":"openai","search_enabled":false}`, want: "Paris"},
		{name: "null", body: `null`, wantErr: true},
		{name: "invalid json", body: `<html>oops</html>`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
		{name: "trailing data", body: `{"response":"a"} {"response":"b"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := models.ExtractReply([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractReply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractReply() = %q, want %q", got, tt.want)
			}
		})
	}
}
