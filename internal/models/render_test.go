package models_test

import (
	"strings"
	"testing"

	"github.com/MegaGrindStone/insighta-web-ui/internal/models"
)

func TestRenderContent(t *testing.T) {
	tests := []struct {
		name       string
		msg        models.Message
		contains   []string
		notContain []string
	}{
		{
			name:     "assistant markdown",
			msg:      models.Message{Role: models.RoleAssistant, Content: "**Paris** is the capital."},
			contains: []string{"<strong>Paris</strong>"},
		},
		{
			name:       "assistant raw html is dropped",
			msg:        models.Message{Role: models.RoleAssistant, Content: "<script>alert(1)</script>"},
			notContain: []string{"<script>"},
		},
		{
			name:       "user text is escaped",
			msg:        models.Message{Role: models.RoleUser, Content: "<b>bold?</b> **no**"},
			contains:   []string{"&lt;b&gt;bold?&lt;/b&gt;", "**no**"},
			notContain: []string{"<b>", "<strong>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := models.RenderContent(tt.msg)
			if err != nil {
				t.Fatalf("RenderContent() error = %v", err)
			}
			for _, c := range tt.contains {
				if !strings.Contains(string(got), c) {
					t.Errorf("RenderContent() = %q, want to contain %q", got, c)
				}
			}
			for _, c := range tt.notContain {
				if strings.Contains(string(got), c) {
					t.Errorf("RenderContent() = %q, should not contain %q", got, c)
				}
			}
		})
	}
}
