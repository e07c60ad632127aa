package models

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
	// Raw HTML in replies is dropped by goldmark unless html.WithUnsafe is set.
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// RenderMarkdown converts the Markdown produced by a model into HTML suitable for the transcript.
func RenderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// RenderContent renders msg for display: assistant replies are Markdown, user input is shown as
// escaped plain text with its line breaks kept.
func RenderContent(msg Message) (template.HTML, error) {
	if msg.Role == RoleAssistant {
		return RenderMarkdown(msg.Content)
	}
	return template.HTML(template.HTMLEscapeString(msg.Content)), nil
}
