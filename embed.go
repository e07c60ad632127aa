package insightawebui

import "embed"

// TemplateFS contains the embedded HTML templates used for rendering the chat page. The templates are
// split into the page layout, the page itself, and the partial views swapped in by form posts and
// server-sent events.
//
//go:embed templates/*
var TemplateFS embed.FS

// StaticFS contains the embedded static assets (script and stylesheet) served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
