package handlers

import (
	"log/slog"
	"net/http"

	"github.com/MegaGrindStone/insighta-web-ui/internal/models"
)

// HandleSettings applies the sidebar form to the stored settings and renders the refreshed sidebar
// and chat header.
//
// Fields that are absent from the form are left unchanged, except "internet_search", which behaves
// like a checkbox and is off unless present. The provider is applied before the model, so switching
// provider resets the model to the new provider's first entry unless the posted model is offered by
// the new provider. A model the provider doesn't offer is ignored.
func (m Main) HandleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.settingsMu.Lock()
	defer m.settingsMu.Unlock()

	settings, err := m.settings(r.Context())
	if err != nil {
		m.logger.Error("Failed to load settings", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Form.Has("backend_url") {
		settings.BackendURL = r.Form.Get("backend_url")
	}
	if r.Form.Has("system_prompt") {
		settings.SystemPrompt = r.Form.Get("system_prompt")
	}
	settings.InternetSearch = r.Form.Get("internet_search") != ""

	if r.Form.Has("provider") {
		p, err := models.ParseProvider(r.Form.Get("provider"))
		if err != nil {
			m.logger.Error("Invalid provider", slog.String(errLoggerKey, err.Error()))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := settings.SetProvider(p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if model := r.Form.Get("model"); model != "" {
		if err := settings.SetModel(model); err != nil {
			m.logger.Debug("Model ignored", slog.String(errLoggerKey, err.Error()))
		}
	}

	if err := m.store.SaveSettings(r.Context(), settings); err != nil {
		m.logger.Error("Failed to save settings", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data, err := m.pageData(r.Context())
	if err != nil {
		m.logger.Error("Failed to prepare page", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := m.templates.ExecuteTemplate(w, "settings_update", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
