package web

import (
	"database/sql"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/ESVigan/auto-renamer/internal/config"
	"github.com/ESVigan/auto-renamer/internal/errors"
	"github.com/ESVigan/auto-renamer/internal/ops"
	"github.com/ESVigan/auto-renamer/internal/update"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
	version  string
}

// HandlePreviewForm handles GET /preview, the empty batch form.
func (h *Handlers) HandlePreviewForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, "preview", PreviewPageData{
		PageData: h.page("Preview", "preview"),
	})
}

// HandlePreview handles POST /preview: resolve, execute, or undo a batch.
// The action form field selects the operation so the page can keep the
// entered paths across a preview/execute cycle.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	date := strings.TrimSpace(r.FormValue("date"))
	pathsText := r.FormValue("paths")
	paths := splitLines(pathsText)

	data := PreviewPageData{
		PageData:  h.page("Preview", "preview"),
		Date:      date,
		PathsText: pathsText,
	}

	switch r.FormValue("action") {
	case "execute":
		out, err := ops.Execute(h.db, h.cfg, ops.ExecuteInput{Date: date, Paths: paths})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Executed = out
	case "undo":
		out, err := ops.Undo(h.db)
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Undone = out
	default:
		out, err := ops.Preview(h.db, h.cfg, ops.PreviewInput{Date: date, Paths: paths})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Result = out
	}

	h.renderer.renderPage(w, "preview", data)
}

// HandleCodes handles GET /codes, the project code table.
func (h *Handlers) HandleCodes(w http.ResponseWriter, r *http.Request) {
	out, err := ops.ListCodes(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "codes", CodesPageData{
		PageData: h.page("Project Codes", "codes"),
		Codes:    out.Codes,
		Total:    out.Total,
	})
}

// HandleCodeCreate handles POST /codes to add a project code.
func (h *Handlers) HandleCodeCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	_, err := ops.StoreCode(h.db, ops.StoreCodeInput{
		Code:     r.FormValue("code"),
		FullName: r.FormValue("full_name"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/codes", http.StatusFound)
}

// HandleCodeDelete handles POST /codes/{id}/delete.
func (h *Handlers) HandleCodeDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("code ID is required"))
		return
	}

	if _, err := ops.DeleteCode(h.db, ops.DeleteCodeInput{ID: id}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/codes", http.StatusFound)
}

// HandleRules handles GET /rules, the diff rule table with field suggestions.
func (h *Handlers) HandleRules(w http.ResponseWriter, r *http.Request) {
	out, err := ops.ListRules(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	suggestions := make(map[string][]string, 3)
	for _, field := range []string{ops.SuggestFieldFullName, ops.SuggestFieldAbbr, ops.SuggestFieldLang} {
		s, err := ops.Suggest(h.db, ops.SuggestInput{Field: field})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		suggestions[field] = s.Values
	}

	h.renderer.renderPage(w, "rules", RulesPageData{
		PageData:    h.page("Diff Rules", "rules"),
		Rules:       out.Rules,
		Total:       out.Total,
		Suggestions: suggestions,
	})
}

// HandleRuleCreate handles POST /rules to add a diff rule.
func (h *Handlers) HandleRuleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	_, err := ops.StoreRule(h.db, ops.StoreRuleInput{
		DiffNum:  r.FormValue("diff_num"),
		FullName: r.FormValue("full_name"),
		Abbr:     r.FormValue("abbr"),
		Lang:     r.FormValue("lang"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/rules", http.StatusFound)
}

// HandleRuleDelete handles POST /rules/{id}/delete.
func (h *Handlers) HandleRuleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("rule ID is required"))
		return
	}

	if _, err := ops.DeleteRule(h.db, ops.DeleteRuleInput{ID: id}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/rules", http.StatusFound)
}

// HandleUpdate handles GET /update: check the release feed and render the
// release notes. A failed check is shown on the page, not as an error page,
// so the UI stays usable offline.
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	data := UpdatePageData{
		PageData: h.page("Updates", "update"),
	}

	client := update.NewClient(h.cfg)
	result, err := update.Check(r.Context(), client, h.version)
	if err != nil {
		var rErr *errors.RenamerError
		if stderrors.As(err, &rErr) && (rErr.Code == errors.ErrUpdateCheck || rErr.Code == errors.ErrInvalidRequest) {
			data.CheckError = rErr.Message
			h.renderer.renderPage(w, "update", data)
			return
		}
		h.renderer.renderError(w, r, err)
		return
	}

	data.Result = result
	data.ReleaseNotes = renderMarkdown(result.Release.Body)
	h.renderer.renderPage(w, "update", data)
}

// page builds the common template fields for one page.
func (h *Handlers) page(title, nav string) PageData {
	return PageData{Title: title, Version: h.version, Nav: nav}
}

// splitLines turns textarea input into one path per non-blank line.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
