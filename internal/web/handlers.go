package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/orbit/internal/command"
	"github.com/hpungsan/orbit/internal/config"
	"github.com/hpungsan/orbit/internal/errors"
	"github.com/hpungsan/orbit/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
// The UI is single-user, so all requests share one session and undo slot.
type Handlers struct {
	exec     *ops.Executor
	cfg      *config.Config
	renderer *Renderer
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.Mutex
	sess ops.Session
}

// CommandResponse is the JSON body returned by POST /command.
type CommandResponse struct {
	ops.Result
	CanUndo bool `json:"can_undo"`
}

// HandleList handles GET /contacts: list contacts with drift state.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	input := ops.ListContactsInput{
		IncludeArchived: parseBoolParam(r, "archived"),
		DriftingOnly:    parseBoolParam(r, "drifting"),
		Limit:           parseIntParam(r, "limit", 50),
		Offset:          parseIntParam(r, "offset", 0),
		CadenceDays:     h.cfg.CadenceDays,
		Now:             h.now(),
	}

	orbit := r.URL.Query().Get("orbit")
	if orbit != "" {
		o, err := strconv.Atoi(orbit)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("orbit must be an integer"))
			return
		}
		input.Orbit = &o
	}

	result, err := ops.ListContacts(r.Context(), h.exec.DB(), input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Contacts",
			Version: h.renderer.version,
			Nav:     "contacts",
		},
		Items:        result.Items,
		Pagination:   result.Pagination,
		DriftingOnly: input.DriftingOnly,
		Archived:     input.IncludeArchived,
		Orbit:        orbit,
	})
}

// HandleDetail handles GET /contacts/{id}: view a single contact.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	data, ok := h.detail(w, r)
	if !ok {
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, data.Contact)
		return
	}
	h.renderer.renderPage(w, r, "detail", data)
}

// HandleSearch handles GET /contacts/{id}/search: search one contact's history.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	data, ok := h.detail(w, r)
	if !ok {
		return
	}

	data.Query = r.URL.Query().Get("q")
	result, err := ops.SearchInteractions(r.Context(), h.exec.DB(), ops.SearchInput{
		ContactID: data.Contact.ID,
		Query:     data.Query,
		Limit:     parseIntParam(r, "limit", 50),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	data.Search = result

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	// If htmx targets #results, render only the results fragment
	if r.Header.Get("HX-Target") == "results" {
		h.renderer.renderBlock(w, http.StatusOK, "detail", "search-results", data)
		return
	}
	h.renderer.renderPage(w, r, "detail", data)
}

// detail loads the contact named by the {id} path value.
func (h *Handlers) detail(w http.ResponseWriter, r *http.Request) (DetailPageData, bool) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("contact ID is required"))
		return DetailPageData{}, false
	}

	c, err := ops.FetchContact(r.Context(), h.exec.DB(), ops.FetchContactInput{
		ID:              id,
		IncludeArchived: true,
		RecentLimit:     parseIntParam(r, "recent", 20),
		CadenceDays:     h.cfg.CadenceDays,
		Now:             h.now(),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return DetailPageData{}, false
	}

	return DetailPageData{
		PageData: PageData{
			Title:   c.Name,
			Version: h.renderer.version,
			Nav:     "contacts",
		},
		Contact:   c,
		NotesHTML: renderMarkdown(c.Notes),
	}, true
}

// HandleDelete handles DELETE /contacts/{id}: remove a contact and its history.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("contact ID is required"))
		return
	}

	result, err := h.exec.DeleteContact(r.Context(), id, "")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/contacts")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/contacts", http.StatusFound)
}

// HandleConstellations handles GET /constellations.
func (h *Handlers) HandleConstellations(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListConstellations(r.Context(), h.exec.DB())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "constellations", ConstellationsPageData{
		PageData: PageData{
			Title:   "Constellations",
			Version: h.renderer.version,
			Nav:     "constellations",
		},
		Items: result.Items,
	})
}

// HandleTimeline handles GET /timeline: recent interactions across contacts.
func (h *Handlers) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Timeline(r.Context(), h.exec.DB(), parseIntParam(r, "limit", 50))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "timeline", TimelinePageData{
		PageData: PageData{
			Title:   "Timeline",
			Version: h.renderer.version,
			Nav:     "timeline",
		},
		Items: result.Items,
	})
}

// HandleCommand handles POST /command: run one command line.
func (h *Handlers) HandleCommand(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	line := r.FormValue("line")
	if strings.TrimSpace(line) == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("line is required"))
		return
	}

	cmd := command.Parse(line)
	if a, ok := cmd.(command.AppendArtifact); ok && parseBool(r.FormValue("force_convert")) {
		a.ForceConvert = true
		cmd = a
	}

	h.mu.Lock()
	result, sess := h.exec.Execute(r.Context(), h.sess, cmd)
	h.sess = sess
	h.mu.Unlock()

	h.logger.Debug("web command", zap.String("line", line), zap.Bool("success", result.Success))

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, CommandResponse{Result: result, CanUndo: sess.CanUndo()})
		return
	}

	// Contact searches land on the contact's search view.
	if s := result.Search; s != nil && s.ContactID != "" && r.Header.Get("HX-Request") != "true" {
		target := "/contacts/" + url.PathEscape(s.ContactID) + "/search?q=" + url.QueryEscape(s.Query)
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	data := CommandPageData{
		PageData: PageData{
			Title:   "Command",
			Version: h.renderer.version,
		},
		Line:    line,
		Result:  result,
		CanUndo: sess.CanUndo(),
	}

	// HTMX request: return only the result fragment
	if r.Header.Get("HX-Request") == "true" {
		h.renderer.renderBlock(w, http.StatusOK, "command", "command-result", data)
		return
	}
	h.renderer.renderPage(w, r, "command", data)
}

// HandlePurge handles POST /interactions/purge: permanently delete soft-deleted interactions.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	input := ops.PurgeInput{
		ContactID: r.FormValue("contact_id"),
	}

	if days := r.FormValue("older_than_days"); days != "" {
		d, err := strconv.Atoi(days)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("older_than_days must be an integer"))
			return
		}
		input.OlderThanDays = &d
	}

	result, err := h.exec.PurgeInteractions(r.Context(), input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: return HTML fragment
	if r.Header.Get("HX-Request") == "true" {
		h.renderer.renderBlock(w, http.StatusOK, "command", "purge-result", result)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	back := "/timeline"
	if input.ContactID != "" {
		back = "/contacts/" + url.PathEscape(input.ContactID)
	}
	http.Redirect(w, r, back, http.StatusFound)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	return parseBool(r.URL.Query().Get(name))
}

func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "on"
}
