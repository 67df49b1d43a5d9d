package web

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/profreach/internal/errors"
	"github.com/hpungsan/profreach/internal/outreach"
)

// md renders the markdown used in draft bodies and professor notes.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderMarkdown converts markdown to HTML.
func renderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PreviewDraft renders a draft body as HTML, with the subject as a heading.
func (h *Handlers) PreviewDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	draft, err := h.repo.Draft(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	source := "# " + draft.Subject + "\n\n*" + outreach.EmailTemplateLabels[draft.Template] + "*\n\n" + draft.Body
	html, err := renderMarkdown(source)
	if err != nil {
		h.writeError(w, errors.NewInternal(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

// PreviewNotes renders a professor's notes as HTML.
func (h *Handlers) PreviewNotes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p := h.repo.Professor(id)
	if p == nil {
		h.writeError(w, errors.NewNotFound("professor", id))
		return
	}
	html, err := renderMarkdown(p.Notes)
	if err != nil {
		h.writeError(w, errors.NewInternal(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}
