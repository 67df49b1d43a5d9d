package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hpungsan/profreach/internal/backup"
	"github.com/hpungsan/profreach/internal/config"
	"github.com/hpungsan/profreach/internal/errors"
	"github.com/hpungsan/profreach/internal/oracle"
	"github.com/hpungsan/profreach/internal/outreach"
	"github.com/hpungsan/profreach/internal/repo"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	repo     *repo.Repo
	ai       oracle.Oracle
	cfg      *config.Config
	log      *zap.Logger
	validate *validator.Validate
}

// NewHandlers creates the handler set.
func NewHandlers(r *repo.Repo, ai oracle.Oracle, cfg *config.Config, log *zap.Logger) *Handlers {
	return &Handlers{
		repo:     r,
		ai:       ai,
		cfg:      cfg,
		log:      log,
		validate: validator.New(),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps structured errors onto HTTP status codes.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	if e, ok := err.(*errors.Error); ok {
		writeJSON(w, e.Status, map[string]any{
			"error":   e.Message,
			"code":    e.Code,
			"details": e.Details,
		})
		return
	}
	h.log.Error("unhandled error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"error": err.Error(),
		"code":  errors.ErrInternal,
	})
}

// decodeBody decodes and validates a JSON request body.
func (h *Handlers) decodeBody(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return errors.NewInvalidRequest("invalid JSON body: " + err.Error())
	}
	if err := h.validate.Struct(out); err != nil {
		return errors.NewInvalidRequest(err.Error())
	}
	return nil
}

// Professors

type addProfessorRequest struct {
	Name              string   `json:"name" validate:"required"`
	Email             string   `json:"email"`
	University        string   `json:"university"`
	Department        string   `json:"department"`
	Country           string   `json:"country"`
	ResearchAreas     []string `json:"researchAreas"`
	RecentPapers      []string `json:"recentPapers"`
	WebsiteURL        string   `json:"websiteUrl"`
	ScholarURL        string   `json:"scholarUrl"`
	HiringStatus      string   `json:"hiringStatus"`
	ApplicationStatus string   `json:"applicationStatus"`
	Notes             string   `json:"notes"`
}

func (h *Handlers) ListProfessors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.Professors())
}

func (h *Handlers) AddProfessor(w http.ResponseWriter, r *http.Request) {
	var req addProfessorRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	p := outreach.NewProfessor(req.Name)
	p.Email = req.Email
	p.University = req.University
	p.Department = req.Department
	p.Country = req.Country
	if req.ResearchAreas != nil {
		p.ResearchAreas = req.ResearchAreas
	}
	if req.RecentPapers != nil {
		p.RecentPapers = req.RecentPapers
	}
	p.WebsiteURL = req.WebsiteURL
	p.ScholarURL = req.ScholarURL
	if s := outreach.HiringStatus(req.HiringStatus); s.Valid() {
		p.HiringStatus = s
	}
	if s := outreach.ApplicationStatus(req.ApplicationStatus); s.Valid() {
		p.ApplicationStatus = s
	}
	p.Notes = req.Notes

	if err := h.repo.AddProfessor(p); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handlers) GetProfessor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p := h.repo.Professor(id)
	if p == nil {
		h.writeError(w, errors.NewNotFound("professor", id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type updateProfessorRequest struct {
	Name              *string   `json:"name"`
	Email             *string   `json:"email"`
	University        *string   `json:"university"`
	Department        *string   `json:"department"`
	Country           *string   `json:"country"`
	ResearchAreas     *[]string `json:"researchAreas"`
	RecentPapers      *[]string `json:"recentPapers"`
	WebsiteURL        *string   `json:"websiteUrl"`
	ScholarURL        *string   `json:"scholarUrl"`
	HiringStatus      *string   `json:"hiringStatus"`
	ApplicationStatus *string   `json:"applicationStatus"`
	Notes             *string   `json:"notes"`
	LastContacted     *string   `json:"lastContacted"`
}

func (h *Handlers) UpdateProfessor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.repo.Professor(id) == nil {
		h.writeError(w, errors.NewNotFound("professor", id))
		return
	}

	var req updateProfessorRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.HiringStatus != nil && !outreach.HiringStatus(*req.HiringStatus).Valid() {
		h.writeError(w, errors.NewInvalidRequest("unknown hiring status: "+*req.HiringStatus))
		return
	}
	if req.ApplicationStatus != nil && !outreach.ApplicationStatus(*req.ApplicationStatus).Valid() {
		h.writeError(w, errors.NewInvalidRequest("unknown application status: "+*req.ApplicationStatus))
		return
	}

	err := h.repo.UpdateProfessor(id, func(p *outreach.Professor) {
		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.Email != nil {
			p.Email = *req.Email
		}
		if req.University != nil {
			p.University = *req.University
		}
		if req.Department != nil {
			p.Department = *req.Department
		}
		if req.Country != nil {
			p.Country = *req.Country
		}
		if req.ResearchAreas != nil {
			p.ResearchAreas = *req.ResearchAreas
		}
		if req.RecentPapers != nil {
			p.RecentPapers = *req.RecentPapers
		}
		if req.WebsiteURL != nil {
			p.WebsiteURL = *req.WebsiteURL
		}
		if req.ScholarURL != nil {
			p.ScholarURL = *req.ScholarURL
		}
		if req.HiringStatus != nil {
			p.HiringStatus = outreach.HiringStatus(*req.HiringStatus)
		}
		if req.ApplicationStatus != nil {
			p.ApplicationStatus = outreach.ApplicationStatus(*req.ApplicationStatus)
		}
		if req.Notes != nil {
			p.Notes = *req.Notes
		}
		if req.LastContacted != nil {
			p.LastContacted = req.LastContacted
		}
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.repo.Professor(id))
}

func (h *Handlers) DeleteProfessor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.repo.Professor(id) == nil {
		h.writeError(w, errors.NewNotFound("professor", id))
		return
	}
	if err := h.repo.DeleteProfessor(id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *Handlers) ListChats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.ChatsByProfessor(chi.URLParam(r, "id")))
}

func (h *Handlers) ListProfessorDrafts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.DraftsByProfessor(chi.URLParam(r, "id")))
}

// Profile

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.Profile())
}

func (h *Handlers) PutProfile(w http.ResponseWriter, r *http.Request) {
	var p outreach.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.writeError(w, errors.NewInvalidRequest("invalid JSON body: "+err.Error()))
		return
	}
	if err := h.repo.SetProfile(p); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Documents

type addDocumentRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category"`
	Content  string `json:"content" validate:"required"`
	MimeType string `json:"mimeType"`
}

func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.repo.Documents(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *Handlers) AddDocument(w http.ResponseWriter, r *http.Request) {
	var req addDocumentRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	size := int64(len(req.Content))
	if size > h.cfg.MaxDocumentBytes {
		h.writeError(w, errors.NewDocumentTooLarge(h.cfg.MaxDocumentBytes, size))
		return
	}

	category := outreach.DocumentCategory(req.Category)
	if !category.Valid() {
		category = outreach.CategoryOther
	}
	doc := outreach.Document{
		ID:        outreach.NewID(),
		Name:      req.Name,
		Category:  category,
		Content:   req.Content,
		MimeType:  req.MimeType,
		Size:      size,
		CreatedAt: outreach.Now(),
	}
	if err := h.repo.AddDocument(r.Context(), doc); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *Handlers) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.DeleteDocument(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// Memory

type addMemoryRequest struct {
	Content string   `json:"content" validate:"required"`
	Source  string   `json:"source"`
	Tags    []string `json:"tags"`
}

func (h *Handlers) ListMemory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.Memory())
}

func (h *Handlers) AddMemory(w http.ResponseWriter, r *http.Request) {
	var req addMemoryRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	source := req.Source
	if source == "" {
		source = "manual"
	}
	item := outreach.MemoryItem{
		ID:        outreach.NewID(),
		Content:   req.Content,
		Source:    source,
		Tags:      req.Tags,
		CreatedAt: outreach.Now(),
	}
	if err := h.repo.AddMemory(item); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handlers) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.DeleteMemory(id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// Drafts

func (h *Handlers) ListDrafts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.Drafts())
}

func (h *Handlers) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.DeleteDraft(id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// Backup

func (h *Handlers) ExportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := backup.Export(r.Context(), h.repo)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="profreach-backup.json"`)
	writeJSON(w, http.StatusOK, data)
}

func (h *Handlers) ImportBackup(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, errors.NewInvalidRequest("failed to read body: "+err.Error()))
		return
	}
	data, err := backup.Import(r.Context(), h.repo, raw)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"imported":   true,
		"professors": len(data.Professors),
		"documents":  len(data.Documents),
		"memory":     len(data.Memory),
		"chats":      len(data.Chats),
		"drafts":     len(data.Drafts),
	})
}

// AI routes

type lookupRequest struct {
	Query string `json:"query" validate:"required"`
}

func (h *Handlers) Lookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	result, err := h.ai.Lookup(r.Context(), req.Query)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type emailRequest struct {
	ProfessorID string `json:"professorId" validate:"required"`
	Template    string `json:"template" validate:"required"`
}

// DraftEmail generates an email for the professor and persists it as a draft.
func (h *Handlers) DraftEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	p := h.repo.Professor(req.ProfessorID)
	if p == nil {
		h.writeError(w, errors.NewNotFound("professor", req.ProfessorID))
		return
	}

	result, err := h.ai.DraftEmail(r.Context(), oracle.EmailRequest{
		Professor: *p,
		Profile:   h.repo.Profile(),
		Template:  outreach.EmailTemplate(req.Template),
		Memory:    h.contextMemory(),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	draft := outreach.EmailDraft{
		ID:          outreach.NewID(),
		ProfessorID: p.ID,
		Template:    outreach.EmailTemplate(req.Template),
		Subject:     result.Subject,
		Body:        result.Body,
		CreatedAt:   outreach.Now(),
	}
	if err := h.repo.AddDraft(draft); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

type chatRequest struct {
	ProfessorID string `json:"professorId" validate:"required"`
	Message     string `json:"message" validate:"required"`
}

// Chat streams the advisor response as plain text fragments, persists both
// turns once the stream completes, then extracts memories in the background.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	p := h.repo.Professor(req.ProfessorID)
	if p == nil {
		h.writeError(w, errors.NewNotFound("professor", req.ProfessorID))
		return
	}

	history := make([]oracle.HistoryMessage, 0)
	for _, c := range h.repo.ChatsByProfessor(p.ID) {
		history = append(history, oracle.HistoryMessage{Role: c.Role, Content: c.Content})
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	flusher, _ := w.(http.Flusher)

	streamed := false
	full, err := h.ai.Chat(r.Context(), oracle.ChatRequest{
		Message:   req.Message,
		Professor: *p,
		Profile:   h.repo.Profile(),
		Memory:    h.contextMemory(),
		History:   history,
	}, func(fragment string) {
		streamed = true
		_, _ = w.Write([]byte(fragment))
		if flusher != nil {
			flusher.Flush()
		}
	})
	if err != nil {
		h.log.Warn("chat stream failed", zap.Error(err))
		if !streamed {
			// Nothing written yet, so the response can still carry a real
			// status code (a missing API key must not look like a reply).
			h.writeError(w, err)
			return
		}
		// Headers are out; a trailing error line is the best a plain text
		// stream can do.
		_, _ = w.Write([]byte("\n[error] " + err.Error()))
		return
	}

	now := outreach.Now()
	_ = h.repo.AddChat(outreach.ChatMessage{
		ID: outreach.NewID(), ProfessorID: p.ID,
		Role: outreach.RoleUser, Content: req.Message, CreatedAt: now,
	})
	_ = h.repo.AddChat(outreach.ChatMessage{
		ID: outreach.NewID(), ProfessorID: p.ID,
		Role: outreach.RoleAssistant, Content: full, CreatedAt: outreach.Now(),
	})

	go h.rememberExchange(p, req.Message, full)
}

// rememberExchange extracts memories from a finished chat exchange and stores
// them tagged with the professor. Runs detached from the request context.
func (h *Handlers) rememberExchange(p *outreach.Professor, userMessage, assistantMessage string) {
	ctx := context.Background()
	for _, content := range h.ai.ExtractMemories(ctx, userMessage, assistantMessage, p.Name) {
		item := outreach.MemoryItem{
			ID:        outreach.NewID(),
			Content:   content,
			Source:    "chat:" + p.ID,
			Tags:      []string{p.Name},
			CreatedAt: outreach.Now(),
		}
		if err := h.repo.AddMemory(item); err != nil {
			h.log.Warn("failed to store extracted memory", zap.Error(err))
		}
	}
}

// ParseResume accepts a multipart file upload, parses it, and merges the
// result into the stored profile.
func (h *Handlers) ParseResume(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.cfg.MaxDocumentBytes); err != nil {
		h.writeError(w, errors.NewInvalidRequest("invalid multipart form: "+err.Error()))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, errors.NewInvalidRequest("no file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxDocumentBytes+1))
	if err != nil {
		h.writeError(w, errors.NewInternal(err))
		return
	}
	if int64(len(data)) > h.cfg.MaxDocumentBytes {
		h.writeError(w, errors.NewDocumentTooLarge(h.cfg.MaxDocumentBytes, int64(len(data))))
		return
	}

	parsed, err := h.ai.ParseResume(r.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	merged := outreach.MergeProfile(h.repo.Profile(), parsed)
	if err := h.repo.SetProfile(merged); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

// contextMemory converts stored memory items into prompt context.
func (h *Handlers) contextMemory() []oracle.ContextMemory {
	items := h.repo.Memory()
	out := make([]oracle.ContextMemory, 0, len(items))
	for _, m := range items {
		out = append(out, oracle.ContextMemory{Content: m.Content})
	}
	return out
}
