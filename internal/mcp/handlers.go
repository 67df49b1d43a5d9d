package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/profreach/internal/backup"
	"github.com/hpungsan/profreach/internal/errors"
	"github.com/hpungsan/profreach/internal/oracle"
	"github.com/hpungsan/profreach/internal/outreach"
	"github.com/hpungsan/profreach/internal/repo"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	repo       *repo.Repo
	ai         oracle.Oracle
	exportsDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(r *repo.Repo, ai oracle.Oracle, exportsDir string) *Handlers {
	return &Handlers{repo: r, ai: ai, exportsDir: exportsDir}
}

// Request types for each tool

// ProfessorAddRequest represents the arguments for professor_add.
type ProfessorAddRequest struct {
	Name          string   `json:"name"`
	Email         string   `json:"email,omitempty"`
	University    string   `json:"university,omitempty"`
	Department    string   `json:"department,omitempty"`
	Country       string   `json:"country,omitempty"`
	ResearchAreas []string `json:"research_areas,omitempty"`
	RecentPapers  []string `json:"recent_papers,omitempty"`
	WebsiteURL    string   `json:"website_url,omitempty"`
	ScholarURL    string   `json:"scholar_url,omitempty"`
	HiringStatus  string   `json:"hiring_status,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// ProfessorGetRequest represents the arguments for professor_get and professor_delete.
type ProfessorGetRequest struct {
	ID string `json:"id"`
}

// ProfessorUpdateRequest represents the arguments for professor_update.
type ProfessorUpdateRequest struct {
	ID                string    `json:"id"`
	Name              *string   `json:"name,omitempty"`
	Email             *string   `json:"email,omitempty"`
	University        *string   `json:"university,omitempty"`
	Department        *string   `json:"department,omitempty"`
	Country           *string   `json:"country,omitempty"`
	ResearchAreas     *[]string `json:"research_areas,omitempty"`
	RecentPapers      *[]string `json:"recent_papers,omitempty"`
	WebsiteURL        *string   `json:"website_url,omitempty"`
	ScholarURL        *string   `json:"scholar_url,omitempty"`
	HiringStatus      *string   `json:"hiring_status,omitempty"`
	ApplicationStatus *string   `json:"application_status,omitempty"`
	Notes             *string   `json:"notes,omitempty"`
	LastContacted     *string   `json:"last_contacted,omitempty"`
}

// LookupRequest represents the arguments for professor_lookup.
type LookupRequest struct {
	Query string `json:"query"`
}

// MemoryAddRequest represents the arguments for memory_add.
type MemoryAddRequest struct {
	Content string   `json:"content"`
	Source  string   `json:"source,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// DraftListRequest represents the arguments for draft_list.
type DraftListRequest struct {
	ProfessorID string `json:"professor_id,omitempty"`
}

// EmailDraftRequest represents the arguments for email_draft.
type EmailDraftRequest struct {
	ProfessorID string `json:"professor_id"`
	Template    string `json:"template"`
}

// BackupExportRequest represents the arguments for backup_export.
type BackupExportRequest struct {
	Path string `json:"path,omitempty"`
}

// BackupImportRequest represents the arguments for backup_import.
type BackupImportRequest struct {
	Path string `json:"path"`
}

// Handler implementations

// HandleProfessorAdd handles the professor_add tool call.
func (h *Handlers) HandleProfessorAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProfessorAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Name == "" {
		return errorResult(errors.NewInvalidRequest("name is required")), nil
	}

	p := outreach.NewProfessor(input.Name)
	p.Email = input.Email
	p.University = input.University
	p.Department = input.Department
	p.Country = input.Country
	if input.ResearchAreas != nil {
		p.ResearchAreas = input.ResearchAreas
	}
	if input.RecentPapers != nil {
		p.RecentPapers = input.RecentPapers
	}
	p.WebsiteURL = input.WebsiteURL
	p.ScholarURL = input.ScholarURL
	if s := outreach.HiringStatus(input.HiringStatus); s.Valid() {
		p.HiringStatus = s
	}
	p.Notes = input.Notes

	if err := h.repo.AddProfessor(p); err != nil {
		return errorResult(err), nil
	}
	return successResult(p)
}

// HandleProfessorList handles the professor_list tool call.
func (h *Handlers) HandleProfessorList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(map[string]any{"professors": h.repo.Professors()})
}

// HandleProfessorGet handles the professor_get tool call.
func (h *Handlers) HandleProfessorGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProfessorGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	p := h.repo.Professor(input.ID)
	if p == nil {
		return errorResult(errors.NewNotFound("professor", input.ID)), nil
	}
	return successResult(map[string]any{
		"professor":   p,
		"chat_count":  len(h.repo.ChatsByProfessor(p.ID)),
		"draft_count": len(h.repo.DraftsByProfessor(p.ID)),
	})
}

// HandleProfessorUpdate handles the professor_update tool call.
func (h *Handlers) HandleProfessorUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProfessorUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if h.repo.Professor(input.ID) == nil {
		return errorResult(errors.NewNotFound("professor", input.ID)), nil
	}
	if input.HiringStatus != nil && !outreach.HiringStatus(*input.HiringStatus).Valid() {
		return errorResult(errors.NewInvalidRequest("unknown hiring status: " + *input.HiringStatus)), nil
	}
	if input.ApplicationStatus != nil && !outreach.ApplicationStatus(*input.ApplicationStatus).Valid() {
		return errorResult(errors.NewInvalidRequest("unknown application status: " + *input.ApplicationStatus)), nil
	}

	err = h.repo.UpdateProfessor(input.ID, func(p *outreach.Professor) {
		if input.Name != nil {
			p.Name = *input.Name
		}
		if input.Email != nil {
			p.Email = *input.Email
		}
		if input.University != nil {
			p.University = *input.University
		}
		if input.Department != nil {
			p.Department = *input.Department
		}
		if input.Country != nil {
			p.Country = *input.Country
		}
		if input.ResearchAreas != nil {
			p.ResearchAreas = *input.ResearchAreas
		}
		if input.RecentPapers != nil {
			p.RecentPapers = *input.RecentPapers
		}
		if input.WebsiteURL != nil {
			p.WebsiteURL = *input.WebsiteURL
		}
		if input.ScholarURL != nil {
			p.ScholarURL = *input.ScholarURL
		}
		if input.HiringStatus != nil {
			p.HiringStatus = outreach.HiringStatus(*input.HiringStatus)
		}
		if input.ApplicationStatus != nil {
			p.ApplicationStatus = outreach.ApplicationStatus(*input.ApplicationStatus)
		}
		if input.Notes != nil {
			p.Notes = *input.Notes
		}
		if input.LastContacted != nil {
			p.LastContacted = input.LastContacted
		}
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(h.repo.Professor(input.ID))
}

// HandleProfessorDelete handles the professor_delete tool call.
func (h *Handlers) HandleProfessorDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProfessorGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if h.repo.Professor(input.ID) == nil {
		return errorResult(errors.NewNotFound("professor", input.ID)), nil
	}
	if err := h.repo.DeleteProfessor(input.ID); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"deleted": input.ID})
}

// HandleProfessorLookup handles the professor_lookup tool call.
func (h *Handlers) HandleProfessorLookup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LookupRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.ai.Lookup(ctx, input.Query)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleProfileGet handles the profile_get tool call.
func (h *Handlers) HandleProfileGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.repo.Profile())
}

// HandleMemoryAdd handles the memory_add tool call.
func (h *Handlers) HandleMemoryAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MemoryAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Content == "" {
		return errorResult(errors.NewInvalidRequest("content is required")), nil
	}

	source := input.Source
	if source == "" {
		source = "manual"
	}
	item := outreach.MemoryItem{
		ID:        outreach.NewID(),
		Content:   input.Content,
		Source:    source,
		Tags:      input.Tags,
		CreatedAt: outreach.Now(),
	}
	if err := h.repo.AddMemory(item); err != nil {
		return errorResult(err), nil
	}
	return successResult(item)
}

// HandleMemoryList handles the memory_list tool call.
func (h *Handlers) HandleMemoryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(map[string]any{"memory": h.repo.Memory()})
}

// HandleDraftList handles the draft_list tool call.
func (h *Handlers) HandleDraftList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DraftListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	drafts := h.repo.Drafts()
	if input.ProfessorID != "" {
		drafts = h.repo.DraftsByProfessor(input.ProfessorID)
	}
	return successResult(map[string]any{"drafts": drafts})
}

// HandleEmailDraft handles the email_draft tool call.
func (h *Handlers) HandleEmailDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EmailDraftRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	p := h.repo.Professor(input.ProfessorID)
	if p == nil {
		return errorResult(errors.NewNotFound("professor", input.ProfessorID)), nil
	}

	memory := make([]oracle.ContextMemory, 0)
	for _, m := range h.repo.Memory() {
		memory = append(memory, oracle.ContextMemory{Content: m.Content})
	}

	result, err := h.ai.DraftEmail(ctx, oracle.EmailRequest{
		Professor: *p,
		Profile:   h.repo.Profile(),
		Template:  outreach.EmailTemplate(input.Template),
		Memory:    memory,
	})
	if err != nil {
		return errorResult(err), nil
	}

	draft := outreach.EmailDraft{
		ID:          outreach.NewID(),
		ProfessorID: p.ID,
		Template:    outreach.EmailTemplate(input.Template),
		Subject:     result.Subject,
		Body:        result.Body,
		CreatedAt:   outreach.Now(),
	}
	if err := h.repo.AddDraft(draft); err != nil {
		return errorResult(err), nil
	}
	return successResult(draft)
}

// HandleBackupExport handles the backup_export tool call.
func (h *Handlers) HandleBackupExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BackupExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := backup.WriteFile(ctx, h.repo, h.exportsDir, input.Path)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleBackupImport handles the backup_import tool call.
func (h *Handlers) HandleBackupImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BackupImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path is required")), nil
	}

	result, err := backup.ReadFile(ctx, h.repo, input.Path)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// errorResult converts an error to an MCP error result.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if appErr, ok := err.(*errors.Error); ok {
		errorObj := map[string]any{
			"code":    appErr.Code,
			"message": appErr.Message,
			"status":  appErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths
		if appErr.Code != errors.ErrInternal && appErr.Details != nil {
			errorObj["details"] = appErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult converts data to an MCP success result.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
