package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hack-pad/hackpadfs/mem"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/profreach/internal/config"
	"github.com/hpungsan/profreach/internal/docstore"
	"github.com/hpungsan/profreach/internal/errors"
	"github.com/hpungsan/profreach/internal/kvstore"
	"github.com/hpungsan/profreach/internal/oracle"
	"github.com/hpungsan/profreach/internal/outreach"
	"github.com/hpungsan/profreach/internal/repo"
	"github.com/hpungsan/profreach/internal/sanitize"

	"github.com/hpungsan/profreach/internal/notify"
)

// stubOracle returns canned answers without touching the network.
type stubOracle struct {
	lookupResult *sanitize.LookupResult
	emailResult  *sanitize.EmailResult
	err          error
}

func (s *stubOracle) Lookup(ctx context.Context, query string) (*sanitize.LookupResult, error) {
	return s.lookupResult, s.err
}

func (s *stubOracle) DraftEmail(ctx context.Context, req oracle.EmailRequest) (*sanitize.EmailResult, error) {
	return s.emailResult, s.err
}

func (s *stubOracle) Chat(ctx context.Context, req oracle.ChatRequest, fn func(string)) (string, error) {
	return "", s.err
}

func (s *stubOracle) ExtractMemories(ctx context.Context, userMessage, assistantMessage, professorName string) []string {
	return nil
}

func (s *stubOracle) ParseResume(ctx context.Context, data []byte, mimeType string) (outreach.Profile, error) {
	return outreach.DefaultProfile(), s.err
}

// testSetup creates handlers over in-memory storage.
func testSetup(t *testing.T, ai oracle.Oracle) (*Handlers, *repo.Repo) {
	t.Helper()

	fs, err := mem.NewFS()
	if err != nil {
		t.Fatalf("mem.NewFS failed: %v", err)
	}
	bus := notify.NewBus()
	kv := kvstore.New(fs, bus)
	docs := docstore.New(filepath.Join(t.TempDir(), "documents.db"), kv, bus, repo.KeyDocuments)
	t.Cleanup(func() { docs.Close() })

	r := repo.New(kv, docs)
	return NewHandlers(r, ai, t.TempDir()), r
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// resultJSON decodes a result's text content into a map.
func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(text.Text), &m); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	return m
}

// errorCode extracts the error code from an error result.
func errorCode(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	m := resultJSON(t, result)
	errObj, ok := m["error"].(map[string]any)
	if !ok {
		t.Fatalf("result has no error object: %v", m)
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestHandleProfessorAdd(t *testing.T) {
	h, r := testSetup(t, &stubOracle{})
	ctx := context.Background()

	result, err := h.HandleProfessorAdd(ctx, makeRequest(map[string]any{
		"name":           "Ada Lovelace",
		"university":     "Cambridge",
		"research_areas": []any{"PL", "Systems"},
		"hiring_status":  "actively_hiring",
	}))
	if err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if result.IsError {
		t.Fatalf("result is error: %v", resultJSON(t, result))
	}

	professors := r.Professors()
	if len(professors) != 1 {
		t.Fatalf("professors = %v, want 1", professors)
	}
	if professors[0].HiringStatus != outreach.ActivelyHiring {
		t.Errorf("HiringStatus = %q", professors[0].HiringStatus)
	}
}

func TestHandleProfessorAdd_MissingName(t *testing.T) {
	h, _ := testSetup(t, &stubOracle{})

	result, err := h.HandleProfessorAdd(context.Background(), makeRequest(map[string]any{
		"university": "MIT",
	}))
	if err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if code := errorCode(t, result); code != string(errors.ErrInvalidRequest) {
		t.Errorf("code = %q, want INVALID_REQUEST", code)
	}
}

func TestHandleProfessorGetUpdateDelete(t *testing.T) {
	h, r := testSetup(t, &stubOracle{})
	ctx := context.Background()

	p := outreach.NewProfessor("Ada")
	if err := r.AddProfessor(p); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	// get
	result, err := h.HandleProfessorGet(ctx, makeRequest(map[string]any{"id": p.ID}))
	if err != nil || result.IsError {
		t.Fatalf("get failed: err=%v result=%v", err, result)
	}
	got := resultJSON(t, result)
	if got["chat_count"] != float64(0) {
		t.Errorf("chat_count = %v, want 0", got["chat_count"])
	}

	// update
	result, err = h.HandleProfessorUpdate(ctx, makeRequest(map[string]any{
		"id":                 p.ID,
		"application_status": "sent",
	}))
	if err != nil || result.IsError {
		t.Fatalf("update failed: err=%v result=%v", err, result)
	}
	if r.Professor(p.ID).ApplicationStatus != outreach.StatusSent {
		t.Error("update did not persist")
	}

	// invalid enum
	result, err = h.HandleProfessorUpdate(ctx, makeRequest(map[string]any{
		"id":            p.ID,
		"hiring_status": "probably",
	}))
	if err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for invalid enum")
	}

	// delete
	result, err = h.HandleProfessorDelete(ctx, makeRequest(map[string]any{"id": p.ID}))
	if err != nil || result.IsError {
		t.Fatalf("delete failed: err=%v result=%v", err, result)
	}
	if r.Professor(p.ID) != nil {
		t.Error("professor still present after delete")
	}

	// delete again → not found
	result, err = h.HandleProfessorDelete(ctx, makeRequest(map[string]any{"id": p.ID}))
	if err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if code := errorCode(t, result); code != string(errors.ErrNotFound) {
		t.Errorf("code = %q, want NOT_FOUND", code)
	}
}

func TestHandleProfessorLookup_CredentialMissing(t *testing.T) {
	h, _ := testSetup(t, &stubOracle{err: errors.NewCredentialMissing()})

	result, err := h.HandleProfessorLookup(context.Background(), makeRequest(map[string]any{
		"query": "Ada Lovelace",
	}))
	if err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if code := errorCode(t, result); code != string(errors.ErrCredentialMissing) {
		t.Errorf("code = %q, want CREDENTIAL_MISSING", code)
	}
}

func TestHandleMemoryAddList(t *testing.T) {
	h, _ := testSetup(t, &stubOracle{})
	ctx := context.Background()

	result, err := h.HandleMemoryAdd(ctx, makeRequest(map[string]any{
		"content": "prefers short emails",
		"tags":    []any{"etiquette"},
	}))
	if err != nil || result.IsError {
		t.Fatalf("memory_add failed: err=%v result=%v", err, result)
	}

	result, err = h.HandleMemoryList(ctx, makeRequest(nil))
	if err != nil || result.IsError {
		t.Fatalf("memory_list failed: err=%v result=%v", err, result)
	}
	m := resultJSON(t, result)
	items, ok := m["memory"].([]any)
	if !ok || len(items) != 1 {
		t.Errorf("memory = %v, want 1 item", m["memory"])
	}
}

func TestHandleEmailDraft_Persists(t *testing.T) {
	h, r := testSetup(t, &stubOracle{
		emailResult: &sanitize.EmailResult{Subject: "Inquiry", Body: "Dear Professor"},
	})
	ctx := context.Background()

	p := outreach.NewProfessor("Ada")
	if err := r.AddProfessor(p); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	result, err := h.HandleEmailDraft(ctx, makeRequest(map[string]any{
		"professor_id": p.ID,
		"template":     "cold_outreach",
	}))
	if err != nil || result.IsError {
		t.Fatalf("email_draft failed: err=%v result=%v", err, result)
	}

	drafts := r.DraftsByProfessor(p.ID)
	if len(drafts) != 1 || drafts[0].Subject != "Inquiry" {
		t.Errorf("drafts = %v, want one persisted draft", drafts)
	}
}

func TestHandleBackupExportImport(t *testing.T) {
	h, r := testSetup(t, &stubOracle{})
	ctx := context.Background()

	if err := r.AddProfessor(outreach.NewProfessor("Ada")); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	exportResult, err := h.HandleBackupExport(ctx, makeRequest(map[string]any{}))
	if err != nil || exportResult.IsError {
		t.Fatalf("backup_export failed: err=%v result=%v", err, exportResult)
	}
	path, _ := resultJSON(t, exportResult)["path"].(string)
	if path == "" {
		t.Fatal("export path missing")
	}
	if !strings.HasSuffix(path, ".json") {
		t.Errorf("path = %q, want .json file", path)
	}

	// wipe, then restore
	if err := r.SetProfessors(nil); err != nil {
		t.Fatalf("wipe failed: %v", err)
	}
	importResult, err := h.HandleBackupImport(ctx, makeRequest(map[string]any{"path": path}))
	if err != nil || importResult.IsError {
		t.Fatalf("backup_import failed: err=%v result=%v", err, importResult)
	}
	if len(r.Professors()) != 1 {
		t.Error("import did not restore professors")
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"professor_add", "nonexistent_tool"})
	if len(unknown) != 1 || unknown[0] != "nonexistent_tool" {
		t.Errorf("unknown = %v", unknown)
	}
}

func TestNewServer_SkipsDisabledTools(t *testing.T) {
	_, r := testSetup(t, &stubOracle{})

	cfg := config.DefaultConfig()
	cfg.DisabledTools = []string{"backup_import"}

	s := NewServer(r, &stubOracle{}, cfg, t.TempDir(), "test")
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
}
