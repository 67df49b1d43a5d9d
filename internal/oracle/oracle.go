// Package oracle is the boundary to the hosted model. The core issues typed
// requests and receives typed results or typed errors; it never inspects how
// a result was produced.
package oracle

import (
	"context"

	"github.com/hpungsan/profreach/internal/outreach"
	"github.com/hpungsan/profreach/internal/sanitize"
)

// ContextMemory is one memory item injected into a prompt.
type ContextMemory struct {
	Content string `json:"content"`
}

// HistoryMessage is one prior turn of a chat conversation.
type HistoryMessage struct {
	Role    outreach.ChatRole `json:"role"`
	Content string            `json:"content"`
}

// EmailRequest asks for a drafted email.
type EmailRequest struct {
	Professor outreach.Professor
	Profile   outreach.Profile
	Template  outreach.EmailTemplate
	Memory    []ContextMemory
}

// ChatRequest asks for an advisor response about one professor.
type ChatRequest struct {
	Message   string
	Professor outreach.Professor
	Profile   outreach.Profile
	Memory    []ContextMemory
	History   []HistoryMessage
}

// Oracle is the AI collaborator interface.
//
// Chat streams: fn receives each text fragment as it arrives, and the
// concatenated message is returned once the stream ends. Callers persist the
// assistant message only after Chat returns. ExtractMemories is a silent
// best-effort side channel: its failures never surface, only an empty list.
type Oracle interface {
	Lookup(ctx context.Context, query string) (*sanitize.LookupResult, error)
	DraftEmail(ctx context.Context, req EmailRequest) (*sanitize.EmailResult, error)
	Chat(ctx context.Context, req ChatRequest, fn func(fragment string)) (string, error)
	ExtractMemories(ctx context.Context, userMessage, assistantMessage, professorName string) []string
	ParseResume(ctx context.Context, data []byte, mimeType string) (outreach.Profile, error)
}
