package oracle

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/hpungsan/profreach/internal/errors"
	"github.com/hpungsan/profreach/internal/outreach"
	"github.com/hpungsan/profreach/internal/sanitize"
)

// chatPrimer is the canned acknowledgement seeded after the system context,
// so the history alternates user/model as the API requires.
const chatPrimer = "I understand. I'm ready to help you with your professor outreach. What would you like to know?"

// Gemini implements Oracle against the Gemini API. Clients are created per
// request: the credential is resolved at request time (it may be stored or
// changed mid-session), and a missing credential fails before any network
// call.
type Gemini struct {
	model       string
	lookupModel string
	apiKey      func() string
	log         *zap.Logger
}

// NewGemini creates an oracle using the given model names. apiKey is
// consulted on every request.
func NewGemini(model, lookupModel string, apiKey func() string, log *zap.Logger) *Gemini {
	return &Gemini{model: model, lookupModel: lookupModel, apiKey: apiKey, log: log}
}

// client opens a connection, or fails with CREDENTIAL_MISSING.
func (g *Gemini) client(ctx context.Context) (*genai.Client, error) {
	key := strings.TrimSpace(g.apiKey())
	if key == "" {
		return nil, errors.NewCredentialMissing()
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, errors.NewAIUnavailable(err)
	}
	return client, nil
}

// Lookup asks the search-grounded model for a best-effort professor record.
func (g *Gemini) Lookup(ctx context.Context, query string) (*sanitize.LookupResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.NewInvalidRequest("query is required")
	}

	client, err := g.client(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	model := client.GenerativeModel(g.lookupModel)
	model.Tools = []*genai.Tool{{GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{}}}

	resp, err := model.GenerateContent(ctx, genai.Text(lookupPrompt(query)))
	if err != nil {
		return nil, errors.NewAIUnavailable(err)
	}
	return sanitize.ParseLookup(responseText(resp))
}

// DraftEmail asks for a subject and body for the requested template.
func (g *Gemini) DraftEmail(ctx context.Context, req EmailRequest) (*sanitize.EmailResult, error) {
	if !req.Template.Valid() {
		return nil, errors.NewInvalidRequest("unknown email template")
	}

	client, err := g.client(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(emailPrompt(req)))
	if err != nil {
		return nil, errors.NewAIUnavailable(err)
	}
	return sanitize.ParseEmail(responseText(resp))
}

// Chat streams an advisor response. fn receives fragments as they arrive;
// the concatenated message is returned once the stream ends.
func (g *Gemini) Chat(ctx context.Context, req ChatRequest, fn func(fragment string)) (string, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", errors.NewInvalidRequest("message is required")
	}

	client, err := g.client(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	session := model.StartChat()

	history := []*genai.Content{
		{Role: "user", Parts: []genai.Part{genai.Text("System context: " + chatSystemContext(req.Professor, req.Profile, req.Memory))}},
		{Role: "model", Parts: []genai.Part{genai.Text(chatPrimer)}},
	}
	for _, h := range req.History {
		role := "user"
		if h.Role == outreach.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(h.Content)}})
	}
	session.History = history

	var full strings.Builder
	iter := session.SendMessageStream(ctx, genai.Text(message))
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", errors.NewAIUnavailable(err)
		}
		fragment := responseText(resp)
		if fragment == "" {
			continue
		}
		full.WriteString(fragment)
		if fn != nil {
			fn(fragment)
		}
	}

	return full.String(), nil
}

// ExtractMemories pulls remember-worthy facts out of one chat exchange.
// Failures never surface: this is a best-effort side channel, and the
// answer to any error is an empty list.
func (g *Gemini) ExtractMemories(ctx context.Context, userMessage, assistantMessage, professorName string) []string {
	client, err := g.client(ctx)
	if err != nil {
		g.log.Debug("memory extraction skipped", zap.Error(err))
		return nil
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(memoryPrompt(userMessage, assistantMessage, professorName)))
	if err != nil {
		g.log.Debug("memory extraction failed", zap.Error(err))
		return nil
	}

	memories, err := sanitize.ParseMemories(responseText(resp))
	if err != nil {
		g.log.Debug("memory extraction unparseable", zap.Error(err))
		return nil
	}
	return memories
}

// ParseResume sends the file inline and returns the parsed partial profile.
// The caller merges it into the stored profile.
func (g *Gemini) ParseResume(ctx context.Context, data []byte, mimeType string) (outreach.Profile, error) {
	if len(data) == 0 {
		return outreach.DefaultProfile(), errors.NewInvalidRequest("no file provided")
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	client, err := g.client(ctx)
	if err != nil {
		return outreach.DefaultProfile(), err
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: data},
		genai.Text(resumePrompt),
	)
	if err != nil {
		return outreach.DefaultProfile(), errors.NewAIUnavailable(err)
	}
	return sanitize.ParseResumeProfile(responseText(resp))
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
