package sanitize

import (
	"encoding/json"
	"strings"

	"github.com/hpungsan/profreach/internal/errors"
	"github.com/hpungsan/profreach/internal/outreach"
)

// Model output is not reliably well-formed JSON: answers arrive wrapped in
// prose, code fences, or both. All of that handling lives here, with two
// failure modes: no bracket pair found, or unparseable content between the
// brackets. Everything else is defaulted away.

// stripCodeFences removes an optional ```/```json wrapper.
func stripCodeFences(text string) string {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "```") {
		t = strings.TrimPrefix(t, "```json")
		t = strings.TrimPrefix(t, "```JSON")
		t = strings.TrimPrefix(t, "```")
		t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	}
	return strings.TrimSpace(t)
}

// extractChunk locates the outermost bracket pair of the expected kind.
func extractChunk(text, open, closing string) (string, bool) {
	t := stripCodeFences(text)
	start := strings.Index(t, open)
	end := strings.LastIndex(t, closing)
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return t[start : end+1], true
}

// ExtractObject parses the first JSON object embedded in model output.
func ExtractObject(text string) (map[string]any, error) {
	chunk, ok := extractChunk(text, "{", "}")
	if !ok {
		return nil, errors.NewNoJSONFound("object")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(chunk), &m); err != nil {
		return nil, errors.NewNoJSONFound("object")
	}
	return m, nil
}

// ExtractArray parses the first JSON array embedded in model output.
func ExtractArray(text string) ([]any, error) {
	chunk, ok := extractChunk(text, "[", "]")
	if !ok {
		return nil, errors.NewNoJSONFound("array")
	}
	var arr []any
	if err := json.Unmarshal([]byte(chunk), &arr); err != nil {
		return nil, errors.NewNoJSONFound("array")
	}
	return arr, nil
}

// LookupResult is the partial professor shape returned by an AI lookup.
// Every field is optional-with-default.
type LookupResult struct {
	Name          string                `json:"name"`
	Email         string                `json:"email"`
	University    string                `json:"university"`
	Department    string                `json:"department"`
	Country       string                `json:"country"`
	ResearchAreas []string              `json:"researchAreas"`
	RecentPapers  []string              `json:"recentPapers"`
	WebsiteURL    string                `json:"websiteUrl"`
	ScholarURL    string                `json:"scholarUrl"`
	HiringStatus  outreach.HiringStatus `json:"hiringStatus"`
	Notes         string                `json:"notes"`
}

// ParseLookup extracts and defaults a lookup response.
func ParseLookup(text string) (*LookupResult, error) {
	m, err := ExtractObject(text)
	if err != nil {
		return nil, err
	}

	r := &LookupResult{
		Name:          str(m, "name"),
		Email:         str(m, "email"),
		University:    str(m, "university"),
		Department:    str(m, "department"),
		Country:       str(m, "country"),
		ResearchAreas: strList(m, "researchAreas"),
		RecentPapers:  strList(m, "recentPapers"),
		WebsiteURL:    str(m, "websiteUrl"),
		ScholarURL:    str(m, "scholarUrl"),
		Notes:         str(m, "notes"),
	}
	r.HiringStatus = outreach.HiringStatus(str(m, "hiringStatus"))
	if !r.HiringStatus.Valid() {
		r.HiringStatus = outreach.HiringUnknown
	}
	return r, nil
}

// EmailResult is a drafted email. Both fields default to empty strings on a
// partial failure to extract.
type EmailResult struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ParseEmail extracts and defaults an email-draft response.
func ParseEmail(text string) (*EmailResult, error) {
	m, err := ExtractObject(text)
	if err != nil {
		return nil, err
	}
	return &EmailResult{
		Subject: str(m, "subject"),
		Body:    str(m, "body"),
	}, nil
}

// ParseMemories extracts a list of memory strings, dropping blanks.
// May legitimately be empty.
func ParseMemories(text string) ([]string, error) {
	arr, err := ExtractArray(text)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, elem := range arr {
		if s, ok := elem.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

// ParseResumeProfile extracts a partial profile from a resume-parse
// response. Never fails past bracket location: every field defaults.
func ParseResumeProfile(text string) (outreach.Profile, error) {
	m, err := ExtractObject(text)
	if err != nil {
		return outreach.DefaultProfile(), err
	}
	return Profile(m), nil
}
