// Package sanitize converts untrusted JSON-shaped values (backup files and
// model output) into well-formed entities. The policy is deliberately
// lenient: records missing their required fields are rejected, everything
// else is coerced to a type-appropriate default so partially corrupt data
// survives an import.
package sanitize

import (
	"encoding/json"
	"strings"

	"github.com/hpungsan/profreach/internal/errors"
	"github.com/hpungsan/profreach/internal/outreach"
)

// Professor validates value as a Professor. It requires non-empty id and
// name after trimming; every other field is coerced with a default. Returns
// nil when the required fields are absent.
func Professor(value any) *outreach.Professor {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	id := strings.TrimSpace(str(m, "id"))
	name := strings.TrimSpace(str(m, "name"))
	if id == "" || name == "" {
		return nil
	}

	p := outreach.Professor{
		ID:            id,
		Name:          name,
		Email:         str(m, "email"),
		University:    str(m, "university"),
		Department:    str(m, "department"),
		Country:       str(m, "country"),
		ResearchAreas: strList(m, "researchAreas"),
		RecentPapers:  strList(m, "recentPapers"),
		WebsiteURL:    str(m, "websiteUrl"),
		ScholarURL:    str(m, "scholarUrl"),
		Notes:         str(m, "notes"),
		LastContacted: optStr(m, "lastContacted"),
		CreatedAt:     strOr(m, "createdAt", outreach.Now()),
		UpdatedAt:     strOr(m, "updatedAt", outreach.Now()),
	}

	p.HiringStatus = outreach.HiringStatus(str(m, "hiringStatus"))
	if !p.HiringStatus.Valid() {
		p.HiringStatus = outreach.HiringUnknown
	}
	p.ApplicationStatus = outreach.ApplicationStatus(str(m, "applicationStatus"))
	if !p.ApplicationStatus.Valid() {
		p.ApplicationStatus = outreach.StatusInterested
	}

	return &p
}

// Document requires non-empty id and name; category falls back to "other".
func Document(value any) *outreach.Document {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	id := strings.TrimSpace(str(m, "id"))
	name := strings.TrimSpace(str(m, "name"))
	if id == "" || name == "" {
		return nil
	}

	d := outreach.Document{
		ID:        id,
		Name:      name,
		Content:   str(m, "content"),
		MimeType:  str(m, "mimeType"),
		Size:      i64(m, "size"),
		CreatedAt: strOr(m, "createdAt", outreach.Now()),
	}
	d.Category = outreach.DocumentCategory(str(m, "category"))
	if !d.Category.Valid() {
		d.Category = outreach.CategoryOther
	}
	return &d
}

// MemoryItem requires non-empty id and content after trimming.
func MemoryItem(value any) *outreach.MemoryItem {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	id := strings.TrimSpace(str(m, "id"))
	content := strings.TrimSpace(str(m, "content"))
	if id == "" || content == "" {
		return nil
	}

	return &outreach.MemoryItem{
		ID:        id,
		Content:   content,
		Source:    strOr(m, "source", "manual"),
		Tags:      strList(m, "tags"),
		CreatedAt: strOr(m, "createdAt", outreach.Now()),
	}
}

// ChatMessage requires id, professorId, non-empty content, and a known role.
func ChatMessage(value any) *outreach.ChatMessage {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	id := strings.TrimSpace(str(m, "id"))
	professorID := strings.TrimSpace(str(m, "professorId"))
	content := strings.TrimSpace(str(m, "content"))
	role := outreach.ChatRole(str(m, "role"))
	if id == "" || professorID == "" || content == "" || !role.Valid() {
		return nil
	}

	return &outreach.ChatMessage{
		ID:          id,
		ProfessorID: professorID,
		Role:        role,
		Content:     content,
		CreatedAt:   strOr(m, "createdAt", outreach.Now()),
	}
}

// EmailDraft requires id and professorId; template falls back to "custom".
func EmailDraft(value any) *outreach.EmailDraft {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	id := strings.TrimSpace(str(m, "id"))
	professorID := strings.TrimSpace(str(m, "professorId"))
	if id == "" || professorID == "" {
		return nil
	}

	d := outreach.EmailDraft{
		ID:          id,
		ProfessorID: professorID,
		Subject:     str(m, "subject"),
		Body:        str(m, "body"),
		CreatedAt:   strOr(m, "createdAt", outreach.Now()),
	}
	d.Template = outreach.EmailTemplate(str(m, "template"))
	if !d.Template.Valid() {
		d.Template = outreach.TemplateCustom
	}
	return &d
}

// Profile never rejects; it always returns a fully-defaulted profile.
func Profile(value any) outreach.Profile {
	p := outreach.DefaultProfile()
	m, ok := value.(map[string]any)
	if !ok {
		return p
	}

	p.Name = str(m, "name")
	p.Email = str(m, "email")
	p.University = str(m, "university")
	p.Degree = str(m, "degree")
	p.Field = str(m, "field")
	p.GPA = str(m, "gpa")
	p.ResearchInterests = strList(m, "researchInterests")
	p.Skills = strList(m, "skills")
	p.Publications = strList(m, "publications")
	p.WorkExperience = str(m, "workExperience")
	p.Summary = str(m, "summary")
	return p
}

// backupKeys are the recognized top-level keys of a backup document.
var backupKeys = []string{"professors", "profile", "documents", "memory", "chats", "drafts"}

// ImportData validates a decoded backup document. The input must be an
// object carrying at least one recognized collection key, else it fails as an
// unrecognized backup. Each present collection is mapped through its entity
// sanitizer; invalid elements are dropped, never fatal.
func ImportData(value any) (*outreach.AppData, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, errors.NewUnrecognizedBackup()
	}

	recognized := false
	for _, key := range backupKeys {
		if _, present := m[key]; present {
			recognized = true
			break
		}
	}
	if !recognized {
		return nil, errors.NewUnrecognizedBackup()
	}

	data := &outreach.AppData{
		Professors: collect(m["professors"], Professor),
		Profile:    Profile(m["profile"]),
		Documents:  collect(m["documents"], Document),
		Memory:     collect(m["memory"], MemoryItem),
		Chats:      collect(m["chats"], ChatMessage),
		Drafts:     collect(m["drafts"], EmailDraft),
	}
	return data, nil
}

// ImportJSON decodes raw bytes and runs them through ImportData.
func ImportJSON(raw []byte) (*outreach.AppData, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, errors.NewUnrecognizedBackup()
	}
	return ImportData(value)
}

// collect maps a decoded collection value through an entity sanitizer,
// dropping rejected elements. Non-array values yield an empty list.
func collect[T any](value any, sanitizer func(any) *T) []T {
	out := []T{}
	arr, ok := value.([]any)
	if !ok {
		return out
	}
	for _, elem := range arr {
		if v := sanitizer(elem); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Coercion helpers. Missing or mistyped fields become zero values.

func str(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func strOr(m map[string]any, key, fallback string) string {
	if s := str(m, key); s != "" {
		return s
	}
	return fallback
}

func optStr(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok && s != "" {
		return &s
	}
	return nil
}

func strList(m map[string]any, key string) []string {
	out := []string{}
	arr, ok := m[key].([]any)
	if !ok {
		return out
	}
	for _, elem := range arr {
		if s, ok := elem.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func i64(m map[string]any, key string) int64 {
	if f, ok := m[key].(float64); ok {
		return int64(f)
	}
	return 0
}
