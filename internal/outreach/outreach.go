// Package outreach defines the tracker's domain entities: professors, the
// applicant profile, documents, memory items, chat messages, and email drafts.
package outreach

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// HiringStatus describes whether a professor is taking students.
type HiringStatus string

const (
	HiringUnknown  HiringStatus = "unknown"
	ActivelyHiring HiringStatus = "actively_hiring"
	MaybeHiring    HiringStatus = "maybe_hiring"
	NotHiring      HiringStatus = "not_hiring"
)

// ApplicationStatus tracks where an outreach effort stands.
type ApplicationStatus string

const (
	StatusInterested  ApplicationStatus = "interested"
	StatusResearching ApplicationStatus = "researching"
	StatusDrafting    ApplicationStatus = "drafting"
	StatusSent        ApplicationStatus = "sent"
	StatusReplied     ApplicationStatus = "replied"
	StatusInterview   ApplicationStatus = "interview"
	StatusAccepted    ApplicationStatus = "accepted"
	StatusRejected    ApplicationStatus = "rejected"
	StatusWithdrawn   ApplicationStatus = "withdrawn"
)

// DocumentCategory classifies an uploaded document.
type DocumentCategory string

const (
	CategoryResume        DocumentCategory = "resume"
	CategoryCoverLetter   DocumentCategory = "cover_letter"
	CategorySOP           DocumentCategory = "sop"
	CategoryTranscript    DocumentCategory = "transcript"
	CategoryWritingSample DocumentCategory = "writing_sample"
	CategoryOther         DocumentCategory = "other"
)

// EmailTemplate selects the kind of email to draft.
type EmailTemplate string

const (
	TemplateColdOutreach       EmailTemplate = "cold_outreach"
	TemplateFollowUp           EmailTemplate = "follow_up"
	TemplateThankYou           EmailTemplate = "thank_you"
	TemplateApplicationInquiry EmailTemplate = "application_inquiry"
	TemplateCustom             EmailTemplate = "custom"
)

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// Valid reports whether the value is a known hiring status.
func (s HiringStatus) Valid() bool {
	switch s {
	case HiringUnknown, ActivelyHiring, MaybeHiring, NotHiring:
		return true
	}
	return false
}

// Valid reports whether the value is a known application status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusInterested, StatusResearching, StatusDrafting, StatusSent,
		StatusReplied, StatusInterview, StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// Valid reports whether the value is a known document category.
func (c DocumentCategory) Valid() bool {
	switch c {
	case CategoryResume, CategoryCoverLetter, CategorySOP,
		CategoryTranscript, CategoryWritingSample, CategoryOther:
		return true
	}
	return false
}

// Valid reports whether the value is a known email template.
func (t EmailTemplate) Valid() bool {
	switch t {
	case TemplateColdOutreach, TemplateFollowUp, TemplateThankYou,
		TemplateApplicationInquiry, TemplateCustom:
		return true
	}
	return false
}

// Valid reports whether the value is a known chat role.
func (r ChatRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Professor is the root entity. ChatMessages and EmailDrafts reference it by
// ID; deleting a professor cascades to both (documents and memory do not).
type Professor struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Email             string            `json:"email"`
	University        string            `json:"university"`
	Department        string            `json:"department"`
	Country           string            `json:"country"`
	ResearchAreas     []string          `json:"researchAreas"`
	RecentPapers      []string          `json:"recentPapers"`
	WebsiteURL        string            `json:"websiteUrl"`
	ScholarURL        string            `json:"scholarUrl"`
	HiringStatus      HiringStatus      `json:"hiringStatus"`
	ApplicationStatus ApplicationStatus `json:"applicationStatus"`
	Notes             string            `json:"notes"`
	LastContacted     *string           `json:"lastContacted"`
	CreatedAt         string            `json:"createdAt"`
	UpdatedAt         string            `json:"updatedAt"`
}

// Profile is the singleton applicant profile. It has no ID; the storage key
// identifies it.
type Profile struct {
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	University        string   `json:"university"`
	Degree            string   `json:"degree"`
	Field             string   `json:"field"`
	GPA               string   `json:"gpa"`
	ResearchInterests []string `json:"researchInterests"`
	Skills            []string `json:"skills"`
	Publications      []string `json:"publications"`
	WorkExperience    string   `json:"workExperience"`
	Summary           string   `json:"summary"`
}

// DefaultProfile returns an empty profile with list fields allocated.
func DefaultProfile() Profile {
	return Profile{
		ResearchInterests: []string{},
		Skills:            []string{},
		Publications:      []string{},
	}
}

// Document is a stored file. Content is a data string (base64 for binary
// payloads, plain text otherwise). There is no foreign key to Professor.
type Document struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Category  DocumentCategory `json:"category"`
	Content   string           `json:"content"`
	MimeType  string           `json:"mimeType"`
	Size      int64            `json:"size"`
	CreatedAt string           `json:"createdAt"`
}

// MemoryItem is a contextual fact injected into AI prompts.
// Source is a free-form tag such as "chat:<professorId>", "manual", "resume".
type MemoryItem struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	Source    string   `json:"source"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"createdAt"`
}

// ChatMessage is one turn of an advisor conversation about a professor.
// Insertion order is chronological order.
type ChatMessage struct {
	ID          string   `json:"id"`
	ProfessorID string   `json:"professorId"`
	Role        ChatRole `json:"role"`
	Content     string   `json:"content"`
	CreatedAt   string   `json:"createdAt"`
}

// EmailDraft is an AI-generated (or hand-written) email for a professor.
type EmailDraft struct {
	ID          string        `json:"id"`
	ProfessorID string        `json:"professorId"`
	Template    EmailTemplate `json:"template"`
	Subject     string        `json:"subject"`
	Body        string        `json:"body"`
	CreatedAt   string        `json:"createdAt"`
}

// AppData is the aggregate snapshot used by backup export/import.
type AppData struct {
	Professors []Professor   `json:"professors"`
	Profile    Profile       `json:"profile"`
	Documents  []Document    `json:"documents"`
	Memory     []MemoryItem  `json:"memory"`
	Chats      []ChatMessage `json:"chats"`
	Drafts     []EmailDraft  `json:"drafts"`
}

// NewID generates a ULID for a new entity.
func NewID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Now returns the current time as an ISO-8601 string, the timestamp format
// used on every entity.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// NewProfessor creates a professor with a fresh ID, defaulted enums, and
// current timestamps. Name is the only caller-required field.
func NewProfessor(name string) Professor {
	now := Now()
	return Professor{
		ID:                NewID(),
		Name:              name,
		ResearchAreas:     []string{},
		RecentPapers:      []string{},
		HiringStatus:      HiringUnknown,
		ApplicationStatus: StatusInterested,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// MaxDocumentBytes is the default cap on stored document payloads.
const MaxDocumentBytes = 10 * 1024 * 1024
