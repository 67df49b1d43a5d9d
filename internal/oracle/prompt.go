package oracle

import (
	"fmt"
	"strings"

	"github.com/hpungsan/profreach/internal/outreach"
)

// Prompt construction. Each prompt asks for bare JSON, but responses still
// arrive fenced or wrapped in prose often enough that extraction stays
// lenient (see sanitize.ExtractObject).

func lookupPrompt(query string) string {
	return fmt.Sprintf(`You are a research assistant helping find information about a professor for graduate school applications.

Search for the professor: %q

Return ONLY a valid JSON object with the following fields (use empty string or empty array if unknown):
{
  "name": "Full name with title",
  "email": "Email address",
  "university": "University name",
  "department": "Department name",
  "country": "Country",
  "researchAreas": ["area1", "area2"],
  "recentPapers": ["paper title 1", "paper title 2"],
  "websiteUrl": "Faculty page URL",
  "scholarUrl": "Google Scholar profile URL",
  "hiringStatus": "unknown",
  "notes": "Brief summary of their research focus"
}

Return ONLY the JSON object, no markdown formatting, no code blocks, no additional text.`, query)
}

func emailPrompt(req EmailRequest) string {
	return fmt.Sprintf(`You are helping a graduate school applicant draft an email to a professor.

## Applicant Profile
- Name: %s
- Email: %s
- University: %s
- Degree: %s
- Field: %s
- Research Interests: %s
- Skills: %s
- Summary: %s

## Professor Info
- Name: %s
- University: %s
- Department: %s
- Research Areas: %s
- Recent Papers: %s

## Relevant Context/Memory
%s

## Email Template Type: %s

Write a professional, personalized email for this template type. The email should:
1. Be specific to the professor's research (reference their papers/areas)
2. Highlight relevant overlap with the applicant's interests
3. Be concise but compelling (under 300 words for the body)
4. Sound natural, not generic

Return ONLY a JSON object:
{
  "subject": "Email subject line",
  "body": "Full email body text"
}

Return ONLY the JSON object, no markdown formatting.`,
		orDefault(req.Profile.Name), orDefault(req.Profile.Email),
		orDefault(req.Profile.University), orDefault(req.Profile.Degree),
		orDefault(req.Profile.Field),
		joinOr(req.Profile.ResearchInterests, ", "), joinOr(req.Profile.Skills, ", "),
		orDefault(req.Profile.Summary),
		req.Professor.Name, req.Professor.University, req.Professor.Department,
		joinOr(req.Professor.ResearchAreas, ", "), joinOr(req.Professor.RecentPapers, "; "),
		memoryBlock(req.Memory), templateLabel(req.Template))
}

func chatSystemContext(professor outreach.Professor, profile outreach.Profile, memory []ContextMemory) string {
	notes := professor.Notes
	if notes == "" {
		notes = "None"
	}
	return fmt.Sprintf(`You are an AI research advisor helping a graduate school applicant prepare to contact and work with professors.

## Current Professor
- Name: %s
- University: %s
- Department: %s
- Research Areas: %s
- Recent Papers: %s
- Notes: %s

## Applicant Profile
- Name: %s
- Field: %s
- Research Interests: %s
- Summary: %s

## Relevant Memory/Context
%s

Help the applicant with questions about this professor, their research, how to approach them, what to discuss, etc. Be specific and actionable.`,
		professor.Name, professor.University, professor.Department,
		unknownOr(joinStrings(professor.ResearchAreas, ", ")),
		unknownOr(joinStrings(professor.RecentPapers, "; ")),
		notes,
		orDefault(profile.Name), orDefault(profile.Field),
		joinOr(profile.ResearchInterests, ", "), orDefault(profile.Summary),
		memoryBlock(memory))
}

func memoryPrompt(userMessage, assistantMessage, professorName string) string {
	return fmt.Sprintf(`Analyze this conversation exchange between a grad school applicant and an AI advisor about Professor %s.

User: %s
Assistant: %s

Extract any important facts, insights, or action items that would be useful to remember for future reference. Focus on:
- Specific research topics or paper discussions
- Key strategies or approaches discussed
- Important deadlines or timing information
- Personal connections or mutual interests discovered

If there's nothing worth remembering, return an empty array.

Return ONLY a JSON array of strings, each being a concise memory item:
["memory item 1", "memory item 2"]

Return ONLY the JSON array, no markdown formatting.`, professorName, userMessage, assistantMessage)
}

const resumePrompt = `Parse this resume/CV and extract structured information. Return ONLY a valid JSON object:
{
  "name": "Full name",
  "email": "Email address",
  "university": "Current or most recent university",
  "degree": "Current or highest degree",
  "field": "Field of study",
  "gpa": "GPA if mentioned",
  "researchInterests": ["interest1", "interest2"],
  "skills": ["skill1", "skill2"],
  "publications": ["publication1", "publication2"],
  "workExperience": "Brief summary of relevant work experience",
  "summary": "2-3 sentence professional summary"
}

Return ONLY the JSON object, no markdown formatting.`

func memoryBlock(memory []ContextMemory) string {
	if len(memory) == 0 {
		return "No additional context"
	}
	lines := make([]string, 0, len(memory))
	for _, m := range memory {
		lines = append(lines, "- "+m.Content)
	}
	return strings.Join(lines, "\n")
}

func joinStrings(items []string, sep string) string {
	return strings.Join(items, sep)
}

func joinOr(items []string, sep string) string {
	if len(items) == 0 {
		return "Not provided"
	}
	return strings.Join(items, sep)
}

func orDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not provided"
	}
	return s
}

// templateLabel renders the template's display label, falling back to the
// raw value for anything unmapped.
func templateLabel(t outreach.EmailTemplate) string {
	if label, ok := outreach.EmailTemplateLabels[t]; ok {
		return label
	}
	return string(t)
}

func unknownOr(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
