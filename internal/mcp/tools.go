package mcp

import "github.com/mark3labs/mcp-go/mcp"

var professorAddToolDef = mcp.NewTool("professor_add",
	mcp.WithDescription("Add a professor to the tracker. Name is required; everything else is optional."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Professor's full name")),
	mcp.WithString("email", mcp.Description("Email address")),
	mcp.WithString("university", mcp.Description("University name")),
	mcp.WithString("department", mcp.Description("Department name")),
	mcp.WithString("country", mcp.Description("Country")),
	mcp.WithArray("research_areas", mcp.Description("Research areas"), mcp.Items(map[string]any{"type": "string"})),
	mcp.WithArray("recent_papers", mcp.Description("Recent paper titles"), mcp.Items(map[string]any{"type": "string"})),
	mcp.WithString("website_url", mcp.Description("Faculty page URL")),
	mcp.WithString("scholar_url", mcp.Description("Google Scholar URL")),
	mcp.WithString("hiring_status", mcp.Description("One of: unknown, actively_hiring, maybe_hiring, not_hiring")),
	mcp.WithString("notes", mcp.Description("Free-form notes")),
)

var professorListToolDef = mcp.NewTool("professor_list",
	mcp.WithDescription("List all tracked professors."),
)

var professorGetToolDef = mcp.NewTool("professor_get",
	mcp.WithDescription("Fetch one professor by id, including chat and draft counts."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Professor id")),
)

var professorUpdateToolDef = mcp.NewTool("professor_update",
	mcp.WithDescription("Update fields on a professor. Only provided fields change; updatedAt is refreshed."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Professor id")),
	mcp.WithString("name", mcp.Description("Professor's full name")),
	mcp.WithString("email", mcp.Description("Email address")),
	mcp.WithString("university", mcp.Description("University name")),
	mcp.WithString("department", mcp.Description("Department name")),
	mcp.WithString("country", mcp.Description("Country")),
	mcp.WithArray("research_areas", mcp.Description("Research areas"), mcp.Items(map[string]any{"type": "string"})),
	mcp.WithArray("recent_papers", mcp.Description("Recent paper titles"), mcp.Items(map[string]any{"type": "string"})),
	mcp.WithString("website_url", mcp.Description("Faculty page URL")),
	mcp.WithString("scholar_url", mcp.Description("Google Scholar URL")),
	mcp.WithString("hiring_status", mcp.Description("One of: unknown, actively_hiring, maybe_hiring, not_hiring")),
	mcp.WithString("application_status", mcp.Description("One of: interested, researching, drafting, sent, replied, interview, accepted, rejected, withdrawn")),
	mcp.WithString("notes", mcp.Description("Free-form notes")),
	mcp.WithString("last_contacted", mcp.Description("ISO-8601 timestamp of last contact")),
)

var professorDeleteToolDef = mcp.NewTool("professor_delete",
	mcp.WithDescription("Delete a professor. Their chat messages and email drafts are removed too; documents and memory are kept."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Professor id")),
)

var professorLookupToolDef = mcp.NewTool("professor_lookup",
	mcp.WithDescription("Look up a professor on the web via the search-grounded model and return a best-effort record. Requires an API key."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Who to look up, e.g. \"Jane Doe MIT CSAIL\"")),
)

var profileGetToolDef = mcp.NewTool("profile_get",
	mcp.WithDescription("Fetch the applicant profile."),
)

var memoryAddToolDef = mcp.NewTool("memory_add",
	mcp.WithDescription("Store a memory item for future AI context."),
	mcp.WithString("content", mcp.Required(), mcp.Description("The fact to remember")),
	mcp.WithString("source", mcp.Description("Where this came from; defaults to \"manual\"")),
	mcp.WithArray("tags", mcp.Description("Free-form tags"), mcp.Items(map[string]any{"type": "string"})),
)

var memoryListToolDef = mcp.NewTool("memory_list",
	mcp.WithDescription("List all stored memory items."),
)

var draftListToolDef = mcp.NewTool("draft_list",
	mcp.WithDescription("List email drafts, optionally filtered by professor."),
	mcp.WithString("professor_id", mcp.Description("Only drafts for this professor")),
)

var emailDraftToolDef = mcp.NewTool("email_draft",
	mcp.WithDescription("Draft an outreach email for a professor and save it. Requires an API key."),
	mcp.WithString("professor_id", mcp.Required(), mcp.Description("Professor id")),
	mcp.WithString("template", mcp.Required(), mcp.Description("One of: cold_outreach, follow_up, thank_you, application_inquiry, custom")),
)

var backupExportToolDef = mcp.NewTool("backup_export",
	mcp.WithDescription("Write a full backup to a JSON file and return the path."),
	mcp.WithString("path", mcp.Description("Destination file; defaults to a dated file in the exports directory")),
)

var backupImportToolDef = mcp.NewTool("backup_import",
	mcp.WithDescription("Replace all data from a backup JSON file. Unknown fields are dropped; malformed records are skipped."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Backup file to read")),
)
