package outreach

// Display labels for enum values, used by the CLI and web surfaces.

var HiringStatusLabels = map[HiringStatus]string{
	HiringUnknown:  "Unknown",
	ActivelyHiring: "Actively Hiring",
	MaybeHiring:    "Maybe Hiring",
	NotHiring:      "Not Hiring",
}

var ApplicationStatusLabels = map[ApplicationStatus]string{
	StatusInterested:  "Interested",
	StatusResearching: "Researching",
	StatusDrafting:    "Drafting",
	StatusSent:        "Sent",
	StatusReplied:     "Replied",
	StatusInterview:   "Interview",
	StatusAccepted:    "Accepted",
	StatusRejected:    "Rejected",
	StatusWithdrawn:   "Withdrawn",
}

var DocumentCategoryLabels = map[DocumentCategory]string{
	CategoryResume:        "Resume",
	CategoryCoverLetter:   "Cover Letter",
	CategorySOP:           "Statement of Purpose",
	CategoryTranscript:    "Transcript",
	CategoryWritingSample: "Writing Sample",
	CategoryOther:         "Other",
}

var EmailTemplateLabels = map[EmailTemplate]string{
	TemplateColdOutreach:       "Cold Outreach",
	TemplateFollowUp:           "Follow Up",
	TemplateThankYou:           "Thank You",
	TemplateApplicationInquiry: "Application Inquiry",
	TemplateCustom:             "Custom",
}
