package outreach

import "strings"

// MergeProfile merges a partially-parsed profile (typically from a resume)
// into the current one. Non-empty parsed scalars overwrite; list fields
// become the order-stable deduplicated union of current then parsed.
func MergeProfile(current, parsed Profile) Profile {
	merged := current

	merged.Name = overwriteIfSet(current.Name, parsed.Name)
	merged.Email = overwriteIfSet(current.Email, parsed.Email)
	merged.University = overwriteIfSet(current.University, parsed.University)
	merged.Degree = overwriteIfSet(current.Degree, parsed.Degree)
	merged.Field = overwriteIfSet(current.Field, parsed.Field)
	merged.GPA = overwriteIfSet(current.GPA, parsed.GPA)
	merged.WorkExperience = overwriteIfSet(current.WorkExperience, parsed.WorkExperience)
	merged.Summary = overwriteIfSet(current.Summary, parsed.Summary)

	merged.ResearchInterests = unionStrings(current.ResearchInterests, parsed.ResearchInterests)
	merged.Skills = unionStrings(current.Skills, parsed.Skills)
	merged.Publications = unionStrings(current.Publications, parsed.Publications)

	return merged
}

func overwriteIfSet(current, parsed string) string {
	if strings.TrimSpace(parsed) != "" {
		return parsed
	}
	return current
}

// unionStrings combines two slices preserving first-seen order, dropping
// blank entries and duplicates.
func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	result := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		result = append(result, s)
	}
	return result
}
