package source

import "strings"

// GeneralSkill is returned when a description names none of the known skills.
const GeneralSkill = "General"

var knownSkills = []string{
	"JavaScript", "Python", "Java", "React", "Node.js", "TypeScript",
	"AWS", "Docker", "Kubernetes", "SQL", "PostgreSQL", "MongoDB",
	"Git", "CI/CD", "Agile", "Scrum", "REST API", "GraphQL",
	"HTML", "CSS", "Vue", "Angular", "Spring", "Django", "Flask",
}

// KnownSkills returns a copy of the reference vocabulary.
func KnownSkills() []string {
	return append([]string(nil), knownSkills...)
}

// ExtractSkills returns the known skills mentioned in description, in
// vocabulary order. Matching is a case-insensitive substring test, so "Java"
// also matches "JavaScript".
func ExtractSkills(description string) []string {
	text := strings.ToLower(description)
	var found []string
	for _, skill := range knownSkills {
		if strings.Contains(text, strings.ToLower(skill)) {
			found = append(found, skill)
		}
	}
	if len(found) == 0 {
		return []string{GeneralSkill}
	}
	return found
}
