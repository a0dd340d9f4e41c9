package models

import "strings"

// Position is one prior role listed on a resume.
type Position struct {
	Company     string `json:"company"`
	Title       string `json:"title"`
	Duration    string `json:"duration"`
	Description string `json:"description,omitempty"`
}

// Education is one education entry listed on a resume.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	Year        string `json:"year,omitempty"`
}

// Profile is the candidate data extracted from a resume.
type Profile struct {
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone,omitempty"`
	Location   string      `json:"location"`
	Summary    string      `json:"summary,omitempty"`
	Skills     []string    `json:"skills"`
	Experience []Position  `json:"experience"`
	Education  []Education `json:"education,omitempty"`
}

// LatestPosition returns the most recent position, if any.
func (p Profile) LatestPosition() (Position, bool) {
	if len(p.Experience) == 0 {
		return Position{}, false
	}
	return p.Experience[0], true
}

// Preferences are the caller's search and matching preferences.
type Preferences struct {
	JobTitles      []string `json:"jobTitles" yaml:"job_titles"`
	SalaryMin      float64  `json:"salaryMin,omitempty" yaml:"salary_min"`
	SalaryMax      float64  `json:"salaryMax,omitempty" yaml:"salary_max"`
	Location       string   `json:"location" yaml:"location"`
	Remote         bool     `json:"remote" yaml:"remote"`
	Languages      []string `json:"languages,omitempty" yaml:"languages"`
	EmploymentType []string `json:"employmentType,omitempty" yaml:"employment_type"`
}

// DefaultPreferences mirrors the defaults offered before the user edits anything.
func DefaultPreferences() Preferences {
	return Preferences{
		Location:       "Stockholm",
		Languages:      []string{"English", "Swedish"},
		EmploymentType: []string{"Full-time"},
		Remote:         true,
	}
}

// Titles returns the desired titles with blanks removed.
func (p Preferences) Titles() []string {
	out := make([]string, 0, len(p.JobTitles))
	for _, title := range p.JobTitles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		out = append(out, title)
	}
	return out
}
