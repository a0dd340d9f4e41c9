package models

import "time"

// Listing is the canonical job posting produced by source adapters.
type Listing struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	URL            string    `json:"url"`
	Remote         bool      `json:"remote"`
	JobType        string    `json:"type,omitempty"`
	SalaryMin      float64   `json:"salaryMin,omitempty"`
	SalaryMax      float64   `json:"salaryMax,omitempty"`
	Description    string    `json:"description,omitempty"`
	RequiredSkills []string  `json:"requiredSkills"`
	PostedAt       time.Time `json:"postedDate,omitzero"`
}

// HasSalary reports whether the board published a minimum salary.
func (l Listing) HasSalary() bool {
	return l.SalaryMin > 0
}

// Factor is one weighted component of a match score.
type Factor struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Details string `json:"details"`
}

// MatchResult is the outcome of scoring one listing against a profile.
type MatchResult struct {
	OverallScore int      `json:"overallScore"`
	Factors      []Factor `json:"factors"`
}

// ScoredListing is a listing with its match result attached for ranking.
type ScoredListing struct {
	Listing
	MatchScore   int      `json:"matchScore"`
	MatchFactors []Factor `json:"matchFactors"`
}

// Match returns the attached match result.
func (s ScoredListing) Match() MatchResult {
	return MatchResult{OverallScore: s.MatchScore, Factors: s.MatchFactors}
}
