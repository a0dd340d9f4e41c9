// Package scoring rates listings against a candidate profile and preferences.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jimezsa/jobpilot/internal/models"
)

// Factor names in breakdown order.
const (
	FactorSkills     = "Skills Match"
	FactorExperience = "Experience Level"
	FactorLocation   = "Location"
	FactorSalary     = "Salary Range"
	FactorTitle      = "Job Title"
)

// Factor weights. They sum to 100.
const (
	WeightSkills     = 40
	WeightExperience = 20
	WeightLocation   = 15
	WeightSalary     = 10
	WeightTitle      = 15

	pointsPerPosition = 4
	partialLocation   = 5
	partialSalary     = 5
	partialTitle      = 5
)

// Score computes the weighted match of listing for profile. Factors whose
// inputs are missing are left out of both the sum and the breakdown.
func Score(profile models.Profile, listing models.Listing, prefs models.Preferences) models.MatchResult {
	var (
		total   float64
		factors []models.Factor
	)
	add := func(name string, points float64, details string) {
		total += points
		factors = append(factors, models.Factor{
			Name:    name,
			Score:   int(math.Round(points)),
			Details: details,
		})
	}

	if len(listing.RequiredSkills) > 0 && len(profile.Skills) > 0 {
		matched := matchedSkills(profile.Skills, listing.RequiredSkills)
		ratio := float64(matched) / float64(len(listing.RequiredSkills))
		add(FactorSkills, ratio*WeightSkills, fmt.Sprintf("%d/%d skills matched", matched, len(listing.RequiredSkills)))
	}

	if positions := len(profile.Experience); positions > 0 {
		points := math.Min(float64(positions*pointsPerPosition), WeightExperience)
		add(FactorExperience, points, fmt.Sprintf("%d relevant positions", positions))
	}

	if strings.TrimSpace(listing.Location) != "" && strings.TrimSpace(profile.Location) != "" {
		if containsFold(listing.Location, profile.Location) || listing.Remote || prefs.Remote {
			add(FactorLocation, WeightLocation, "Perfect match")
		} else {
			add(FactorLocation, partialLocation, "Relocation needed")
		}
	}

	if listing.SalaryMin > 0 && prefs.SalaryMin > 0 {
		if listing.SalaryMin >= prefs.SalaryMin {
			add(FactorSalary, WeightSalary, "Meets expectations")
		} else {
			add(FactorSalary, partialSalary, "Below expectations")
		}
	}

	if titles := prefs.Titles(); len(titles) > 0 {
		if anyContainsFold(listing.Title, titles) {
			add(FactorTitle, WeightTitle, "Matches preferences")
		} else {
			add(FactorTitle, partialTitle, "Different role")
		}
	}

	return models.MatchResult{
		OverallScore: clamp(int(math.Round(total)), 0, 100),
		Factors:      factors,
	}
}

// matchedSkills counts required skills that overlap a candidate skill in
// either direction, ignoring case.
func matchedSkills(candidate []string, required []string) int {
	have := make([]string, 0, len(candidate))
	for _, skill := range candidate {
		if skill = strings.ToLower(strings.TrimSpace(skill)); skill != "" {
			have = append(have, skill)
		}
	}

	matched := 0
	for _, req := range required {
		req = strings.ToLower(strings.TrimSpace(req))
		for _, skill := range have {
			if strings.Contains(skill, req) || strings.Contains(req, skill) {
				matched++
				break
			}
		}
	}
	return matched
}

// Rank scores every listing and orders them by score, highest first. Equal
// scores keep their input order.
func Rank(profile models.Profile, listings []models.Listing, prefs models.Preferences) []models.ScoredListing {
	ranked := make([]models.ScoredListing, 0, len(listings))
	for _, listing := range listings {
		result := Score(profile, listing, prefs)
		ranked = append(ranked, models.ScoredListing{
			Listing:      listing,
			MatchScore:   result.OverallScore,
			MatchFactors: result.Factors,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})
	return ranked
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

func anyContainsFold(haystack string, needles []string) bool {
	for _, needle := range needles {
		if containsFold(haystack, needle) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
