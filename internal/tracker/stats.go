package tracker

import (
	"math"

	"github.com/jimezsa/jobpilot/internal/models"
)

type SourceCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats summarizes the application history.
type Stats struct {
	Total       int                   `json:"total"`
	ByStatus    map[models.Status]int `json:"byStatus"`
	AutoApplied int                   `json:"autoApplied"`
	// ResponseRate is the share of applications in Screening, in percent
	// with one decimal.
	ResponseRate float64       `json:"responseRate"`
	AverageMatch float64       `json:"averageMatch"`
	Sources      []SourceCount `json:"sources"`
}

// Summarize computes Stats. Sources keep first-seen order.
func Summarize(apps []models.Application) Stats {
	stats := Stats{
		Total:    len(apps),
		ByStatus: make(map[models.Status]int, len(models.Statuses)),
	}
	for _, status := range models.Statuses {
		stats.ByStatus[status] = 0
	}
	if len(apps) == 0 {
		return stats
	}

	sourceIndex := map[string]int{}
	scoreSum := 0
	for _, app := range apps {
		stats.ByStatus[app.Status]++
		if app.AutoApplied {
			stats.AutoApplied++
		}
		scoreSum += app.Job.MatchScore

		name := app.Job.Source
		if name == "" {
			name = "Unknown"
		}
		if i, ok := sourceIndex[name]; ok {
			stats.Sources[i].Count++
			continue
		}
		sourceIndex[name] = len(stats.Sources)
		stats.Sources = append(stats.Sources, SourceCount{Name: name, Count: 1})
	}

	total := float64(len(apps))
	stats.ResponseRate = roundTenth(float64(stats.ByStatus[models.StatusScreening]) / total * 100)
	stats.AverageMatch = roundTenth(float64(scoreSum) / total)
	return stats
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
