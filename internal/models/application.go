package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is the tracking state of an application.
type Status string

const (
	StatusApplied   Status = "Applied"
	StatusScreening Status = "Screening"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{StatusApplied, StatusScreening, StatusInterview, StatusOffer, StatusRejected}

// ParseStatus matches a status name case-insensitively.
func ParseStatus(value string) (Status, error) {
	value = strings.TrimSpace(value)
	for _, status := range Statuses {
		if strings.EqualFold(value, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown application status %q", value)
}

// Application is a submitted application for one listing.
type Application struct {
	ID          string        `json:"id"`
	ListingID   string        `json:"jobId"`
	Job         ScoredListing `json:"job"`
	Status      Status        `json:"status"`
	AppliedAt   time.Time     `json:"appliedDate"`
	CoverLetter string        `json:"coverLetter"`
	AutoApplied bool          `json:"autoApplied"`
}
