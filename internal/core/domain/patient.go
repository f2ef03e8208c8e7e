package domain

import (
	"fmt"
	"strings"
)

type LookupStatus string

const (
	LookupFound           LookupStatus = "found"
	LookupNotFound        LookupStatus = "not_found"
	LookupMultipleMatches LookupStatus = "multiple_matches"
)

// PatientQuery identifies a patient by name; MiddleInitial and DOB are
// optional narrowing hints.
type PatientQuery struct {
	LastName      string
	FirstName     string
	MiddleInitial string
	DOB           string
}

// CacheKey normalizes the query for per-run lookup caching.
func (q PatientQuery) CacheKey() string {
	return strings.ToLower(q.LastName) + "|" +
		strings.ToLower(q.FirstName) + "|" +
		strings.ToLower(q.MiddleInitial) + "|" +
		q.DOB
}

type PatientLookupResult struct {
	Status    LookupStatus
	PatientID int64
	DoctorID  int64
	Detail    string
}

// Patient is one candidate returned by the directory search.
type Patient struct {
	ID          int64  `json:"id"`
	DoctorID    int64  `json:"doctor"`
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
}

// Summary renders a candidate the way the report shows it.
func (p Patient) Summary() string {
	name := strings.TrimSpace(fmt.Sprintf("%s %s %s", p.FirstName, p.MiddleName, p.LastName))
	dob := p.DateOfBirth
	if dob == "" {
		dob = "N/A"
	}
	return fmt.Sprintf("%s (DOB: %s, ID: %d)", name, dob, p.ID)
}

// SummarizeCandidates joins candidate summaries for a MultipleMatches detail.
func SummarizeCandidates(candidates []Patient) string {
	parts := make([]string, 0, len(candidates))
	for _, p := range candidates {
		parts = append(parts, p.Summary())
	}
	return strings.Join(parts, "; ")
}
