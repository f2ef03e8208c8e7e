package domain

import "testing"

func TestPatientSummary(t *testing.T) {
	p := Patient{ID: 42, FirstName: "John", MiddleName: "Q", LastName: "Smith", DateOfBirth: "1990-01-04"}
	if got := p.Summary(); got != "John Q Smith (DOB: 1990-01-04, ID: 42)" {
		t.Fatalf("Summary() = %q", got)
	}

	noMiddle := Patient{ID: 7, FirstName: "Ann", LastName: "Lee"}
	if got := noMiddle.Summary(); got != "Ann  Lee (DOB: N/A, ID: 7)" {
		t.Fatalf("Summary() = %q", got)
	}
}

func TestCacheKeyIsCaseInsensitive(t *testing.T) {
	a := PatientQuery{LastName: "Smith", FirstName: "John", MiddleInitial: "Q", DOB: "1990-01-04"}
	b := PatientQuery{LastName: "SMITH", FirstName: "john", MiddleInitial: "q", DOB: "1990-01-04"}
	if a.CacheKey() != b.CacheKey() {
		t.Fatalf("keys differ: %q vs %q", a.CacheKey(), b.CacheKey())
	}

	c := PatientQuery{LastName: "Smith", FirstName: "John", MiddleInitial: "Q", DOB: "1991-01-04"}
	if a.CacheKey() == c.CacheKey() {
		t.Fatal("different DOBs must produce different keys")
	}
}

func TestRateLimitErrorMessages(t *testing.T) {
	burst := &RateLimitError{RetryAfter: 5}
	if got := burst.Error(); got != "drchrono API rate limit exceeded (HTTP 429); all retries exhausted" {
		t.Fatalf("burst message = %q", got)
	}
	app := &RateLimitError{RetryAfter: 1800, AppLimit: true}
	if got := app.Error(); got != "drchrono application rate limit reached (500 requests/hour); wait until the top of the hour and try again" {
		t.Fatalf("app limit message = %q", got)
	}
}
