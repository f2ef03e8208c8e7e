package domain

import "testing"

func TestNewBatchReportClassification(t *testing.T) {
	report := NewBatchReport("run-1", false, []FileResult{
		{Filename: "a.pdf", Status: StatusSucceeded},
		{Filename: "b.pdf", Status: StatusSucceeded},
		{Filename: "c.pdf", Status: StatusParseFailed},
		{Filename: "d.pdf", Status: StatusDuplicate},
		{Filename: "e.pdf", Status: StatusPatientNotFound},
		{Filename: "f.pdf", Status: StatusPatientMultipleMatches},
		{Filename: "g.pdf", Status: StatusUploadFailed},
		{Filename: "h.pdf", Status: StatusRateLimited},
	})

	if report.Succeeded != 2 {
		t.Fatalf("Succeeded = %d, want 2", report.Succeeded)
	}
	if len(report.Skipped) != 1 {
		t.Fatalf("Skipped = %d, want 1", len(report.Skipped))
	}
	if len(report.Duplicates) != 1 {
		t.Fatalf("Duplicates = %d, want 1", len(report.Duplicates))
	}
	if len(report.RateLimited) != 1 {
		t.Fatalf("RateLimited = %d, want 1", len(report.RateLimited))
	}
	// Not-found, multiple-matches and upload rejections all count as failed.
	if len(report.Failed) != 3 {
		t.Fatalf("Failed = %d, want 3", len(report.Failed))
	}
	if report.Total != 8 {
		t.Fatalf("Total = %d, want 8", report.Total)
	}
	if report.AppLimit {
		t.Fatal("AppLimit must stay false without an app-limited file")
	}
}

func TestNewBatchReportPropagatesAppLimit(t *testing.T) {
	report := NewBatchReport("run-1", false, []FileResult{
		{Filename: "a.pdf", Status: StatusRateLimited, AppLimit: true},
	})
	if !report.AppLimit {
		t.Fatal("expected AppLimit on the report")
	}
}
