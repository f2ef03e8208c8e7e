package chrono

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/narora21/chrono-patient-uploader/internal/core/domain"
	"github.com/narora21/chrono-patient-uploader/internal/infrastructure/resilience"
)

type staticTokens struct{}

func (staticTokens) AuthHeader(context.Context) (string, error) {
	return "Bearer test-token", nil
}

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	executor := resilience.NewExecutor(resilience.Config{
		MaxRetries:     3,
		BackoffBase:    1 * time.Millisecond,
		BackoffMax:     2 * time.Millisecond,
		JitterMax:      1 * time.Millisecond,
		BreakerEnabled: false,
	})
	return New(server.URL, staticTokens{}, Options{Executor: executor})
}

func TestFindPatientSingleMatch(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/api/patients" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("last_name"); got != "Smith" {
			t.Errorf("last_name = %q", got)
		}
		fmt.Fprint(w, `{"results": [{"id": 42, "doctor": 7, "first_name": "John", "last_name": "Smith"}]}`)
	}))

	result, err := client.FindPatient(context.Background(), domain.PatientQuery{
		LastName:  "Smith",
		FirstName: "John",
	})
	if err != nil {
		t.Fatalf("FindPatient: %v", err)
	}
	if result.Status != domain.LookupFound {
		t.Fatalf("status = %q, want found", result.Status)
	}
	if result.PatientID != 42 || result.DoctorID != 7 {
		t.Fatalf("ids = (%d, %d), want (42, 7)", result.PatientID, result.DoctorID)
	}
}

func TestFindPatientNotFound(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": []}`)
	}))

	result, err := client.FindPatient(context.Background(), domain.PatientQuery{
		LastName:  "Smith",
		FirstName: "John",
	})
	if err != nil {
		t.Fatalf("FindPatient: %v", err)
	}
	if result.Status != domain.LookupNotFound {
		t.Fatalf("status = %q, want not_found", result.Status)
	}
}

func TestFindPatientNarrowsByDOB(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [
			{"id": 1, "doctor": 7, "first_name": "John", "last_name": "Smith", "date_of_birth": "1980-01-01"},
			{"id": 2, "doctor": 7, "first_name": "John", "last_name": "Smith", "date_of_birth": "1990-06-15"}
		]}`)
	}))

	result, err := client.FindPatient(context.Background(), domain.PatientQuery{
		LastName:  "Smith",
		FirstName: "John",
		DOB:       "1990-06-15",
	})
	if err != nil {
		t.Fatalf("FindPatient: %v", err)
	}
	if result.Status != domain.LookupFound || result.PatientID != 2 {
		t.Fatalf("result = %+v, want patient 2 found", result)
	}
}

func TestFindPatientNarrowsByMiddleInitial(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [
			{"id": 1, "doctor": 7, "first_name": "John", "middle_name": "Albert", "last_name": "Smith"},
			{"id": 2, "doctor": 7, "first_name": "John", "middle_name": "Quentin", "last_name": "Smith"}
		]}`)
	}))

	result, err := client.FindPatient(context.Background(), domain.PatientQuery{
		LastName:      "Smith",
		FirstName:     "John",
		MiddleInitial: "Q",
	})
	if err != nil {
		t.Fatalf("FindPatient: %v", err)
	}
	if result.Status != domain.LookupFound || result.PatientID != 2 {
		t.Fatalf("result = %+v, want patient 2 found", result)
	}
}

func TestFindPatientKeepsCandidatesWhenFilterEmpties(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [
			{"id": 1, "doctor": 7, "first_name": "John", "middle_name": "Albert", "last_name": "Smith"},
			{"id": 2, "doctor": 7, "first_name": "John", "middle_name": "Quentin", "last_name": "Smith"}
		]}`)
	}))

	// No candidate has a middle name starting with Z, so the filter is
	// discarded and the lookup stays ambiguous.
	result, err := client.FindPatient(context.Background(), domain.PatientQuery{
		LastName:      "Smith",
		FirstName:     "John",
		MiddleInitial: "Z",
	})
	if err != nil {
		t.Fatalf("FindPatient: %v", err)
	}
	if result.Status != domain.LookupMultipleMatches {
		t.Fatalf("status = %q, want multiple_matches", result.Status)
	}
	if result.Detail == "" {
		t.Fatal("expected candidate summaries in detail")
	}
}

func TestFindPatientAcceptsDataEnvelope(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [{"id": 9, "doctor": 3, "first_name": "Ann", "last_name": "Lee"}]}`)
	}))

	result, err := client.FindPatient(context.Background(), domain.PatientQuery{
		LastName:  "Lee",
		FirstName: "Ann",
	})
	if err != nil {
		t.Fatalf("FindPatient: %v", err)
	}
	if result.Status != domain.LookupFound || result.PatientID != 9 {
		t.Fatalf("result = %+v, want patient 9 found", result)
	}
}

func TestListPatientDocumentsFollowsPagination(t *testing.T) {
	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/api/documents", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"results": [{"id": 2, "date": "2021-02-02", "description": "b"}], "next": ""}`)
			return
		}
		if got := r.URL.Query().Get("patient"); got != "42" {
			t.Errorf("patient = %q", got)
		}
		fmt.Fprintf(w, `{"results": [{"id": 1, "date": "2021-01-01", "description": "a"}], "next": %q}`,
			server.URL+"/api/documents?page=2")
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	executor := resilience.NewExecutor(resilience.Config{
		MaxRetries: 1, BackoffBase: time.Millisecond, BackoffMax: time.Millisecond,
		JitterMax: time.Millisecond, BreakerEnabled: false,
	})
	client := New(server.URL, staticTokens{}, Options{Executor: executor})

	docs, err := client.ListPatientDocuments(context.Background(), 42)
	if err != nil {
		t.Fatalf("ListPatientDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if docs[0].ID != 1 || docs[1].ID != 2 {
		t.Fatalf("document ids = (%d, %d)", docs[0].ID, docs[1].ID)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUploadDocumentCreated(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.FormValue("patient"); got != "42" {
			t.Errorf("patient = %q", got)
		}
		if got := r.FormValue("metatags"); got != `["History & Physical"]` {
			t.Errorf("metatags = %q", got)
		}
		file, header, err := r.FormFile("document")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		file.Close()
		if header.Filename != "report.pdf" {
			t.Errorf("filename = %q", header.Filename)
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 555}`)
	}))

	outcome, err := client.UploadDocument(context.Background(), domain.UploadRequest{
		FilePath:    writeTempFile(t, "report.pdf", "pdf bytes"),
		Filename:    "report.pdf",
		PatientID:   42,
		DoctorID:    7,
		Date:        "2021-01-01",
		Description: "annual physical",
		Metatag:     "History & Physical",
	})
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}
	if outcome.Status != domain.UploadSuccess || outcome.DocumentID != 555 {
		t.Fatalf("outcome = %+v, want success with id 555", outcome)
	}
}

func TestUploadDocumentRejectionIsOutcomeNotError(t *testing.T) {
	attempts := 0
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "missing doctor")
	}))

	outcome, err := client.UploadDocument(context.Background(), domain.UploadRequest{
		FilePath: writeTempFile(t, "x.pdf", "x"),
		Filename: "x.pdf",
	})
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}
	if outcome.Status != domain.UploadFailed {
		t.Fatalf("status = %q, want failed", outcome.Status)
	}
	if outcome.Detail != "400: missing doctor" {
		t.Fatalf("detail = %q", outcome.Detail)
	}
	if attempts != 1 {
		t.Fatalf("rejection was retried: %d attempts", attempts)
	}
}

func TestUploadDocumentRetriesRateLimit(t *testing.T) {
	attempts := 0
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.Header().Set("Retry-After", "0.01")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 1}`)
	}))

	outcome, err := client.UploadDocument(context.Background(), domain.UploadRequest{
		FilePath: writeTempFile(t, "x.pdf", "x"),
		Filename: "x.pdf",
	})
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}
	if outcome.Status != domain.UploadSuccess {
		t.Fatalf("status = %q, want success", outcome.Status)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestUploadDocumentRateLimitExhaustion(t *testing.T) {
	attempts := 0
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Retry-After", "0.01")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.UploadDocument(context.Background(), domain.UploadRequest{
		FilePath: writeTempFile(t, "x.pdf", "x"),
		Filename: "x.pdf",
	})
	rl, ok := domain.IsRateLimit(err)
	if !ok {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if rl.AppLimit {
		t.Fatal("short Retry-After must not flag the application limit")
	}
	// MaxRetries=3 means four attempts in total.
	if attempts != 4 {
		t.Fatalf("attempts = %d, want 4", attempts)
	}
}

func TestRateLimitLongRetryAfterFlagsAppLimit(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1800")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	// The executor clamps the wait, so exhaustion stays fast even with a
	// half-hour Retry-After.
	_, err := client.ListPatientDocuments(context.Background(), 1)
	rl, ok := domain.IsRateLimit(err)
	if !ok {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if !rl.AppLimit {
		t.Fatal("Retry-After above the threshold must flag the application limit")
	}
}

func TestServerErrorIsNotRetried(t *testing.T) {
	attempts := 0
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.ListPatientDocuments(context.Background(), 1)
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected status error, got %v", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", statusErr.StatusCode)
	}
	if attempts != 1 {
		t.Fatalf("server error was retried: %d attempts", attempts)
	}
}
