package chrono

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/narora21/chrono-patient-uploader/internal/core/domain"
)

type uploadResponse struct {
	ID int64 `json:"id"`
}

// UploadDocument posts the file to the patient's chart as a multipart form.
// A rejection by the API (anything but 201) is an ordinary Failed outcome;
// only rate limiting and transport problems come back as errors.
func (c *Client) UploadDocument(ctx context.Context, req domain.UploadRequest) (domain.UploadOutcome, error) {
	content, err := os.ReadFile(req.FilePath)
	if err != nil {
		return domain.UploadOutcome{}, fmt.Errorf("read %s: %w", req.FilePath, err)
	}

	metatags, err := json.Marshal([]string{req.Metatag})
	if err != nil {
		return domain.UploadOutcome{}, fmt.Errorf("encode metatags: %w", err)
	}

	var outcome domain.UploadOutcome
	err = c.do(ctx, "document upload",
		func(ctx context.Context) (*http.Request, error) {
			body, contentType, err := buildUploadForm(req, string(metatags), content)
			if err != nil {
				return nil, err
			}
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/documents", body)
			if err != nil {
				return nil, err
			}
			httpReq.Header.Set("Content-Type", contentType)
			return httpReq, nil
		},
		func(resp *http.Response) error {
			if resp.StatusCode == http.StatusCreated {
				var created uploadResponse
				if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
					return fmt.Errorf("decode upload response: %w", err)
				}
				outcome = domain.UploadOutcome{
					Status:     domain.UploadSuccess,
					DocumentID: created.ID,
				}
				return nil
			}
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			outcome = domain.UploadOutcome{
				Status: domain.UploadFailed,
				Detail: strconv.Itoa(resp.StatusCode) + ": " + strings.TrimSpace(string(body)),
			}
			return nil
		})
	if err != nil {
		return domain.UploadOutcome{}, err
	}
	return outcome, nil
}

func buildUploadForm(req domain.UploadRequest, metatags string, content []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	fields := map[string]string{
		"patient":     strconv.FormatInt(req.PatientID, 10),
		"doctor":      strconv.FormatInt(req.DoctorID, 10),
		"date":        req.Date,
		"description": req.Description,
		"metatags":    metatags,
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", name, err)
		}
	}

	part, err := form.CreateFormFile("document", req.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", fmt.Errorf("write form file: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, "", fmt.Errorf("finish form: %w", err)
	}
	return &buf, form.FormDataContentType(), nil
}
