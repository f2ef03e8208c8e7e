package chrono

import (
	"context"
	"net/url"
	"strconv"

	"github.com/narora21/chrono-patient-uploader/internal/core/domain"
)

// ListPatientDocuments walks every page of the patient's document list,
// following the "next" links the API returns.
func (c *Client) ListPatientDocuments(ctx context.Context, patientID int64) ([]domain.StoredDocument, error) {
	params := url.Values{}
	params.Set("patient", strconv.FormatInt(patientID, 10))
	endpoint := c.baseURL + "/api/documents?" + params.Encode()

	var docs []domain.StoredDocument
	for endpoint != "" {
		var payload listPayload[domain.StoredDocument]
		if err := c.getJSON(ctx, "document list", endpoint, &payload); err != nil {
			return nil, err
		}
		docs = append(docs, payload.items()...)
		endpoint = payload.Next
	}
	return docs, nil
}
