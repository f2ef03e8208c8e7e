package domain

import "encoding/json"

// StoredDocument is an existing document on the patient's chart, as returned
// by the documents API. Metatags is kept raw because the service has stored
// it as a native JSON array, a JSON string containing an array, or null,
// depending on how the document was created.
type StoredDocument struct {
	ID          int64           `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Metatags    json.RawMessage `json:"metatags"`
}

// Tags decodes the metatag list. Any encoding it cannot make sense of is
// treated as "no tags" rather than an error.
func (d StoredDocument) Tags() []string {
	raw := d.Metatags
	if len(raw) == 0 {
		return nil
	}

	var tags []string
	if err := json.Unmarshal(raw, &tags); err == nil {
		return tags
	}

	// JSON string holding an encoded array, e.g. "[\"laboratory\"]".
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), &tags); err != nil {
		return nil
	}
	return tags
}

// ContainsDuplicate reports whether an existing document matches the upload
// candidate exactly on date and description and carries the same metatag.
func ContainsDuplicate(docs []StoredDocument, date, description, tagFull string) bool {
	for _, doc := range docs {
		if doc.Date != date || doc.Description != description {
			continue
		}
		for _, tag := range doc.Tags() {
			if tag == tagFull {
				return true
			}
		}
	}
	return false
}

// UploadRequest carries everything needed to push one file to the chart.
type UploadRequest struct {
	FilePath    string
	Filename    string
	PatientID   int64
	DoctorID    int64
	Date        string
	Description string
	Metatag     string
}
