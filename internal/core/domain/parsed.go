package domain

// ParsedFilename holds the fields extracted from one filename. Date and DOB
// are ISO-8601 (YYYY-MM-DD); MiddleInitial and DOB may be empty.
type ParsedFilename struct {
	LastName      string `json:"last_name"`
	FirstName     string `json:"first_name"`
	MiddleInitial string `json:"middle_initial,omitempty"`
	DOB           string `json:"dob,omitempty"`
	TagCode       string `json:"tag_code"`
	TagFull       string `json:"tag_full"`
	Date          string `json:"date"`
	Description   string `json:"description"`
}
