package domain

import (
	"reflect"
	"testing"
)

func TestTagsDecodesEveryStoredEncoding(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"native array", `["Laboratory", "Radiology"]`, []string{"Laboratory", "Radiology"}},
		{"string-encoded array", `"[\"Laboratory\"]"`, []string{"Laboratory"}},
		{"null", `null`, nil},
		{"empty", ``, nil},
		{"malformed", `{"oops": 1}`, nil},
		{"string without array", `"just text"`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := StoredDocument{Metatags: []byte(tc.raw)}
			if got := doc.Tags(); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Tags() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestContainsDuplicate(t *testing.T) {
	docs := []StoredDocument{
		{ID: 1, Date: "2025-02-15", Description: "blood panel", Metatags: []byte(`["Laboratory"]`)},
		{ID: 2, Date: "2025-02-16", Description: "blood panel", Metatags: []byte(`["Laboratory"]`)},
	}

	if !ContainsDuplicate(docs, "2025-02-15", "blood panel", "Laboratory") {
		t.Fatal("exact match not detected")
	}
	if ContainsDuplicate(docs, "2025-02-15", "blood panel", "Radiology") {
		t.Fatal("tag mismatch must not be a duplicate")
	}
	if ContainsDuplicate(docs, "2025-02-17", "blood panel", "Laboratory") {
		t.Fatal("date mismatch must not be a duplicate")
	}
	if ContainsDuplicate(docs, "2025-02-15", "urinalysis", "Laboratory") {
		t.Fatal("description mismatch must not be a duplicate")
	}
	if ContainsDuplicate(nil, "2025-02-15", "blood panel", "Laboratory") {
		t.Fatal("empty chart can never hold a duplicate")
	}
}
