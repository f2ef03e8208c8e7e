package pattern

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/narora21/chrono-patient-uploader/internal/core/domain"
)

// Parser applies a compiled pattern plus the tag map to filenames. It
// implements ports.FilenameParser.
type Parser struct {
	pattern *Pattern
	tags    map[string]string
}

func NewParser(pattern *Pattern, tags map[string]string) *Parser {
	return &Parser{pattern: pattern, tags: tags}
}

// Parse extracts and validates the fields encoded in filename. It returns
// ok=false for anything that does not fully match: wrong shape, unknown tag
// code, invalid document date, or blank names. A blank description is not an
// error; it falls back to the tag's full category name.
func (p *Parser) Parse(filename string) (*domain.ParsedFilename, bool) {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	groups, ok := p.pattern.Match(stem)
	if !ok {
		return nil, false
	}

	tagCode := strings.ToUpper(groups["tag"])
	tagFull, ok := p.tags[tagCode]
	if !ok {
		return nil, false
	}

	docDate, ok := ParseDateMMDDYY(groups["date"])
	if !ok {
		return nil, false
	}

	lastName := strings.TrimSpace(groups["last_name"])
	firstName := strings.TrimSpace(groups["first_name"])
	if lastName == "" || firstName == "" {
		return nil, false
	}
	middleInitial := strings.TrimSpace(groups["middle_initial"])

	description := strings.TrimSpace(groups["description"])
	if description == "" {
		description = tagFull
	}

	var dob string
	if raw := groups["dob"]; raw != "" {
		if d, ok := ParseDateMMDDYY(raw); ok {
			dob = d.Format(time.DateOnly)
		}
	}

	return &domain.ParsedFilename{
		LastName:      lastName,
		FirstName:     firstName,
		MiddleInitial: middleInitial,
		DOB:           dob,
		TagCode:       tagCode,
		TagFull:       tagFull,
		Date:          docDate.Format(time.DateOnly),
		Description:   description,
	}, true
}

// ParseDateMMDDYY decodes a 6-digit MMDDYY string. Two-digit years pivot at
// 50: yy <= 50 means 20yy, anything later means 19yy. Invalid calendar dates
// (month 13, Feb 30) are rejected.
func ParseDateMMDDYY(s string) (time.Time, bool) {
	if len(s) != 6 {
		return time.Time{}, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return time.Time{}, false
		}
	}

	mm := int(s[0]-'0')*10 + int(s[1]-'0')
	dd := int(s[2]-'0')*10 + int(s[3]-'0')
	yy := int(s[4]-'0')*10 + int(s[5]-'0')

	year := 1900 + yy
	if yy <= 50 {
		year = 2000 + yy
	}

	t := time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(mm) || t.Day() != dd {
		return time.Time{}, false
	}
	return t, true
}
