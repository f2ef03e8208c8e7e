package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DefaultTemplate matches e.g. "Smith, John(010490)_HP_021525_Annual physical.pdf".
const DefaultTemplate = "{name}({dob})_{tag}_{date}_{description}"

// ErrMissingDescription is returned when a template has no {description}
// placeholder; without it every upload would carry an empty description.
var ErrMissingDescription = errors.New("pattern must include {description} placeholder")

// UnknownPlaceholderError names a placeholder outside the recognized set.
type UnknownPlaceholderError struct {
	Name string
}

func (e *UnknownPlaceholderError) Error() string {
	return fmt.Sprintf("unknown placeholder: {%s}", e.Name)
}

// Fragments for each placeholder. {tag} is built per-compile from the known
// tag codes and {description} is handled inline so compile can verify its
// presence.
var placeholderFragments = map[string]string{
	"name":           `(?P<last_name>[^,]+),\s*(?P<first_name>[^,]+?)(?:,\s*(?P<middle_initial>[^,]+?))?`,
	"last_name":      `(?P<last_name>.+?)`,
	"first_name":     `(?P<first_name>.+?)`,
	"middle_initial": `(?P<middle_initial>[A-Z])`,
	"date":           `(?P<date>\d{6})`,
	"dob":            `(?P<dob>\d{6})`,
}

var placeholderRe = regexp.MustCompile(`\{(\w+)\}`)

// Pattern is a compiled filename template. It is immutable and safe to share
// across workers.
type Pattern struct {
	re     *regexp.Regexp
	source string
}

// Compile turns a template string into an anchored matcher. Literal text is
// matched verbatim; a placeholder wrapped in a single parenthesis pair, e.g.
// ({dob}), matches zero or one time with the parentheses as literal
// delimiters.
func Compile(template string, tagCodes []string) (*Pattern, error) {
	fragments := make(map[string]string, len(placeholderFragments)+1)
	for name, frag := range placeholderFragments {
		fragments[name] = frag
	}
	fragments["tag"] = tagAlternation(tagCodes)

	var b strings.Builder
	b.WriteString("^")

	pos := 0
	foundDescription := false

	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(template, -1) {
		literalBefore := template[pos:loc[0]]
		name := template[loc[2]:loc[3]]
		afterEnd := loc[1]

		// ({placeholder}) makes the group optional with literal parens.
		wrapped := strings.HasSuffix(literalBefore, "(") &&
			afterEnd < len(template) && template[afterEnd] == ')'

		frag, ok := fragments[name]
		if name == "description" {
			foundDescription = true
			frag = `(?P<description>.+)`
		} else if !ok {
			return nil, &UnknownPlaceholderError{Name: name}
		}

		if wrapped {
			if literal := literalBefore[:len(literalBefore)-1]; literal != "" {
				b.WriteString(regexp.QuoteMeta(literal))
			}
			b.WriteString(`(?:\(` + frag + `\))?`)
			pos = afterEnd + 1 // skip past the closing ")"
		} else {
			if literalBefore != "" {
				b.WriteString(regexp.QuoteMeta(literalBefore))
			}
			b.WriteString(frag)
			pos = afterEnd
		}
	}

	if pos < len(template) {
		b.WriteString(regexp.QuoteMeta(template[pos:]))
	}
	b.WriteString("$")

	if !foundDescription {
		return nil, ErrMissingDescription
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", template, err)
	}
	return &Pattern{re: re, source: template}, nil
}

// tagAlternation orders codes longest-first so "HP" wins over "H" when both
// could match; equal lengths are ordered lexicographically for determinism.
func tagAlternation(tagCodes []string) string {
	codes := make([]string, len(tagCodes))
	copy(codes, tagCodes)
	sort.Slice(codes, func(i, j int) bool {
		if len(codes[i]) != len(codes[j]) {
			return len(codes[i]) > len(codes[j])
		}
		return codes[i] < codes[j]
	})

	escaped := make([]string, len(codes))
	for i, code := range codes {
		escaped[i] = regexp.QuoteMeta(code)
	}
	return `(?P<tag>` + strings.Join(escaped, "|") + `)`
}

// Source returns the template the pattern was compiled from.
func (p *Pattern) Source() string {
	return p.source
}

// Match applies the pattern to a filename stem. Optional groups that did not
// participate come back as empty strings.
func (p *Pattern) Match(stem string) (map[string]string, bool) {
	match := p.re.FindStringSubmatch(stem)
	if match == nil {
		return nil, false
	}

	groups := make(map[string]string)
	for i, name := range p.re.SubexpNames() {
		if name == "" {
			continue
		}
		groups[name] = match[i]
	}
	return groups, true
}
