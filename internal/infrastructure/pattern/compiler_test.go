package pattern

import (
	"errors"
	"testing"
)

var testTagCodes = []string{"H", "HP", "LAB", "RX"}

func mustCompile(t *testing.T, template string) *Pattern {
	t.Helper()
	p, err := Compile(template, testTagCodes)
	if err != nil {
		t.Fatalf("Compile(%q): %v", template, err)
	}
	return p
}

func TestCompileRejectsMissingDescription(t *testing.T) {
	_, err := Compile("{name}_{tag}_{date}", testTagCodes)
	if !errors.Is(err, ErrMissingDescription) {
		t.Fatalf("expected ErrMissingDescription, got %v", err)
	}
}

func TestCompileRejectsUnknownPlaceholder(t *testing.T) {
	_, err := Compile("{name}_{tag}_{date}_{descriptoin}", testTagCodes)
	var unknownErr *UnknownPlaceholderError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownPlaceholderError, got %v", err)
	}
	if unknownErr.Name != "descriptoin" {
		t.Fatalf("Name = %q, want the misspelled placeholder", unknownErr.Name)
	}
}

func TestMatchDefaultTemplate(t *testing.T) {
	p := mustCompile(t, DefaultTemplate)

	groups, ok := p.Match("Smith, John(010490)_HP_021525_Annual physical")
	if !ok {
		t.Fatal("expected match")
	}
	want := map[string]string{
		"last_name":      "Smith",
		"first_name":     "John",
		"middle_initial": "",
		"dob":            "010490",
		"tag":            "HP",
		"date":           "021525",
		"description":    "Annual physical",
	}
	for name, value := range want {
		if groups[name] != value {
			t.Errorf("%s = %q, want %q", name, groups[name], value)
		}
	}
}

func TestMatchNameWithMiddleInitial(t *testing.T) {
	p := mustCompile(t, DefaultTemplate)

	groups, ok := p.Match("Smith, John, Q(010490)_HP_021525_Annual physical")
	if !ok {
		t.Fatal("expected match")
	}
	if groups["first_name"] != "John" || groups["middle_initial"] != "Q" {
		t.Fatalf("first=%q middle=%q", groups["first_name"], groups["middle_initial"])
	}
}

func TestMatchOptionalGroupAbsent(t *testing.T) {
	p := mustCompile(t, DefaultTemplate)

	groups, ok := p.Match("Smith, John_HP_021525_Annual physical")
	if !ok {
		t.Fatal("expected match without the optional dob")
	}
	if groups["dob"] != "" {
		t.Fatalf("dob = %q, want empty", groups["dob"])
	}
}

func TestLongerTagWinsOverPrefix(t *testing.T) {
	p := mustCompile(t, "{name}_{tag}_{date}_{description}")

	groups, ok := p.Match("Smith, John_HP_021525_note")
	if !ok {
		t.Fatal("expected match")
	}
	// With both H and HP registered, HP must not be read as tag H plus a
	// description starting with "P_".
	if groups["tag"] != "HP" {
		t.Fatalf("tag = %q, want HP", groups["tag"])
	}
}

func TestLiteralTextIsEscaped(t *testing.T) {
	p := mustCompile(t, "{tag}.{date}+{description}")

	if _, ok := p.Match("LABx021525+note"); ok {
		t.Fatal("'.' must match a literal dot only")
	}
	groups, ok := p.Match("LAB.021525+note")
	if !ok {
		t.Fatal("expected match")
	}
	if groups["description"] != "note" {
		t.Fatalf("description = %q", groups["description"])
	}
}

func TestMatchRejectsTrailingGarbage(t *testing.T) {
	p := mustCompile(t, "{tag}_{date}_{description}")

	if _, ok := p.Match("extra LAB_021525_note"); ok {
		t.Fatal("pattern must be anchored at the start")
	}
}

func TestSourceReturnsTemplate(t *testing.T) {
	p := mustCompile(t, DefaultTemplate)
	if p.Source() != DefaultTemplate {
		t.Fatalf("Source() = %q", p.Source())
	}
}
