package review

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/codecritic/internal/checks"
)

func TestLoadRules_Empty(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules != nil {
		t.Error("expected nil rules for empty path")
	}
}

func TestLoadRules_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `focus:
  - security
  - correctness
required:
  - id: py-except
    text: Flag bare except clauses
    languages: [python]
  - text: Point out unclear variable names
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules error: %v", err)
	}
	if len(rules.Focus) != 2 || rules.Focus[0] != "security" {
		t.Errorf("Focus = %v", rules.Focus)
	}
	if len(rules.Required) != 2 {
		t.Fatalf("Required = %d, want 2", len(rules.Required))
	}
	if rules.Required[0].ID != "py-except" {
		t.Errorf("Required[0].ID = %q, want %q", rules.Required[0].ID, "py-except")
	}
	if len(rules.Required[0].Languages) != 1 || rules.Required[0].Languages[0] != checks.Python {
		t.Errorf("Required[0].Languages = %v", rules.Required[0].Languages)
	}
}

func TestLoadRules_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	content := `{"focus": ["style"], "required": [{"id": "docs", "text": "Check spelling"}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules error: %v", err)
	}
	if len(rules.Required) != 1 || rules.Required[0].Text != "Check spelling" {
		t.Errorf("Required = %+v", rules.Required)
	}
}

func TestLoadRules_NotFound(t *testing.T) {
	_, err := LoadRules("/nonexistent/path/rules.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadRules_Invalid(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"bad.yaml":   "focus: [unterminated",
		"empty.yaml": "required:\n  - id: x\n",
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadRules(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestBuildRulesPromptSection_Nil(t *testing.T) {
	if s := BuildRulesPromptSection(nil, checks.Python); s != "" {
		t.Errorf("expected empty string for nil rules, got %q", s)
	}
}

func TestBuildRulesPromptSection_LanguageFilter(t *testing.T) {
	rules := &Rules{
		Required: []RequiredCheck{
			{ID: "all", Text: "Applies everywhere"},
			{ID: "cpp", Text: "Check RAII", Languages: []checks.Language{checks.CPP}},
		},
	}

	doc := BuildRulesPromptSection(rules, checks.Doc)
	if !strings.Contains(doc, "[all] Applies everywhere") || strings.Contains(doc, "RAII") {
		t.Errorf("doc section = %q", doc)
	}
	cpp := BuildRulesPromptSection(rules, checks.CPP)
	if !strings.Contains(cpp, "[cpp] Check RAII") {
		t.Errorf("cpp section = %q", cpp)
	}
}

func TestBuildRulesPromptSection_NoApplicableChecks(t *testing.T) {
	rules := &Rules{Required: []RequiredCheck{{Text: "java only", Languages: []checks.Language{checks.Java}}}}
	if s := BuildRulesPromptSection(rules, checks.Python); s != "" {
		t.Errorf("expected empty section, got %q", s)
	}
}
