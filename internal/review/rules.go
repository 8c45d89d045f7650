package review

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/codecritic/internal/checks"
)

// Rules represents a rules pack loaded from --rules. The file is YAML; JSON
// files parse too.
type Rules struct {
	Focus    []string        `yaml:"focus,omitempty"`
	Required []RequiredCheck `yaml:"required,omitempty"`
}

// RequiredCheck is a policy check that should always be evaluated. An empty
// Languages list applies it to every language.
type RequiredCheck struct {
	ID        string            `yaml:"id"`
	Text      string            `yaml:"text"`
	Languages []checks.Language `yaml:"languages,omitempty"`
}

func (r RequiredCheck) appliesTo(lang checks.Language) bool {
	if len(r.Languages) == 0 {
		return true
	}
	for _, l := range r.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// LoadRules loads a rules file from disk. Returns nil Rules and nil error if path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	for i, req := range rules.Required {
		if strings.TrimSpace(req.Text) == "" {
			return nil, fmt.Errorf("parsing rules file: required[%d] has no text", i)
		}
	}
	return &rules, nil
}

// BuildRulesPromptSection returns additional prompt instructions derived
// from rules for the given language.
func BuildRulesPromptSection(rules *Rules, lang checks.Language) string {
	if rules == nil {
		return ""
	}

	var b strings.Builder

	if len(rules.Focus) > 0 {
		fmt.Fprintf(&b, "\nFocus areas: %s. Prioritize findings in these areas.\n",
			strings.Join(rules.Focus, ", "))
	}

	var required []RequiredCheck
	for _, req := range rules.Required {
		if req.appliesTo(lang) {
			required = append(required, req)
		}
	}
	if len(required) > 0 {
		b.WriteString("\nRequired checks (always evaluate these):\n")
		for _, req := range required {
			if req.ID != "" {
				fmt.Fprintf(&b, "- [%s] %s\n", req.ID, req.Text)
			} else {
				fmt.Fprintf(&b, "- %s\n", req.Text)
			}
		}
	}

	return b.String()
}
