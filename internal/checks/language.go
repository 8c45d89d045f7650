package checks

import (
	"path/filepath"
	"strings"
)

// Language is the closed set of inputs the reviewer understands.
type Language string

const (
	Python Language = "python"
	Java   Language = "java"
	CPP    Language = "cpp"
	Doc    Language = "doc"
)

// Languages lists every supported language in display order.
var Languages = []Language{Python, Java, CPP, Doc}

// ParseLanguage normalizes a language tag. Unknown tags map to Doc and
// report false so callers can tell a deliberate doc request from a fallback.
func ParseLanguage(s string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "python", "py":
		return Python, true
	case "java":
		return Java, true
	case "cpp", "c++", "cxx":
		return CPP, true
	case "doc", "text", "txt", "markdown", "md":
		return Doc, true
	default:
		return Doc, false
	}
}

// LanguageFromPath infers the language from a file extension.
func LanguageFromPath(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyi":
		return Python
	case ".java":
		return Java
	case ".cpp", ".cc", ".cxx", ".hpp", ".hh", ".h":
		return CPP
	default:
		return Doc
	}
}

// DisplayName returns the human name used in prompts and headings.
func (l Language) DisplayName() string {
	switch l {
	case Python:
		return "Python"
	case Java:
		return "Java"
	case CPP:
		return "C++"
	default:
		return "document"
	}
}

// FenceTag returns the markdown code fence info string for the language.
func (l Language) FenceTag() string {
	switch l {
	case Python, Java, CPP:
		return string(l)
	default:
		return "text"
	}
}

// FileName is the fixed name a snippet is written under. javac insists that
// a public class Main lives in Main.java.
func (l Language) FileName() string {
	switch l {
	case Python:
		return "snippet.py"
	case Java:
		return "Main.java"
	case CPP:
		return "snippet.cpp"
	default:
		return "snippet.txt"
	}
}
