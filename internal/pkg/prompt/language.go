package prompt

import "strings"

const (
	LangJavaScript = "javascript"
	LangPython     = "python"
	LangJava       = "java"
	LangRust       = "rust"
	LangGo         = "go"
	LangCpp        = "cpp"
)

// Checked in order; the first language with a matching marker wins.
var languageMarkers = []struct {
	lang    string
	markers []string
}{
	{LangPython, []string{"def ", "import "}},
	{LangJavaScript, []string{"function ", "const ", "let "}},
	{LangJava, []string{"public class ", "private "}},
	{LangRust, []string{"fn ", "let "}},
	{LangGo, []string{"func ", "package "}},
	{LangCpp, []string{"class ", "namespace "}},
}

// DetectLanguage guesses a source language from keyword markers and falls
// back to javascript. It is a heuristic and is only used for prompt wording
// and history labels.
func DetectLanguage(code string) string {
	for _, lm := range languageMarkers {
		for _, m := range lm.markers {
			if strings.Contains(code, m) {
				return lm.lang
			}
		}
	}
	return LangJavaScript
}

var frameworkNames = map[string]map[string]string{
	LangJavaScript: {"jest": "Jest", "mocha": "Mocha"},
	LangPython:     {"pytest": "PyTest", "unittest": "unittest"},
	LangJava:       {"junit": "JUnit"},
	LangRust:       {"rusttest": "Rust Test"},
	LangGo:         {"gotest": "Go Test"},
	LangCpp:        {"cpptest": "Catch2"},
}

// FrameworkName returns the display name of a framework id for a language.
// Unknown combinations pass the id through unchanged.
func FrameworkName(language, framework string) string {
	if names, ok := frameworkNames[language]; ok {
		if name, ok := names[strings.ToLower(strings.TrimSpace(framework))]; ok {
			return name
		}
	}
	return framework
}
