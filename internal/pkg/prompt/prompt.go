// Package prompt renders the provider prompts. All functions are pure.
package prompt

import (
	"fmt"
	"strings"
)

// Token ceilings requested from providers for each call.
const (
	GenerationMaxTokens    = 2000
	DocumentationMaxTokens = 1000
)

// BuildGeneration renders the primary test-generation prompt.
func BuildGeneration(code, framework, language string) string {
	name := FrameworkName(language, framework)

	var b strings.Builder
	fmt.Fprintf(&b, "Generate comprehensive test cases for the following %s code using %s. ", language, name)
	b.WriteString("Follow the Arrange-Act-Assert pattern and include tests for edge cases and error handling.\n\n")
	b.WriteString("Code:\n")
	b.WriteString(code)
	b.WriteString("\n\nGenerate tests that:\n")
	b.WriteString("1. Cover all functions and methods\n")
	b.WriteString("2. Include edge cases and error handling\n")
	fmt.Fprintf(&b, "3. Follow best practices for %s\n", name)
	b.WriteString("4. Include clear comments and documentation\n")
	b.WriteString("5. Are properly formatted and indented\n\n")
	b.WriteString("Return only the test code, no explanations.")
	return b.String()
}

// BuildDocumentation renders the secondary prompt asking for the documentation
// object describing the generated tests.
func BuildDocumentation(testCode, framework string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate documentation for the following %s test code.\n\n", framework)
	b.WriteString("Test code:\n")
	b.WriteString(testCode)
	b.WriteString("\n\nRespond with a single JSON object and nothing else, using exactly these fields:\n")
	b.WriteString("{\n")
	b.WriteString(`  "overview": "what the tests verify",` + "\n")
	b.WriteString(`  "testStructure": "how the tests are organized",` + "\n")
	b.WriteString(`  "coverageDetails": ["covered behavior"],` + "\n")
	fmt.Fprintf(&b, `  "frameworkFeatures": ["%s features used"],`+"\n", framework)
	b.WriteString(`  "bestPractices": ["practice applied"],` + "\n")
	b.WriteString(`  "implementationNotes": ["note for maintainers"]` + "\n")
	b.WriteString("}")
	return b.String()
}
