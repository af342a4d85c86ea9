package synth

import (
	"encoding/json"
	"strings"
)

// Documentation is the fixed object requested from the documentation prompt.
type Documentation struct {
	Overview            string   `json:"overview"`
	TestStructure       string   `json:"testStructure"`
	CoverageDetails     []string `json:"coverageDetails"`
	FrameworkFeatures   []string `json:"frameworkFeatures"`
	BestPractices       []string `json:"bestPractices"`
	ImplementationNotes []string `json:"implementationNotes"`
}

type rawDocumentation struct {
	Overview            *string   `json:"overview"`
	TestStructure       *string   `json:"testStructure"`
	CoverageDetails     *[]string `json:"coverageDetails"`
	FrameworkFeatures   *[]string `json:"frameworkFeatures"`
	BestPractices       *[]string `json:"bestPractices"`
	ImplementationNotes *[]string `json:"implementationNotes"`
}

// ParseDocumentation decodes provider output into a Documentation. Any
// malformed input, missing field or wrongly typed field yields nil; it never
// fails. A single surrounding markdown code fence is stripped first.
func ParseDocumentation(raw string) *Documentation {
	body := stripFence(raw)
	if body == "" {
		return nil
	}

	var r rawDocumentation
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil
	}
	if r.Overview == nil || r.TestStructure == nil || r.CoverageDetails == nil ||
		r.FrameworkFeatures == nil || r.BestPractices == nil || r.ImplementationNotes == nil {
		return nil
	}
	return &Documentation{
		Overview:            *r.Overview,
		TestStructure:       *r.TestStructure,
		CoverageDetails:     *r.CoverageDetails,
		FrameworkFeatures:   *r.FrameworkFeatures,
		BestPractices:       *r.BestPractices,
		ImplementationNotes: *r.ImplementationNotes,
	}
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	nl := strings.IndexByte(s, '\n')
	if nl < 0 {
		return ""
	}
	s = strings.TrimSpace(s[nl+1:])
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
