// Package synth derives the structured parts of a generation result from
// provider free text.
package synth

import "strings"

const (
	baseCoverage    = 70
	coveragePerTest = 20
	maxCoverage     = 100
)

// Line prefixes that start a new test block.
var testBlockPrefixes = []string{"test_", "it(", "describe(", "def test_"}

// Metrics are heuristic figures, not instrumentation results.
type Metrics struct {
	TestCount int `json:"testCount"`
	Coverage  int `json:"coverage"`
}

// DeriveMetrics counts test blocks in the generated text and estimates
// coverage as min(100, 70 + 20*count).
func DeriveMetrics(testText string) Metrics {
	n := CountTestBlocks(testText)
	return Metrics{TestCount: n, Coverage: CoverageFor(n)}
}

// CountTestBlocks splits the text at every newline followed by a test block
// prefix and counts the non-empty segments.
func CountTestBlocks(text string) int {
	lines := strings.Split(text, "\n")
	count := 0
	segLen := len(lines[0])
	for _, line := range lines[1:] {
		if startsTestBlock(line) {
			if segLen > 0 {
				count++
			}
			segLen = len(line)
			continue
		}
		// The joining newline makes the segment non-empty.
		segLen += 1 + len(line)
	}
	if segLen > 0 {
		count++
	}
	return count
}

func startsTestBlock(line string) bool {
	for _, p := range testBlockPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// CoverageFor is non-decreasing in count and capped at 100.
func CoverageFor(count int) int {
	if count < 0 {
		count = 0
	}
	c := baseCoverage + coveragePerTest*count
	if c > maxCoverage {
		return maxCoverage
	}
	return c
}
