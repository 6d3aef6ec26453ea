package ai

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var gradePattern = regexp.MustCompile(`(?i)grade["\s]*:\s*(\d+(?:\.\d+)?)`)

// gradeParser attempts to recover a grading result from raw model output.
// A parser reports false when the content carries nothing it can use.
type gradeParser func(content string, maxPoints float64) (GradingResult, bool)

// gradeParsers are tried in order. The last one always succeeds so a flaky
// model never blocks grading.
var gradeParsers = []gradeParser{
	parseStrictJSON,
	parseScrapedGrade,
	parseDefaultGrade,
}

// parseGradingResponse recovers a grade and feedback from model output by
// running the parser chain. The grade is always clamped to [0, maxPoints].
func parseGradingResponse(content string, maxPoints float64) GradingResult {
	for _, parse := range gradeParsers {
		if result, ok := parse(content, maxPoints); ok {
			return clampResult(result, maxPoints)
		}
	}

	result, _ := parseDefaultGrade(content, maxPoints)
	return clampResult(result, maxPoints)
}

// parseStrictJSON accepts a well-formed JSON object carrying both fields.
func parseStrictJSON(content string, _ float64) (GradingResult, bool) {
	var data struct {
		Grade    *float64 `json:"grade"`
		Feedback *string  `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(content), &data); err != nil || data.Grade == nil || data.Feedback == nil {
		return GradingResult{}, false
	}
	return GradingResult{Grade: *data.Grade, Feedback: *data.Feedback}, true
}

// parseScrapedGrade scrapes a numeric grade out of malformed output.
func parseScrapedGrade(content string, _ float64) (GradingResult, bool) {
	match := gradePattern.FindStringSubmatch(content)
	if match == nil {
		return GradingResult{}, false
	}
	grade, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return GradingResult{}, false
	}
	return GradingResult{Grade: grade, Feedback: scrapeFeedback(content)}, true
}

// parseDefaultGrade assigns 70% of the maximum when no usable grade is found.
func parseDefaultGrade(content string, maxPoints float64) (GradingResult, bool) {
	return GradingResult{
		Grade:    math.Floor(maxPoints * 0.7),
		Feedback: scrapeFeedback(content),
	}, true
}

// scrapeFeedback pulls the text after a "feedback" marker out of malformed
// output, stripping quote and colon noise. The whole raw content is kept when
// no marker is present.
func scrapeFeedback(content string) string {
	lower := strings.ToLower(content)
	idx := strings.Index(lower, "feedback")
	if idx >= 0 {
		rest := content[idx+len("feedback"):]
		rest = strings.Map(func(r rune) rune {
			if r == '"' || r == ':' {
				return -1
			}
			return r
		}, rest)
		rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), "}"))
		if rest != "" {
			return rest
		}
	}
	return content
}

func clampResult(result GradingResult, maxPoints float64) GradingResult {
	if result.Grade < 0 {
		result.Grade = 0
	}
	if result.Grade > maxPoints {
		result.Grade = maxPoints
	}
	if strings.TrimSpace(result.Feedback) == "" {
		result.Feedback = "Graded automatically."
	}
	return result
}
