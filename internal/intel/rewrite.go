package intel

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var issueDescriptions = map[string]string{
	IssueLateDelivery:    "My order was delivered later than the estimated time",
	IssueMissingDelivery: "I did not receive my order",
	IssueWrongItem:       "I received incorrect items in my order",
	IssueDamagedItem:     "Items in my order were damaged or of poor quality",
	IssueDriverIssue:     "I experienced an issue with the delivery driver",
	IssueOvercharge:      "I was charged incorrectly for my order",
	IssueGeneral:         "I have an issue with my order",
}

var delayPattern = regexp.MustCompile(`(?i)(\d+)\s*(minutes?|hours?|mins?|hrs?)`)

// Rewrite turns a raw complaint into a clear, professional version.
func (a *Analyzer) Rewrite(text string) string {
	if text == "" {
		return ""
	}
	issues := a.DetectIssues(strings.ToLower(text))
	main := issueDescriptions[issues[0]]
	if main == "" {
		main = issueDescriptions[IssueGeneral]
	}

	rewritten := main + ". "
	if m := delayPattern.FindStringSubmatch(text); m != nil {
		rewritten += fmt.Sprintf("The delay was approximately %s %s. ", m[1], m[2])
	}
	rewritten += "I would appreciate your assistance in resolving this matter."
	return rewritten
}

var informalWords = []string{"damn", "hell", "crap", "stupid"}

// Improvements lists what the rewrite changed about the original.
func (a *Analyzer) Improvements(original, rewritten string) []string {
	var out []string
	if len(rewritten) < len(original) {
		out = append(out, "Made more concise")
	}
	if isAllUpper(original) {
		out = append(out, "Removed all-caps (less aggressive)")
	}
	lower := strings.ToLower(original)
	for _, w := range informalWords {
		if strings.Contains(lower, w) {
			out = append(out, "Removed informal language")
			break
		}
	}
	out = append(out, "Added professional tone", "Structured with clear issue statement")
	return out
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}
