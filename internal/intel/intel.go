// Package intel analyzes complaint text: issue categories, severity, root
// cause, sentiment, explanations and a professional rewrite. It is a fixed
// keyword/regex layer that runs alongside the trained classifier.
package intel

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/resolvehq/complaints-backend/internal/models"
)

const (
	IssueLateDelivery    = "late_delivery"
	IssueMissingDelivery = "missing_delivery"
	IssueWrongItem       = "wrong_item"
	IssueDamagedItem     = "damaged_item"
	IssueDriverIssue     = "driver_issue"
	IssueOvercharge      = "overcharge"
	IssueGeneral         = "general_complaint"
)

type patternSet struct {
	name     string
	patterns []*regexp.Regexp
}

func compileSet(name string, exprs ...string) patternSet {
	ps := patternSet{name: name}
	for _, e := range exprs {
		ps.patterns = append(ps.patterns, regexp.MustCompile("(?i)"+e))
	}
	return ps
}

func (ps patternSet) hits(text string) int {
	n := 0
	for _, p := range ps.patterns {
		if p.MatchString(text) {
			n++
		}
	}
	return n
}

func (ps patternSet) matches(text string) bool { return ps.hits(text) > 0 }

// order matters: the first matching set becomes the primary issue
var issuePatterns = []patternSet{
	compileSet(IssueLateDelivery,
		`\blate\b`, `\bdelay(ed)?\b`, `\bslow\b`, `\bwait(ed|ing)?\b`,
		`took (too )?long`, `hours? late`, `minutes? late`),
	compileSet(IssueMissingDelivery,
		`\bmissing\b`, `never (arrived|came|received|got)`,
		`didn'?t (get|receive|arrive)`, `not delivered`, `no delivery`),
	compileSet(IssueWrongItem,
		`\bwrong\b`, `\bincorrect\b`, `different (item|order|food)`,
		`not what i ordered`, `someone else'?s`),
	compileSet(IssueDamagedItem,
		`\bdamaged\b`, `\bspilled\b`, `\bleaked\b`, `\bcold\b`,
		`\bsoggy\b`, `\bstale\b`, `poor quality`, `\bbroken\b`),
	compileSet(IssueDriverIssue,
		`\brude\b`, `\bunprofessional\b`, `driver (was|behavior)`,
		`\baggressive\b`, `delivery person`),
	compileSet(IssueOvercharge,
		`\bovercharge[d]?\b`, `charged (too )?much`, `wrong (price|amount)`,
		`double charge`, `\brefund\b.*\bmoney\b`),
}

var (
	criticalPatterns = compileSet("critical",
		`food poisoning`, `\ballergic\b`, `\bhospital\b`, `\bsick\b`,
		`\billness\b`, `\bemergency\b`, `health (issue|problem|risk)`,
		`\bcontaminated\b`, `\bunsafe\b`)
	highPatterns = compileSet("high",
		`completely (wrong|missing|ruined)`, `entire order`,
		`never received`, `\bfraud\b`, `all (items|food)`,
		`very (angry|upset|frustrated)`, `\bunacceptable\b`)
	mediumPatterns = compileSet("medium",
		`some items`, `partially`, `\blate\b`, `\bcold\b`,
		`(30|45|60) minutes`, `\bdisappointed\b`)
	lowPatterns = compileSet("low",
		`minor`, `small issue`, `slightly`, `just wanted to let you know`,
		`not a big deal`, `feedback`)
)

var rootCausePatterns = []patternSet{
	compileSet("restaurant_error",
		`restaurant`, `kitchen`, `chef`, `forgot to`,
		`didn'?t include`, `packed wrong`, `preparation`),
	compileSet("delivery_error",
		`driver`, `courier`, `delivery person`, `dropped`,
		`threw`, `left (at|in) wrong`, `handed to someone`),
	compileSet("logistics_delay",
		`traffic`, `(too )?far`, `multiple (orders|deliveries)`,
		`batched`, `long route`, `waited at restaurant`),
	compileSet("app_issue",
		`app (crash|error|bug)`, `couldn'?t (track|contact)`,
		`wrong address`, `map`, `gps`),
	compileSet("packaging_failure",
		`packaging`, `container`, `bag (broke|ripped|torn)`,
		`not sealed`, `lid (off|loose)`, `leaked`),
	compileSet("weather_related",
		`rain`, `storm`, `weather`, `snow`, `heat`),
}

var sentimentWords = map[string][]string{
	"very_negative": {"terrible", "awful", "horrible", "disgusting", "worst",
		"unacceptable", "furious", "outraged", "scam", "theft"},
	"negative": {"bad", "poor", "disappointed", "frustrated", "upset",
		"annoyed", "unhappy", "wrong", "missing", "late"},
	"neutral":  {"okay", "fine", "average", "expected", "understand"},
	"positive": {"good", "thank", "appreciate", "helpful", "resolved"},
}

// Action is a suggested follow-up for the handling agent.
type Action struct {
	Action      string `json:"action"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
}

type Analysis struct {
	Severity         models.Severity `json:"severity"`
	Categories       []string        `json:"categories"`
	RootCause        string          `json:"root_cause"`
	Sentiment        string          `json:"sentiment"`
	MultiIssue       bool            `json:"is_multi_issue"`
	Explanation      string          `json:"explanation"`
	SuggestedActions []Action        `json:"suggested_actions"`
}

type Analyzer struct{}

func NewAnalyzer() *Analyzer { return &Analyzer{} }

func (a *Analyzer) Analyze(text string, cs models.Case) Analysis {
	text = strings.ToLower(text)
	issues := a.DetectIssues(text)
	return Analysis{
		Severity:         a.DetectSeverity(text, cs),
		Categories:       issues,
		RootCause:        a.DetectRootCause(text),
		Sentiment:        a.DetectSentiment(text),
		MultiIssue:       len(issues) > 1,
		Explanation:      a.explain(text, cs),
		SuggestedActions: a.suggestActions(text, cs),
	}
}

// DetectIssueType picks the primary issue for cases submitted without one.
func (a *Analyzer) DetectIssueType(text string) string {
	return a.DetectIssues(strings.ToLower(text))[0]
}

// DetectIssues is multi-label; it always returns at least one category.
func (a *Analyzer) DetectIssues(text string) []string {
	var out []string
	for _, ps := range issuePatterns {
		if ps.matches(text) {
			out = append(out, ps.name)
		}
	}
	if len(out) == 0 {
		return []string{IssueGeneral}
	}
	return out
}

// DetectSeverity scores the complaint. Health and safety keywords short-
// circuit to critical; otherwise a keyword and case-context score maps onto
// high (>=80), medium (>=50) or low.
func (a *Analyzer) DetectSeverity(text string, cs models.Case) models.Severity {
	if criticalPatterns.matches(text) {
		return models.SeverityCritical
	}

	score := 50
	score += 20 * highPatterns.hits(text)
	score += 5 * mediumPatterns.hits(text)
	score -= 15 * lowPatterns.hits(text)

	if cs.OrderValue > 50 {
		score += 10
	} else if cs.OrderValue > 30 {
		score += 5
	}
	if cs.OrderStatus == IssueMissingDelivery {
		score += 15
	}
	// first-time complainers get priority
	if cs.RefundHistory30 == 0 {
		score += 5
	}

	switch {
	case score >= 80:
		return models.SeverityHigh
	case score >= 50:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// DetectRootCause returns the cause with the most pattern hits; ties resolve
// to the earlier cause in the table. No hits → "unknown".
func (a *Analyzer) DetectRootCause(text string) string {
	best, bestHits := "unknown", 0
	for _, ps := range rootCausePatterns {
		if h := ps.hits(text); h > bestHits {
			best, bestHits = ps.name, h
		}
	}
	return best
}

func (a *Analyzer) DetectSentiment(text string) string {
	scores := map[string]int{}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		for sentiment, words := range sentimentWords {
			for _, w := range words {
				if word == w {
					scores[sentiment]++
				}
			}
		}
	}
	switch {
	case scores["very_negative"] > 0:
		return "very_negative"
	case scores["negative"] > scores["positive"]:
		return "negative"
	case scores["positive"] > scores["negative"]:
		return "positive"
	default:
		return "neutral"
	}
}

func (a *Analyzer) explain(text string, cs models.Case) string {
	issues := a.DetectIssues(text)
	severity := a.DetectSeverity(text, cs)
	rootCause := a.DetectRootCause(text)

	readable := make([]string, len(issues))
	for i, is := range issues {
		readable[i] = strings.ReplaceAll(is, "_", " ")
	}

	explanation := fmt.Sprintf("This is a %s severity complaint about %s.", severity, strings.Join(readable, ", "))
	if rootCause != "unknown" {
		explanation += fmt.Sprintf(" The root cause appears to be %s.", strings.ReplaceAll(rootCause, "_", " "))
	}
	if cs.RefundHistory30 >= 3 {
		explanation += " Note: Customer has multiple recent refund requests."
	}
	if !cs.HandoffPhoto && strings.Contains(text, "missing") {
		explanation += " No delivery photo is available to verify delivery."
	}
	return explanation
}

func (a *Analyzer) suggestActions(text string, cs models.Case) []Action {
	var actions []Action
	issues := a.DetectIssues(text)
	severity := a.DetectSeverity(text, cs)

	if severity == models.SeverityCritical {
		actions = append(actions, Action{
			Action:      "immediate_escalation",
			Priority:    "urgent",
			Description: "Escalate to supervisor immediately due to health/safety concern",
		})
	}
	if contains(issues, IssueMissingDelivery) && !cs.HandoffPhoto {
		actions = append(actions, Action{
			Action:      "request_photo_proof",
			Priority:    "high",
			Description: "Request delivery photo from driver or check GPS logs",
		})
	}
	if cs.RefundHistory30 >= 3 {
		actions = append(actions, Action{
			Action:      "review_account",
			Priority:    "medium",
			Description: "Review customer account for potential abuse pattern",
		})
	}
	if contains(issues, IssueDriverIssue) {
		actions = append(actions, Action{
			Action:      "driver_feedback",
			Priority:    "medium",
			Description: "Flag delivery partner for quality review",
		})
	}
	if a.DetectRootCause(text) == "restaurant_error" {
		actions = append(actions, Action{
			Action:      "restaurant_feedback",
			Priority:    "low",
			Description: "Send feedback to restaurant partner",
		})
	}
	return actions
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
