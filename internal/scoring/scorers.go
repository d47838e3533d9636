// Package scoring computes Reference Credibility Scores: four heuristic
// component scores over a reference submission, a weighted overall score,
// percentile ranking against the scored population, and grade/badge labels.
package scoring

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"deepref-rcs-service/internal/domain"
)

// roleKeywords maps a role fragment (matched case-insensitively as a
// substring of the submission's role) to keywords expected in a relevant
// reference. A role may match several entries.
var roleKeywords = map[string][]string{
	"developer": {"code", "programming", "software", "technical", "debug"},
	"manager":   {"team", "leadership", "project", "coordination", "planning"},
	"designer":  {"creative", "design", "visual", "ui", "ux", "user"},
	"engineer":  {"technical", "engineering", "system", "architecture", "solution"},
	"analyst":   {"data", "analysis", "metrics", "reporting", "insights"},
}

var positiveTerms = []string{
	"excellent", "outstanding", "great", "amazing", "highly recommend",
	"exceptional", "skilled", "professional", "talented", "dedicated",
	"reliable", "trustworthy",
}

var negativeTerms = []string{
	"poor", "weak", "lacking", "difficult", "problems", "issues",
	"concerns", "not recommend", "avoid",
}

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	specialChars  = regexp.MustCompile(`[^a-zA-Z0-9\s.,!?-]`)
)

// Authenticity starts at 100 and penalizes deepfake probability, a missing
// submission timestamp, and unanswered questions.
func Authenticity(sub domain.Submission) float64 {
	score := 100.0

	if sub.DeepfakeProbability != nil {
		score -= *sub.DeepfakeProbability * 100
	}
	if sub.SubmittedAt == nil {
		score -= 10
	}
	if expected := len(sub.Questions); expected > 0 {
		answered := len(sub.Responses)
		if answered < expected {
			score -= float64(expected-answered) / float64(expected) * 20
		}
	}
	return clamp(score)
}

// Relevance starts at 80 and adjusts for answer length bands and for
// role-related keywords found in the answers. The 50-100 and 300-500
// average-length bands intentionally receive no adjustment.
func Relevance(sub domain.Submission) float64 {
	if len(sub.Responses) == 0 {
		return 0
	}
	score := 80.0

	totalLen := 0
	for _, answer := range sub.Responses {
		if answer != nil {
			totalLen += utf8.RuneCountInString(*answer)
		}
	}
	avgLen := float64(totalLen) / float64(len(sub.Responses))
	switch {
	case avgLen < 50:
		score -= 30
	case avgLen > 500:
		score -= 10
	case avgLen >= 100 && avgLen <= 300:
		score += 10
	}

	text := joinedResponses(sub)
	matches := 0
	for keyword := range keywordsForRole(sub.Role) {
		if keyword != "" && strings.Contains(text, keyword) {
			matches++
		}
	}
	bonus := float64(matches * 2)
	if bonus > 10 {
		bonus = 10
	}
	score += bonus

	return clamp(score)
}

// keywordsForRole collects the keyword lists of every table entry whose key
// appears in the role, plus the individual words of the role itself.
func keywordsForRole(role string) map[string]struct{} {
	lower := strings.ToLower(role)
	keywords := make(map[string]struct{})
	for fragment, list := range roleKeywords {
		if strings.Contains(lower, fragment) {
			for _, keyword := range list {
				keywords[keyword] = struct{}{}
			}
		}
	}
	for _, word := range strings.Fields(lower) {
		keywords[word] = struct{}{}
	}
	return keywords
}

// Clarity starts at 85 and penalizes each answer that has no sentence
// structure, an excessive share of unusual characters, or is shouted in
// all caps. Penalties accumulate across answers; skipped (nil) answers
// are not judged.
func Clarity(sub domain.Submission) float64 {
	if len(sub.Responses) == 0 {
		return 0
	}
	score := 85.0

	for _, answer := range sub.Responses {
		if answer == nil {
			continue
		}
		text := *answer

		sentences := 0
		for _, fragment := range sentenceSplit.Split(text, -1) {
			if strings.TrimSpace(fragment) != "" {
				sentences++
			}
		}
		if sentences == 0 {
			score -= 10
		}

		length := utf8.RuneCountInString(text)
		specials := len(specialChars.FindAllString(text, -1))
		if length > 0 && float64(specials) > 0.1*float64(length) {
			score -= 5
		}

		if length > 20 && text == strings.ToUpper(text) {
			score -= 5
		}
	}
	return clamp(score)
}

// Sentiment starts at the neutral 75 and shifts by +3 per positive term
// occurrence and -5 per negative term occurrence. A submission with no
// answers keeps the neutral default rather than dropping to zero.
func Sentiment(sub domain.Submission) float64 {
	if len(sub.Responses) == 0 {
		return 75
	}
	score := 75.0

	text := joinedResponses(sub)
	for _, term := range positiveTerms {
		score += 3 * float64(strings.Count(text, term))
	}
	for _, term := range negativeTerms {
		score -= 5 * float64(strings.Count(text, term))
	}
	return clamp(score)
}

// joinedResponses concatenates all non-nil answers, lower-cased, space
// separated so terms never match across answer boundaries.
func joinedResponses(sub domain.Submission) string {
	parts := make([]string, 0, len(sub.Responses))
	for _, answer := range sub.Responses {
		if answer != nil {
			parts = append(parts, *answer)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
