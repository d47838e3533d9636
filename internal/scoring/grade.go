package scoring

import "deepref-rcs-service/internal/domain"

// Grade and badge thresholds are descending; the first band whose floor
// the overall score reaches wins. The two tables are intentionally
// different labelings of the same scale.
var gradeBands = []struct {
	Floor float64
	Grade domain.Grade
}{
	{95, "A+"},
	{90, "A"},
	{85, "A-"},
	{80, "B+"},
	{75, "B"},
	{70, "B-"},
	{65, "C+"},
	{60, "C"},
	{55, "C-"},
	{50, "D"},
}

var badgeBands = []struct {
	Floor float64
	Badge domain.Badge
}{
	{95, "Outstanding"},
	{90, "Excellent"},
	{80, "Very Good"},
	{70, "Good"},
	{60, "Average"},
	{50, "Fair"},
}

// GradeFor maps an overall score to its letter grade.
func GradeFor(overall float64) domain.Grade {
	for _, band := range gradeBands {
		if overall >= band.Floor {
			return band.Grade
		}
	}
	return "F"
}

// BadgeFor maps an overall score to its badge label.
func BadgeFor(overall float64) domain.Badge {
	for _, band := range badgeBands {
		if overall >= band.Floor {
			return band.Badge
		}
	}
	return "Needs Improvement"
}
