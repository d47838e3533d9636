package scoring

import (
	"testing"

	"deepref-rcs-service/internal/domain"
)

func TestGradeThresholds(t *testing.T) {
	cases := []struct {
		overall float64
		want    domain.Grade
	}{
		{100, "A+"}, {95, "A+"},
		{94.9, "A"}, {90, "A"},
		{89.9, "A-"}, {85, "A-"},
		{84.9, "B+"}, {80, "B+"},
		{79.9, "B"}, {75, "B"},
		{74.9, "B-"}, {70, "B-"},
		{69.9, "C+"}, {65, "C+"},
		{64.9, "C"}, {60, "C"},
		{59.9, "C-"}, {55, "C-"},
		{54.9, "D"}, {50, "D"},
		{49.9, "F"}, {0, "F"},
	}
	for _, tc := range cases {
		if got := GradeFor(tc.overall); got != tc.want {
			t.Fatalf("GradeFor(%v): expected %s, got %s", tc.overall, tc.want, got)
		}
	}
}

func TestBadgeThresholds(t *testing.T) {
	cases := []struct {
		overall float64
		want    domain.Badge
	}{
		{100, "Outstanding"}, {95, "Outstanding"},
		{94.9, "Excellent"}, {90, "Excellent"},
		{89.9, "Very Good"}, {80, "Very Good"},
		{79.9, "Good"}, {70, "Good"},
		{69.9, "Average"}, {60, "Average"},
		{59.9, "Fair"}, {50, "Fair"},
		{49.9, "Needs Improvement"}, {0, "Needs Improvement"},
	}
	for _, tc := range cases {
		if got := BadgeFor(tc.overall); got != tc.want {
			t.Fatalf("BadgeFor(%v): expected %s, got %s", tc.overall, tc.want, got)
		}
	}
}

func TestGradeAndBadgeMonotonic(t *testing.T) {
	gradeOrder := []domain.Grade{"F", "D", "C-", "C", "C+", "B-", "B", "B+", "A-", "A", "A+"}
	badgeOrder := []domain.Badge{"Needs Improvement", "Fair", "Average", "Good", "Very Good", "Excellent", "Outstanding"}

	gradeRank := make(map[domain.Grade]int, len(gradeOrder))
	for i, g := range gradeOrder {
		gradeRank[g] = i
	}
	badgeRank := make(map[domain.Badge]int, len(badgeOrder))
	for i, b := range badgeOrder {
		badgeRank[b] = i
	}

	prevGrade, prevBadge := -1, -1
	for overall := 0.0; overall <= 100; overall += 0.1 {
		g, ok := gradeRank[GradeFor(overall)]
		if !ok {
			t.Fatalf("unknown grade %s at %v", GradeFor(overall), overall)
		}
		b, ok := badgeRank[BadgeFor(overall)]
		if !ok {
			t.Fatalf("unknown badge %s at %v", BadgeFor(overall), overall)
		}
		if g < prevGrade {
			t.Fatalf("grade regressed at %v", overall)
		}
		if b < prevBadge {
			t.Fatalf("badge regressed at %v", overall)
		}
		prevGrade, prevBadge = g, b
	}
}
