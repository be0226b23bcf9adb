// Package classify selects a structural sub-style for document families
// that arrive in more than one shape (formally enacted text versus
// slide/briefing material). Scoring is additive over fixed weighted
// indicator sets and fully deterministic: the same input always selects
// the same sub-style.
package classify

import (
	"sort"

	"github.com/danwirya/perundang/pkg/grammar"
)

// scanRegion is how much of the cleaned text the indicators see.
const scanRegion = 15000

// stylePrecedence orders sub-styles from most to least formally
// structured. Ties resolve toward the front: a false negative on the
// enacted style loses article machinery, which is costlier than
// over-applying structure to an unstructured document.
var stylePrecedence = map[grammar.SubStyle]int{
	grammar.StyleEnacted:  0,
	grammar.StyleBriefing: 1,
}

// StyleScore reports the additive score one sub-style earned.
type StyleScore struct {
	Style   grammar.SubStyle `json:"style"`
	Score   int              `json:"score"`
	Matched int              `json:"matched"` // indicators with at least one match
}

// Result is a classification outcome. Confidence is the normalized
// score margin between the winner and the runner-up; it is informational
// only and gates nothing downstream.
type Result struct {
	Style      grammar.SubStyle `json:"style"`
	Scores     []StyleScore     `json:"scores"`
	Confidence float64          `json:"confidence"`
	Forced     bool             `json:"forced,omitempty"`
}

// Forced returns the result for a caller-supplied sub-style override,
// bypassing scoring entirely.
func Forced(style grammar.SubStyle) Result {
	return Result{Style: style, Confidence: 1, Forced: true}
}

// Classify scores the text against each profile and selects the winner.
// With zero or one profile there is nothing to decide and the grammar's
// only style (or the enacted default) is returned with full confidence.
func Classify(text string, profiles []grammar.StyleProfile) Result {
	if len(profiles) == 0 {
		return Result{Style: grammar.StyleEnacted, Confidence: 1}
	}
	if len(profiles) == 1 {
		return Result{Style: profiles[0].Style, Confidence: 1}
	}

	region := text
	if len(region) > scanRegion {
		region = region[:scanRegion]
	}

	scores := make([]StyleScore, 0, len(profiles))
	for _, profile := range profiles {
		s := StyleScore{Style: profile.Style}
		for i := range profile.Indicators {
			ind := &profile.Indicators[i]
			pat := ind.Compiled()
			if pat == nil {
				continue
			}
			count := len(pat.FindAllStringIndex(region, -1))
			if count == 0 {
				continue
			}
			s.Matched++
			limit := ind.MaxCount
			if limit < 1 {
				limit = 1
			}
			if count > limit {
				count = limit
			}
			s.Score += count * ind.Weight
		}
		scores = append(scores, s)
	}

	// Highest score wins; equal scores fall back to formality precedence.
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return stylePrecedence[scores[i].Style] < stylePrecedence[scores[j].Style]
	})

	result := Result{Style: scores[0].Style, Scores: scores}
	total := scores[0].Score + scores[1].Score
	if total > 0 {
		result.Confidence = float64(scores[0].Score-scores[1].Score) / float64(total)
	}
	return result
}
