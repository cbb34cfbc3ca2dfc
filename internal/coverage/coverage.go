// Package coverage scores how completely an investor profile has been
// filled in, as an integer percentage of weighted field importance.
package coverage

import (
	"math"
	"strings"

	"github.com/vestor-labs/ingest-cli/internal/model"
)

// ReviewThreshold is the score below which a profile needs human review.
const ReviewThreshold = 70

// fieldWeight pairs a profile field with its importance weight and a
// presence check. Weights are relative; the score normalizes by their sum.
// The label is what reviewers see in the persisted missing-field list.
type fieldWeight struct {
	label   string
	weight  int
	present func(p *model.InvestorProfile) bool
}

func hasText(s string) bool { return strings.TrimSpace(s) != "" }

var fieldWeights = []fieldWeight{
	{"Name", 5, func(p *model.InvestorProfile) bool { return hasText(p.Name) }},
	{"Firm", 5, func(p *model.InvestorProfile) bool { return hasText(p.Firm) }},
	{"Website", 5, func(p *model.InvestorProfile) bool { return hasText(p.Website) }},
	{"Thesis Summary", 20, func(p *model.InvestorProfile) bool { return hasText(p.ThesisSummary) }},
	{"Check Size Min", 10, func(p *model.InvestorProfile) bool { return p.CheckSizeMin != nil }},
	{"Check Size Max", 10, func(p *model.InvestorProfile) bool { return p.CheckSizeMax != nil }},
	{"Stages", 15, func(p *model.InvestorProfile) bool { return len(p.Stages) > 0 }},
	{"Geographies", 10, func(p *model.InvestorProfile) bool { return len(p.Geographies) > 0 }},
	{"Focus Sectors", 15, func(p *model.InvestorProfile) bool { return len(p.FocusSectors) > 0 }},
	{"Excluded Sectors", 5, func(p *model.InvestorProfile) bool { return len(p.ExcludedSectors) > 0 }},
}

// Result is the outcome of scoring one profile.
type Result struct {
	Score         int
	MissingFields []string
}

// Compute scores a profile and lists the labels of fields still missing,
// in the weight table's order.
func Compute(p *model.InvestorProfile) Result {
	total := 0
	achieved := 0
	var missing []string

	for _, fw := range fieldWeights {
		total += fw.weight
		if fw.present(p) {
			achieved += fw.weight
		} else {
			missing = append(missing, fw.label)
		}
	}

	score := int(math.Round(100 * float64(achieved) / float64(total)))
	return Result{Score: score, MissingFields: missing}
}

// NeedsReview reports whether a score is below the review threshold.
func NeedsReview(score int) bool {
	return score < ReviewThreshold
}
