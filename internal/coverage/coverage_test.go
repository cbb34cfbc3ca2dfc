package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vestor-labs/ingest-cli/internal/model"
)

func ptr(v int64) *int64 { return &v }

func fullProfile() *model.InvestorProfile {
	return &model.InvestorProfile{
		Name:    "Jordan Li",
		Firm:    "Meridian Ventures",
		Website: "https://meridian.vc",
		ProfileFields: model.ProfileFields{
			ThesisSummary:   "We back technical founders at seed.",
			CheckSizeMin:    ptr(500_000),
			CheckSizeMax:    ptr(2_000_000),
			Stages:          []string{"Seed"},
			Geographies:     []string{"United States"},
			FocusSectors:    []string{"SaaS"},
			ExcludedSectors: []string{"Crypto/Web3"},
		},
	}
}

func TestCompute_FullProfile(t *testing.T) {
	res := Compute(fullProfile())

	assert.Equal(t, 100, res.Score)
	assert.Empty(t, res.MissingFields)
}

func TestCompute_EmptyProfile(t *testing.T) {
	res := Compute(&model.InvestorProfile{})

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, []string{
		"Name", "Firm", "Website", "Thesis Summary",
		"Check Size Min", "Check Size Max", "Stages",
		"Geographies", "Focus Sectors", "Excluded Sectors",
	}, res.MissingFields)
}

func TestCompute_WhitespaceOnlyIsMissing(t *testing.T) {
	p := fullProfile()
	p.Firm = "   "
	p.ThesisSummary = "\n\t"

	res := Compute(p)

	assert.Equal(t, 75, res.Score)
	assert.Equal(t, []string{"Firm", "Thesis Summary"}, res.MissingFields)
}

func TestCompute_PartialProfile(t *testing.T) {
	p := fullProfile()
	p.ExcludedSectors = nil
	p.Website = ""

	res := Compute(p)

	assert.Equal(t, 90, res.Score)
	assert.Equal(t, []string{"Website", "Excluded Sectors"}, res.MissingFields)
}

func TestCompute_ThresholdBoundary(t *testing.T) {
	// thesisSummary(20) + checkSize(10+10) + stages(15) + focusSectors(15)
	// lands exactly on the review threshold.
	p := &model.InvestorProfile{
		ProfileFields: model.ProfileFields{
			ThesisSummary: "We invest early and often in software.",
			CheckSizeMin:  ptr(100_000),
			CheckSizeMax:  ptr(1_000_000),
			Stages:        []string{"Pre-Seed"},
			FocusSectors:  []string{"AI/ML"},
		},
	}

	res := Compute(p)
	assert.Equal(t, 70, res.Score)
	assert.False(t, NeedsReview(res.Score))
}

func TestNeedsReview(t *testing.T) {
	assert.True(t, NeedsReview(0))
	assert.True(t, NeedsReview(69))
	assert.False(t, NeedsReview(70))
	assert.False(t, NeedsReview(100))
}
