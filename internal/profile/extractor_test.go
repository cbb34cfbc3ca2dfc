package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCheckSize_KToM(t *testing.T) {
	fields := Extract("We write checks of $500K - $2M into seed rounds.")

	require.NotNil(t, fields.CheckSizeMin)
	require.NotNil(t, fields.CheckSizeMax)
	assert.Equal(t, int64(500_000), *fields.CheckSizeMin)
	assert.Equal(t, int64(2_000_000), *fields.CheckSizeMax)
}

func TestExtractCheckSize_MToM(t *testing.T) {
	fields := Extract("Typical investment: $2M to $10M per company.")

	require.NotNil(t, fields.CheckSizeMin)
	require.NotNil(t, fields.CheckSizeMax)
	assert.Equal(t, int64(2_000_000), *fields.CheckSizeMin)
	assert.Equal(t, int64(10_000_000), *fields.CheckSizeMax)
}

func TestExtractCheckSize_BareRangeWithTrailingUnit(t *testing.T) {
	fields := Extract("We lead rounds with $1-5M initial checks.")

	require.NotNil(t, fields.CheckSizeMin)
	require.NotNil(t, fields.CheckSizeMax)
	assert.Equal(t, int64(1_000_000), *fields.CheckSizeMin)
	assert.Equal(t, int64(5_000_000), *fields.CheckSizeMax)
}

func TestExtractCheckSize_SingleBound(t *testing.T) {
	fields := Extract("Check size: $750K for first checks.")

	require.NotNil(t, fields.CheckSizeMin)
	require.NotNil(t, fields.CheckSizeMax)
	assert.Equal(t, int64(750_000), *fields.CheckSizeMin)
	assert.Equal(t, int64(750_000), *fields.CheckSizeMax)
}

func TestExtractCheckSize_Absent(t *testing.T) {
	fields := Extract("We are generalists with flexible terms.")

	assert.Nil(t, fields.CheckSizeMin)
	assert.Nil(t, fields.CheckSizeMax)
}

func TestExtract_StagesInRowOrder(t *testing.T) {
	fields := Extract("We invest from pre-seed through Series A and sometimes Series B.")

	assert.Equal(t, []string{"Pre-Seed", "Seed", "Series A", "Series B"}, fields.Stages)
}

func TestExtract_Geographies(t *testing.T) {
	fields := Extract("We invest across the United States and Europe, occasionally in India.")

	assert.Equal(t, []string{"United States", "Europe", "India"}, fields.Geographies)
}

func TestExtract_FocusSectors(t *testing.T) {
	fields := Extract("Our focus: fintech, SaaS, and healthtech companies at seed.")

	assert.Contains(t, fields.FocusSectors, "FinTech")
	assert.Contains(t, fields.FocusSectors, "SaaS")
	assert.Contains(t, fields.FocusSectors, "HealthTech")
	assert.NotContains(t, fields.ExcludedSectors, "FinTech")
}

func TestExtract_ExclusionLanguageNearMention(t *testing.T) {
	fields := Extract("We do not invest in Crypto under any circumstances.")

	assert.Contains(t, fields.ExcludedSectors, "Crypto/Web3")
	assert.NotContains(t, fields.FocusSectors, "Crypto/Web3")
}

func TestExtract_SectorCanBeBothFocusAndExcluded(t *testing.T) {
	text := "We love fintech infrastructure and payments rails." +
		strings.Repeat(" Filler sentence about our firm history and values.", 3) +
		" That said, we avoid fintech lending models entirely."
	fields := Extract(text)

	assert.Contains(t, fields.FocusSectors, "FinTech")
	assert.Contains(t, fields.ExcludedSectors, "FinTech")
}

func TestExtract_ExclusionOutsideWindowCountsAsFocus(t *testing.T) {
	// The negation sits more than 50 characters before the mention, so the
	// polarity window never sees it.
	text := "We do not chase hype cycles or momentum trades, and our diligence process is long and thorough before any hardware deal."
	fields := Extract(text)

	assert.Contains(t, fields.FocusSectors, "Hardware")
	assert.NotContains(t, fields.ExcludedSectors, "Hardware")
}

func TestExtractThesisSummary_KeywordParagraph(t *testing.T) {
	text := "About\n\n" +
		"We invest in technical founders building infrastructure for the next decade of software.\n\n" +
		"Contact us at hello@fund.vc"
	fields := Extract(text)

	assert.Equal(t, "We invest in technical founders building infrastructure for the next decade of software.", fields.ThesisSummary)
}

func TestExtractThesisSummary_Fallback(t *testing.T) {
	text := "About the firm\n\n" +
		"The firm was founded in 2012 and has offices in three cities across two continents, with a research arm publishing quarterly letters."
	fields := Extract(text)

	assert.Equal(t, "The firm was founded in 2012 and has offices in three cities across two continents, with a research arm publishing quarterly letters.", fields.ThesisSummary)
}

func TestExtract_EmptyCorpus(t *testing.T) {
	fields := Extract("")

	assert.Empty(t, fields.ThesisSummary)
	assert.Nil(t, fields.CheckSizeMin)
	assert.Nil(t, fields.CheckSizeMax)
	assert.Empty(t, fields.Stages)
	assert.Empty(t, fields.Geographies)
	assert.Empty(t, fields.FocusSectors)
	assert.Empty(t, fields.ExcludedSectors)
}

func TestExtract_Deterministic(t *testing.T) {
	text := "## Thesis\n\nWe back pre-seed fintech and SaaS founders in Europe with $250K - $750K checks. We do not invest in crypto."

	a := Extract(text)
	b := Extract(text)
	assert.Equal(t, a, b)
}
