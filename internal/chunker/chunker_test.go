package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestor-labs/ingest-cli/internal/model"
)

func TestSplit_EmptyText(t *testing.T) {
	assert.Nil(t, Split(Input{ExtractedText: "   \n  "}, Options{}))
}

func TestSplit_NoHeadings_SingleSection(t *testing.T) {
	text := "We back founders building developer tools at the earliest stages."
	chunks := Split(Input{ExtractedText: text, DocumentType: model.DocumentTypeURL}, Options{})

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[0].SourceLocator.LineStart)
	assert.Len(t, chunks[0].ContentHash, 16)
}

func TestSplit_HeadingsStartSections(t *testing.T) {
	text := "Intro paragraph before any heading.\n\n" +
		"## Investment Thesis\nWe invest in seed-stage companies.\n\n" +
		"## Our Team\nTwo partners and a platform lead."
	chunks := Split(Input{ExtractedText: text, URL: "https://fund.vc"}, Options{})

	require.Len(t, chunks, 3)
	assert.Equal(t, "Intro paragraph before any heading.", chunks[0].Content)
	assert.Equal(t, "## Investment Thesis", chunks[1].Title)
	assert.Equal(t, model.SectionTypeThesis, chunks[1].SectionType)
	assert.Equal(t, "## Our Team", chunks[2].Title)
	assert.Equal(t, model.SectionTypeTeam, chunks[2].SectionType)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, "https://fund.vc", c.SourceLocator.URL)
	}
	assert.Equal(t, 3, chunks[1].SourceLocator.LineStart)
	assert.Equal(t, 6, chunks[2].SourceLocator.LineStart)
}

func TestSplit_ShortLabelBecomesTitle(t *testing.T) {
	text := "Portfolio Highlights\nAcme, Widgets Inc, and twelve other companies."
	chunks := Split(Input{ExtractedText: text}, Options{})

	require.Len(t, chunks, 1)
	assert.Equal(t, "Portfolio Highlights", chunks[0].Title)
	assert.Equal(t, "Acme, Widgets Inc, and twelve other companies.", chunks[0].Content)
	assert.Equal(t, model.SectionTypePortfolio, chunks[0].SectionType)
}

func TestSplit_SentenceFirstLineIsNotTitle(t *testing.T) {
	text := "We write first checks into pre-seed rounds.\nThen we follow on."
	chunks := Split(Input{ExtractedText: text}, Options{})

	require.Len(t, chunks, 1)
	assert.Empty(t, chunks[0].Title)
	assert.Contains(t, chunks[0].Content, "We write first checks")
}

func TestSplit_NumericFirstLineIsNotTitle(t *testing.T) {
	text := "2024\nAnnual letter to our limited partners follows below"
	chunks := Split(Input{ExtractedText: text}, Options{})

	require.Len(t, chunks, 1)
	assert.Empty(t, chunks[0].Title)
}

func TestSplit_ClassificationFirstListWins(t *testing.T) {
	// "thesis" appears before "portfolio" in the keyword table order, so a
	// section mentioning both classifies as thesis.
	text := "Our thesis drives every portfolio decision we make here daily."
	chunks := Split(Input{ExtractedText: text}, Options{})

	require.Len(t, chunks, 1)
	assert.Equal(t, model.SectionTypeThesis, chunks[0].SectionType)
}

func TestSplit_Deterministic(t *testing.T) {
	text := "## Criteria\nCheck size matters. " + strings.Repeat("We invest broadly across software. ", 120)

	a := Split(Input{ExtractedText: text, URL: "https://fund.vc"}, Options{})
	b := Split(Input{ExtractedText: text, URL: "https://fund.vc"}, Options{})

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i], b[i])
	}
}

func TestSplit_OversizedSectionWindows(t *testing.T) {
	// ~3000 chars of sentence-terminated text must split into at least two
	// chunks, each within the max size.
	sentence := "The fund leads rounds in infrastructure software companies. "
	text := strings.Repeat(sentence, 50) // 3000 chars
	require.GreaterOrEqual(t, len(text), 3000)

	chunks := Split(Input{ExtractedText: text}, Options{})

	require.GreaterOrEqual(t, len(chunks), 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), DefaultMaxChunkSize)
	}

	// Adjacent windows overlap unless a natural break point shortened the
	// window; either way indexes stay strictly increasing from zero.
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestSplit_OnlyFirstWindowKeepsTitle(t *testing.T) {
	text := "Fund Thesis Overview\n" + strings.Repeat("We believe in compounding advantages. ", 100)
	chunks := Split(Input{ExtractedText: text}, Options{})

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "Fund Thesis Overview", chunks[0].Title)
	for _, c := range chunks[1:] {
		assert.Empty(t, c.Title)
	}
}

func TestSplit_HashDiffersByContent(t *testing.T) {
	a := Split(Input{ExtractedText: "First body of text for hashing."}, Options{})
	b := Split(Input{ExtractedText: "Second body of text for hashing."}, Options{})

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.NotEqual(t, a[0].ContentHash, b[0].ContentHash)
}
