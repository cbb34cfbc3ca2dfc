// Package profile derives structured investor profile fields from the
// concatenated corpus of all extracted document text. Extraction is a pure
// function over the corpus: no side effects, same input, same output.
//
// The heuristics are intentionally shallow pattern tables, not NLP. Each
// vocabulary is an ordered list of (pattern, label) rows and first match
// wins; downstream review tooling depends on that ordering.
package profile

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/vestor-labs/ingest-cli/internal/model"
)

// checkSizeRow matches one check-size phrasing. Units apply per bound:
// K multiplies by 1e3, M by 1e6. A row with no max group produces an upper
// bound equal to the lower bound.
type checkSizeRow struct {
	re      *regexp.Regexp
	minUnit float64
	maxUnit float64
}

var checkSizeRows = []checkSizeRow{
	// "$500K - $2M"
	{regexp.MustCompile(`\$(\d+(?:\.\d+)?)\s*k\s*(?:-|–|to)\s*\$?(\d+(?:\.\d+)?)\s*m`), 1e3, 1e6},
	// "$250K - $750K"
	{regexp.MustCompile(`\$(\d+(?:\.\d+)?)\s*k\s*(?:-|–|to)\s*\$?(\d+(?:\.\d+)?)\s*k`), 1e3, 1e3},
	// "$2M - $10M"
	{regexp.MustCompile(`\$(\d+(?:\.\d+)?)\s*m\s*(?:-|–|to)\s*\$?(\d+(?:\.\d+)?)\s*m`), 1e6, 1e6},
	// "$1-5M": the trailing unit covers both bounds
	{regexp.MustCompile(`\$(\d+(?:\.\d+)?)\s*(?:-|–|to)\s*(\d+(?:\.\d+)?)\s*m`), 1e6, 1e6},
	// "check size: $500K" with a single bound, unit captured
	{regexp.MustCompile(`check\s*size[:\s]+\$?(\d+(?:\.\d+)?)\s*(k|m)`), 0, 0},
}

type vocabularyRow struct {
	re    *regexp.Regexp
	label string
}

var stageRows = []vocabularyRow{
	{regexp.MustCompile(`pre.?seed`), "Pre-Seed"},
	{regexp.MustCompile(`\bseed\b`), "Seed"},
	{regexp.MustCompile(`series\s*a\b`), "Series A"},
	{regexp.MustCompile(`series\s*b\b`), "Series B"},
	{regexp.MustCompile(`series\s*c\b`), "Series C"},
	{regexp.MustCompile(`growth\s*stage`), "Growth"},
	{regexp.MustCompile(`late\s*stage`), "Late Stage"},
	{regexp.MustCompile(`early\s*stage`), "Early Stage"},
}

var geographyRows = []vocabularyRow{
	{regexp.MustCompile(`\bunited\s*states\b|\bu\.?s\.?\b|\bamerica\b`), "United States"},
	{regexp.MustCompile(`\bnorth\s*america\b`), "North America"},
	{regexp.MustCompile(`\beurope\b|\beu\b`), "Europe"},
	{regexp.MustCompile(`\basia\b|\bapac\b`), "Asia"},
	{regexp.MustCompile(`\buk\b|\bunited\s*kingdom\b|\bbritain\b`), "United Kingdom"},
	{regexp.MustCompile(`\bglobal\b|\bworldwide\b`), "Global"},
	{regexp.MustCompile(`\bcanada\b`), "Canada"},
	{regexp.MustCompile(`\blatin\s*america\b|\blatam\b`), "Latin America"},
	{regexp.MustCompile(`\bisrael\b`), "Israel"},
	{regexp.MustCompile(`\bindia\b`), "India"},
}

var sectorRows = []vocabularyRow{
	{regexp.MustCompile(`\b(?:artificial\s*intelligence|ai|machine\s*learning|ml)\b`), "AI/ML"},
	{regexp.MustCompile(`\bfintech\b|\bfinancial\s*technology\b`), "FinTech"},
	{regexp.MustCompile(`\bhealthtech\b|\bhealth\s*tech\b|\bdigital\s*health\b`), "HealthTech"},
	{regexp.MustCompile(`\bsaas\b|\bsoftware\s*as\s*a\s*service\b`), "SaaS"},
	{regexp.MustCompile(`\be-?commerce\b|\bretail\s*tech\b`), "E-commerce"},
	{regexp.MustCompile(`\bedtech\b|\beducation\s*tech\b`), "EdTech"},
	{regexp.MustCompile(`\bclean\s*tech\b|\bclimate\s*tech\b|\bsustainability\b`), "CleanTech"},
	{regexp.MustCompile(`\bcybersecurity\b|\bsecurity\b`), "Cybersecurity"},
	{regexp.MustCompile(`\bdeep\s*tech\b|\bfrontier\b`), "DeepTech"},
	{regexp.MustCompile(`\bb2b\b|\benterprise\b`), "Enterprise"},
	{regexp.MustCompile(`\bb2c\b|\bconsumer\b`), "Consumer"},
	{regexp.MustCompile(`\bmarketplace\b`), "Marketplace"},
	{regexp.MustCompile(`\bproptech\b|\breal\s*estate\s*tech\b`), "PropTech"},
	{regexp.MustCompile(`\binsurtech\b`), "InsurTech"},
	{regexp.MustCompile(`\bhardware\b`), "Hardware"},
	{regexp.MustCompile(`\bbiotech\b|\blife\s*sciences\b`), "Biotech"},
	{regexp.MustCompile(`\bcrypto\b|\bblockchain\b|\bweb3\b`), "Crypto/Web3"},
}

// exclusionRe flags negative investment language near a sector mention.
var exclusionRe = regexp.MustCompile(`(?:we\s*do\s*not|don.t|doesn.t|avoid|no\s*interest\s*in|not\s*investing\s*in|excluded?)`)

// exclusionWindow is the number of characters inspected on each side of a
// sector match when deciding polarity. Exclusion language further away than
// this is not seen.
const exclusionWindow = 50

var thesisKeywords = []string{
	"invest",
	"thesis",
	"approach",
	"focus",
	"partner",
	"back",
	"support",
	"look for",
	"believe",
	"seek",
}

var paragraphSplitRe = regexp.MustCompile(`\n\n+`)

// Extract derives profile fields from corpus text.
func Extract(corpus string) model.ProfileFields {
	min, max := extractCheckSize(corpus)
	focus, excluded := extractSectors(corpus)

	return model.ProfileFields{
		ThesisSummary:   extractThesisSummary(corpus),
		CheckSizeMin:    min,
		CheckSizeMax:    max,
		Stages:          matchVocabulary(corpus, stageRows),
		Geographies:     matchVocabulary(corpus, geographyRows),
		FocusSectors:    focus,
		ExcludedSectors: excluded,
	}
}

// extractCheckSize evaluates the check-size rows in order and returns the
// first match, normalized to dollars.
func extractCheckSize(text string) (*int64, *int64) {
	lower := strings.ToLower(text)

	for _, row := range checkSizeRows {
		m := row.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}

		minVal, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}

		if row.minUnit == 0 {
			// Single-bound row: unit is the second capture group.
			unit := 1e3
			if m[2] == "m" {
				unit = 1e6
			}
			v := int64(math.Round(minVal * unit))
			return &v, &v
		}

		maxVal, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		lo := int64(math.Round(minVal * row.minUnit))
		hi := int64(math.Round(maxVal * row.maxUnit))
		return &lo, &hi
	}
	return nil, nil
}

// matchVocabulary returns matched labels in row order, deduplicated.
func matchVocabulary(text string, rows []vocabularyRow) []string {
	lower := strings.ToLower(text)
	var out []string
	seen := make(map[string]bool)

	for _, row := range rows {
		if row.re.MatchString(lower) && !seen[row.label] {
			seen[row.label] = true
			out = append(out, row.label)
		}
	}
	return out
}

// extractSectors classifies every sector mention by polarity: a mention is
// excluded when exclusion language appears within the surrounding window,
// otherwise it counts as focus. A sector can land in both lists when it
// appears in multiple locations with different polarity.
func extractSectors(text string) (focus, excluded []string) {
	lower := strings.ToLower(text)
	focusSeen := make(map[string]bool)
	excludedSeen := make(map[string]bool)

	for _, row := range sectorRows {
		for _, loc := range row.re.FindAllStringIndex(lower, -1) {
			start := max(0, loc[0]-exclusionWindow)
			end := min(len(lower), loc[0]+exclusionWindow)
			context := lower[start:end]

			if exclusionRe.MatchString(context) {
				if !excludedSeen[row.label] {
					excludedSeen[row.label] = true
					excluded = append(excluded, row.label)
				}
			} else if !focusSeen[row.label] {
				focusSeen[row.label] = true
				focus = append(focus, row.label)
			}
		}
	}
	return focus, excluded
}

// extractThesisSummary scans blank-line separated paragraphs for the first
// one of 50-1000 characters containing an investment-intent keyword, falling
// back to the first paragraph of 100-500 characters.
func extractThesisSummary(text string) string {
	paragraphs := paragraphSplitRe.Split(text, -1)

	for _, para := range paragraphs {
		trimmed := strings.TrimSpace(para)
		if len(trimmed) < 50 || len(trimmed) > 1000 {
			continue
		}
		lower := strings.ToLower(trimmed)
		for _, kw := range thesisKeywords {
			if strings.Contains(lower, kw) {
				return trimmed
			}
		}
	}

	for _, para := range paragraphs {
		trimmed := strings.TrimSpace(para)
		if len(trimmed) >= 100 && len(trimmed) <= 500 {
			return trimmed
		}
	}
	return ""
}
