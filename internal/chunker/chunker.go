// Package chunker splits extracted document text into ordered, typed,
// hashed evidence chunks. Output is deterministic: the same text always
// yields the same chunk set, byte for byte.
package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/vestor-labs/ingest-cli/internal/model"
)

const (
	DefaultMaxChunkSize = 1500
	DefaultOverlapSize  = 200
)

// Options tunes the size-based splitting pass.
type Options struct {
	MaxChunkSize int
	OverlapSize  int
}

func (o Options) withDefaults() Options {
	if o.MaxChunkSize <= 0 {
		o.MaxChunkSize = DefaultMaxChunkSize
	}
	if o.OverlapSize < 0 {
		o.OverlapSize = DefaultOverlapSize
	}
	return o
}

// Input is one document's extracted text plus its source metadata.
type Input struct {
	ExtractedText string
	DocumentType  model.DocumentType
	URL           string
	StorageKey    string
}

// Chunk is one emitted evidence chunk, ordered by Index within the document.
type Chunk struct {
	Index         int
	Title         string
	Content       string
	SectionType   model.SectionType
	SourceLocator model.SourceLocator
	ContentHash   string
}

// sectionKeywords maps section types to their keyword lists. Order matters:
// the first list with a substring match wins, so downstream classifications
// depend on this exact sequence.
var sectionKeywords = []struct {
	sectionType model.SectionType
	keywords    []string
}{
	{model.SectionTypeThesis, []string{
		"investment thesis",
		"thesis",
		"our approach",
		"investment philosophy",
		"how we invest",
		"what we look for",
		"investment strategy",
	}},
	{model.SectionTypeCriteria, []string{
		"investment criteria",
		"criteria",
		"check size",
		"stage",
		"geography",
		"sector",
		"focus",
		"requirements",
		"what we invest in",
		"sweet spot",
	}},
	{model.SectionTypePortfolio, []string{
		"portfolio",
		"investments",
		"companies",
		"our companies",
		"selected investments",
		"portfolio companies",
	}},
	{model.SectionTypeTeam, []string{
		"team",
		"partners",
		"about us",
		"our team",
		"people",
		"who we are",
		"principals",
	}},
}

var (
	headingRe     = regexp.MustCompile(`(?m)^#{1,3}\s+.+$`)
	endPunctRe    = regexp.MustCompile(`[.!?]$`)
	numericOnlyRe = regexp.MustCompile(`^[\d\s]+$`)
)

// detectSectionType classifies text against the ordered keyword lists.
func detectSectionType(text string) model.SectionType {
	lower := strings.ToLower(text)
	for _, entry := range sectionKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.sectionType
			}
		}
	}
	return model.SectionTypeGeneral
}

// extractHeading pulls a short-label first line out of a section body. A
// label is under 100 characters, does not end in sentence punctuation, and
// is not purely numeric.
func extractHeading(text string) (heading, rest string) {
	lines := strings.Split(text, "\n")
	first := strings.TrimSpace(lines[0])

	if first != "" &&
		utf8.RuneCountInString(first) < 100 &&
		!endPunctRe.MatchString(first) &&
		!numericOnlyRe.MatchString(first) {
		return first, strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}
	return "", text
}

// hashContent returns a short content hash used for chunk uniqueness.
func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}

// lineNumber returns the 1-based line of byte offset in text.
func lineNumber(text string, offset int) int {
	return strings.Count(text[:offset], "\n") + 1
}

type section struct {
	title   string
	content string
	start   int // byte offset into the original text
}

// Split chunks a document's extracted text: markdown-style headings start
// sections, oversized sections are windowed with overlap, and each chunk
// carries a section type, content hash, and source locator.
func Split(input Input, opts Options) []Chunk {
	opts = opts.withDefaults()

	text := input.ExtractedText
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var sections []section
	lastIndex := 0
	for _, loc := range headingRe.FindAllStringIndex(text, -1) {
		if loc[0] > lastIndex {
			if s, ok := makeSection(text[lastIndex:loc[0]], lastIndex); ok {
				sections = append(sections, s)
			}
		}
		lastIndex = loc[0]
	}
	if lastIndex < len(text) {
		if s, ok := makeSection(text[lastIndex:], lastIndex); ok {
			sections = append(sections, s)
		}
	}
	if len(sections) == 0 {
		sections = append(sections, section{content: strings.TrimSpace(text)})
	}

	var chunks []Chunk
	for _, sec := range sections {
		sectionType := detectSectionType(sec.title + " " + sec.content)

		if len(sec.content) <= opts.MaxChunkSize {
			chunks = append(chunks, Chunk{
				Title:       sec.title,
				Content:     sec.content,
				SectionType: sectionType,
				SourceLocator: model.SourceLocator{
					URL:       input.URL,
					LineStart: lineNumber(text, sec.start),
				},
				ContentHash: hashContent(sec.content),
			})
			continue
		}

		chunks = append(chunks, splitSection(text, sec, sectionType, input.URL, opts)...)
	}

	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks
}

func makeSection(raw string, start int) (section, bool) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return section{}, false
	}
	heading, rest := extractHeading(content)
	if heading != "" {
		content = rest
	}
	return section{title: heading, content: content, start: start}, true
}

// splitSection windows an oversized section with overlap, preferring to cut
// at the last sentence terminator or newline past the window's halfway mark.
func splitSection(text string, sec section, sectionType model.SectionType, url string, opts Options) []Chunk {
	var chunks []Chunk
	content := sec.content
	start := 0
	first := true

	for start < len(content) {
		end := min(start+opts.MaxChunkSize, len(content))
		window := content[start:end]

		if end < len(content) {
			lastPeriod := strings.LastIndex(window, ". ")
			lastNewline := strings.LastIndex(window, "\n")
			breakPoint := max(lastPeriod, lastNewline)
			if float64(breakPoint) > float64(opts.MaxChunkSize)*0.5 {
				window = window[:breakPoint+1]
			}
		}

		title := ""
		if first {
			title = sec.title
		}
		chunks = append(chunks, Chunk{
			Title:       title,
			Content:     strings.TrimSpace(window),
			SectionType: sectionType,
			SourceLocator: model.SourceLocator{
				URL:       url,
				LineStart: lineNumber(text, sec.start+start),
			},
			ContentHash: hashContent(window),
		})

		step := len(window) - opts.OverlapSize
		if step <= 0 {
			step = len(window)
		}
		start += step
		first = false
	}
	return chunks
}
