package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/akorchak/veracity/internal/model"
)

// quarterHeaderPattern matches section headers like "Q3 2024" at the
// start of a line. Historical report corpora label sections this way.
var quarterHeaderPattern = regexp.MustCompile(`(?m)^Q[1-4] [0-9]{4}\b`)

// paragraphBreakPattern matches blank-line separators between paragraphs
var paragraphBreakPattern = regexp.MustCompile(`\n[ \t]*\n+`)

// Chunker splits corpus documents into store-ready chunks. Documents
// are first cut into quarter-labeled sections, then into paragraphs;
// paragraphs shorter than minChars are merged with a neighbor so the
// store never holds fragments too small to embed meaningfully.
type Chunker struct {
	minChars int
}

// NewChunker creates a chunker with the given minimum chunk length
func NewChunker(minChars int) *Chunker {
	if minChars < 0 {
		minChars = 0
	}
	return &Chunker{minChars: minChars}
}

// Chunk splits one document. Offsets are byte positions into the
// document's text, so unchanged corpora always reproduce the same ids.
func (c *Chunker) Chunk(doc Document) []model.CorpusChunk {
	var chunks []model.CorpusChunk

	for _, section := range splitSections(doc.Text) {
		chunks = append(chunks, c.chunkSection(doc.Source, section)...)
	}

	return chunks
}

// section is a quarter-labeled span of a document
type section struct {
	quarter string
	offset  int
	text    string
}

func splitSections(text string) []section {
	headers := quarterHeaderPattern.FindAllStringIndex(text, -1)
	if len(headers) == 0 {
		return []section{{offset: 0, text: text}}
	}

	var sections []section

	// Preamble before the first header carries no quarter label
	if headers[0][0] > 0 {
		sections = append(sections, section{offset: 0, text: text[:headers[0][0]]})
	}

	for i, h := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		sections = append(sections, section{
			quarter: text[h[0]:h[1]],
			offset:  h[0],
			text:    text[h[0]:end],
		})
	}

	return sections
}

// chunkSection cuts a section into paragraphs and accumulates them into
// chunks of at least minChars. A short trailing remainder folds into
// the previous chunk rather than standing alone.
func (c *Chunker) chunkSection(source string, sec section) []model.CorpusChunk {
	paragraphs := splitParagraphs(sec.text, sec.offset)
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []model.CorpusChunk
	var buffer []string
	bufferOffset := 0
	bufferLen := 0

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		text := strings.Join(buffer, "\n\n")
		chunks = append(chunks, model.CorpusChunk{
			ID:      ChunkID(source, bufferOffset),
			Source:  source,
			Quarter: sec.quarter,
			Offset:  bufferOffset,
			Text:    text,
		})
		buffer = nil
		bufferLen = 0
	}

	for _, p := range paragraphs {
		if len(buffer) == 0 {
			bufferOffset = p.offset
		}
		buffer = append(buffer, p.text)
		bufferLen += len(p.text)

		if bufferLen >= c.minChars {
			flush()
		}
	}

	// Trailing remainder below the minimum merges backward when possible
	if len(buffer) > 0 {
		if bufferLen < c.minChars && len(chunks) > 0 {
			last := &chunks[len(chunks)-1]
			last.Text = last.Text + "\n\n" + strings.Join(buffer, "\n\n")
		} else {
			flush()
		}
	}

	return chunks
}

// paragraph is a trimmed paragraph with its offset into the document
type paragraph struct {
	offset int
	text   string
}

func splitParagraphs(text string, base int) []paragraph {
	var paragraphs []paragraph

	start := 0
	breaks := paragraphBreakPattern.FindAllStringIndex(text, -1)

	spans := make([][2]int, 0, len(breaks)+1)
	for _, b := range breaks {
		spans = append(spans, [2]int{start, b[0]})
		start = b[1]
	}
	spans = append(spans, [2]int{start, len(text)})

	for _, span := range spans {
		raw := text[span[0]:span[1]]
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		leading := len(raw) - len(strings.TrimLeft(raw, " \t\r\n"))
		paragraphs = append(paragraphs, paragraph{
			offset: base + span[0] + leading,
			text:   trimmed,
		})
	}

	return paragraphs
}

// ChunkID derives a stable chunk id from source and offset. The first
// 16 hex characters of the hash are plenty for corpus-scale uniqueness.
func ChunkID(source string, offset int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", source, offset)))
	return hex.EncodeToString(hash[:])[:16]
}
