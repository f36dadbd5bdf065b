package ingest

import (
	"strings"
	"testing"
)

const sampleCorpus = `Q3 2024

Global equities advanced through the quarter as inflation prints cooled and
central banks signaled a pause. Breadth improved notably, with cyclicals
participating alongside the megacap leadership that defined the first half.

Fixed income was calmer. Credit spreads tightened modestly and the long end
of the curve found a range after a volatile summer.

Q4 2024

Markets closed the year on a strong note. The rally broadened further and
small caps outperformed for the first time in six quarters, a rotation many
strategists had called for since spring.
`

func TestChunker_QuarterSections(t *testing.T) {
	chunker := NewChunker(50)
	chunks := chunker.Chunk(Document{Source: "memory_2024.txt", Text: sampleCorpus})

	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}

	quarters := map[string]bool{}
	for _, c := range chunks {
		quarters[c.Quarter] = true
	}

	if !quarters["Q3 2024"] || !quarters["Q4 2024"] {
		t.Errorf("expected chunks labeled Q3 2024 and Q4 2024, got %v", quarters)
	}
}

func TestChunker_PreambleHasNoQuarter(t *testing.T) {
	text := "An introductory note about this archive.\n\nQ1 2023\n\nMarkets were mixed to start the year, with rates doing most of the work.\n"

	chunker := NewChunker(10)
	chunks := chunker.Chunk(Document{Source: "archive.txt", Text: text})

	if len(chunks) < 2 {
		t.Fatalf("expected preamble and section chunks, got %d", len(chunks))
	}
	if chunks[0].Quarter != "" {
		t.Errorf("preamble chunk should have no quarter label, got %q", chunks[0].Quarter)
	}
	if chunks[1].Quarter != "Q1 2023" {
		t.Errorf("expected Q1 2023 label, got %q", chunks[1].Quarter)
	}
}

func TestChunker_MergesShortParagraphs(t *testing.T) {
	text := "Short one.\n\nShort two.\n\nShort three.\n"

	chunker := NewChunker(200)
	chunks := chunker.Chunk(Document{Source: "short.txt", Text: text})

	if len(chunks) != 1 {
		t.Fatalf("expected short paragraphs merged into 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "Short one.") || !strings.Contains(chunks[0].Text, "Short three.") {
		t.Errorf("merged chunk missing paragraphs: %q", chunks[0].Text)
	}
}

func TestChunker_ShortTrailerMergesBackward(t *testing.T) {
	long := strings.Repeat("A sentence about markets. ", 10)
	text := long + "\n\nTiny tail.\n"

	chunker := NewChunker(100)
	chunks := chunker.Chunk(Document{Source: "tail.txt", Text: text})

	if len(chunks) != 1 {
		t.Fatalf("expected trailing fragment merged backward, got %d chunks", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "Tiny tail.") {
		t.Errorf("trailing fragment lost: %q", chunks[0].Text)
	}
}

func TestChunker_Deterministic(t *testing.T) {
	chunker := NewChunker(50)
	doc := Document{Source: "memory_2024.txt", Text: sampleCorpus}

	first := chunker.Chunk(doc)
	second := chunker.Chunk(doc)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("chunk %d: ids differ: %s vs %s", i, first[i].ID, second[i].ID)
		}
		if first[i].Offset != second[i].Offset {
			t.Errorf("chunk %d: offsets differ: %d vs %d", i, first[i].Offset, second[i].Offset)
		}
	}
}

func TestChunker_OffsetsPointIntoSource(t *testing.T) {
	chunker := NewChunker(50)
	chunks := chunker.Chunk(Document{Source: "memory_2024.txt", Text: sampleCorpus})

	for _, c := range chunks {
		firstLine := c.Text
		if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
			firstLine = firstLine[:idx]
		}
		if !strings.HasPrefix(sampleCorpus[c.Offset:], firstLine) {
			t.Errorf("chunk offset %d does not point at chunk start %q", c.Offset, firstLine)
		}
	}
}

func TestChunker_EmptyDocument(t *testing.T) {
	chunker := NewChunker(50)
	chunks := chunker.Chunk(Document{Source: "empty.txt", Text: "   \n\n  "})

	if len(chunks) != 0 {
		t.Errorf("expected no chunks for whitespace document, got %d", len(chunks))
	}
}

func TestChunkID(t *testing.T) {
	a := ChunkID("memory_2024.txt", 0)
	b := ChunkID("memory_2024.txt", 0)
	c := ChunkID("memory_2024.txt", 100)
	d := ChunkID("memory_2023.txt", 0)

	if a != b {
		t.Error("same source and offset must give the same id")
	}
	if a == c {
		t.Error("different offsets must give different ids")
	}
	if a == d {
		t.Error("different sources must give different ids")
	}
	if len(a) != 16 {
		t.Errorf("expected 16-character id, got %d", len(a))
	}
}
