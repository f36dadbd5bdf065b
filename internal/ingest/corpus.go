package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/akorchak/veracity/internal/extract"
)

// Document is one corpus file, reduced to plain text
type Document struct {
	// Source is the file name, used for chunk ids and provenance
	Source string

	Text string
}

// LoadDocuments reads the corpus at path, which may be a single file or
// a directory of files. Supported formats: .txt, .md (read as-is) and
// .html/.htm (reduced to visible text). Directories are read in sorted
// order so ingestion is deterministic.
func LoadDocuments(path string) ([]Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat corpus path: %w", err)
	}

	if !info.IsDir() {
		doc, err := loadDocument(path)
		if err != nil {
			return nil, err
		}
		return []Document{doc}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !supportedFormat(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no corpus files (.txt, .md, .html) in %s", path)
	}

	docs := make([]Document, 0, len(names))
	for _, name := range names {
		doc, err := loadDocument(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func loadDocument(path string) (Document, error) {
	if !supportedFormat(path) {
		return Document{}, fmt.Errorf("unsupported corpus format: %s (expected .txt, .md, .html)", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read corpus file: %w", err)
	}

	text := string(data)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		text, err = extract.VisibleText(text)
		if err != nil {
			return Document{}, fmt.Errorf("parse html corpus file %s: %w", path, err)
		}
	}

	return Document{
		Source: filepath.Base(path),
		Text:   text,
	}, nil
}

func supportedFormat(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md", ".html", ".htm":
		return true
	}
	return false
}
