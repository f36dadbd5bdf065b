package model

// CorpusChunk is one stored fragment of a historical report. Chunks are
// owned by the vector store: created at ingestion time, immutable after,
// and never deleted in normal operation. An id collision on upsert with
// different content is a silent last-write-wins overwrite.
type CorpusChunk struct {
	// ID is derived from source + offset, so re-ingesting an unchanged
	// corpus maps every chunk onto its existing row.
	ID string `json:"id"`

	// Source identifies the corpus file the chunk came from
	Source string `json:"source"`

	// Quarter is the "Q3 2024" style label of the report section the
	// chunk belongs to, when one was found
	Quarter string `json:"quarter,omitempty"`

	// Offset is the byte offset of the chunk within its source
	Offset int `json:"offset"`

	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// StoreStatus reports vector store readiness for the status command
type StoreStatus struct {
	Backend    string `json:"backend"`
	ChunkCount int    `json:"chunk_count"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}
