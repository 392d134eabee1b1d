package dto

import "time"

// DatasetSnapshot is the document written by a dataset export.
type DatasetSnapshot struct {
	Dataset     DatasetOut         `json:"dataset"`
	GeneratedAt time.Time          `json:"generated_at"`
	Summary     []DimensionSummary `json:"summary"`
	Series      []Series           `json:"series"`
}

// ExportResponse describes where a snapshot was stored.
type ExportResponse struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	GeneratedAt time.Time `json:"generated_at"`
}
