package domain

import (
	"time"

	"github.com/google/uuid"
)

// Token is one recognized word from an OCR backend, positioned by the
// estimated pixel center of its bounding box. Tokens are produced once by a
// locator and never mutated afterwards.
type Token struct {
	Text       string  `json:"text"`
	Y          int     `json:"y"`
	X          int     `json:"x"`
	Confidence float64 `json:"confidence"`
}

// Cell is a single table cell. A missing cell carries neither text nor a
// number. In a numeric column Number holds the coerced value and Text keeps
// the original rendering.
type Cell struct {
	Missing bool    `json:"missing"`
	Text    string  `json:"text,omitempty"`
	Number  float64 `json:"number,omitempty"`
}

// Table is the final rectangular extraction output: one header row of column
// labels plus zero or more data rows, all of identical width.
type Table struct {
	Headers []string     `json:"headers"`
	Types   []ColumnType `json:"types"`
	Rows    [][]Cell     `json:"rows"`
}

// Width returns the table's column count.
func (t *Table) Width() int {
	return len(t.Headers)
}

// ExtractionResult is the structured outcome of one reconstruction call.
// It is always produced, success or failure; failures carry the error
// message and zeroed statistics.
type ExtractionResult struct {
	Success         bool    `json:"success"`
	Error           string  `json:"error,omitempty"`
	RowsExtracted   int     `json:"rows_extracted"`
	ColumnsDetected int     `json:"columns_detected"`
	Table           *Table  `json:"table,omitempty"`
	Confidence      float64 `json:"confidence"`
	ElapsedSeconds  float64 `json:"elapsed_seconds"`
	Backend         string  `json:"backend"`
}

// Scan is an uploaded source image awaiting or having undergone extraction.
type Scan struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	FileName     string     `db:"file_name" json:"file_name"`
	OriginalName string     `db:"original_name" json:"original_name"`
	ContentType  string     `db:"content_type" json:"content_type"`
	FileSize     int64      `db:"file_size" json:"file_size"`
	S3Bucket     string     `db:"s3_bucket" json:"-"`
	S3Key        string     `db:"s3_key" json:"-"`
	Status       ScanStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ExtractionJob ties a Scan to one extraction attempt and its result.
type ExtractionJob struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ScanID       uuid.UUID  `db:"scan_id" json:"scan_id"`
	Status       JobStatus  `db:"status" json:"status"`
	Attempts     int        `db:"attempts" json:"attempts"`
	Backend      string     `db:"backend" json:"backend,omitempty"`
	ResultJSON   []byte     `db:"result_json" json:"-"`
	Error        string     `db:"error" json:"error,omitempty"`
	ExportBucket string     `db:"export_bucket" json:"-"`
	ExportKey    string     `db:"export_key" json:"-"`
	StartedAt    *time.Time `db:"started_at" json:"started_at,omitempty"`
	FinishedAt   *time.Time `db:"finished_at" json:"finished_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
