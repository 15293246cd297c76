package domain

import "time"

// Document is a stored upload together with its extracted text and the
// latest category prediction.
type Document struct {
	ID                 string       `json:"id"`
	Filename           string       `json:"filename"`
	ContentType        string       `json:"content_type"`
	FilePath           string       `json:"file_path"`
	Size               int64        `json:"size"`
	Content            string       `json:"content,omitempty"`
	ContentHash        string       `json:"content_hash"`
	CategoryPrediction Distribution `json:"category_prediction"`
	UploadedAt         time.Time    `json:"uploaded_at"`
}

// DocumentContent is the (id, content) pair consumed by reclassification.
type DocumentContent struct {
	ID      string
	Content string
}

// ListOptions pages through documents newest first. A non-empty Category
// keeps only documents whose prediction mentions it.
type ListOptions struct {
	Limit    int
	Offset   int
	Category Category
}

type Pagination struct {
	Total   int  `json:"total"`
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
}

type DocumentPage struct {
	Documents  []Document `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// UploadResult is what the upload pipeline hands back to the transport layer.
type UploadResult struct {
	Document       *Document
	Classification Classification
	Extraction     Extraction
}

// ReclassifyJob is the out-of-band request to recompute every stored prediction.
type ReclassifyJob struct {
	ID          string    `json:"id"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

type ReclassifyStats struct {
	JobID     string `json:"job_id"`
	Found     int    `json:"documents_found"`
	Updated   int    `json:"documents_updated"`
	Skipped   int    `json:"documents_skipped"`
	Failed    int    `json:"documents_failed"`
	Fallbacks int    `json:"fallback_results"`
}
