package domain

import "time"

type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusError      DocumentStatus = "error"
)

type Document struct {
	ID              string         `json:"id"`
	Filename        string         `json:"filename"`
	MimeType        string         `json:"mime_type"`
	StoragePath     string         `json:"storage_path"`
	Status          DocumentStatus `json:"status"`
	Text            string         `json:"text,omitempty"`
	Pages           int            `json:"pages,omitempty"`
	UsedRecognition bool           `json:"used_recognition,omitempty"`
	Error           string         `json:"error,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Extraction is the result of one completed extraction pass. Text may be
// empty for a legitimately blank document; the pass still ran to completion.
type Extraction struct {
	Text            string
	Pages           int
	UsedRecognition bool
}
