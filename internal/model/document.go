package model

import "time"

// Document is the sole persisted entity: one uploaded PDF with its extracted
// text. It is created only by a successful ingestion, never updated in place,
// and never deleted. Filename is unique across the store and mirrors the
// retained file 1:1.
type Document struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	Content    string    `json:"content"`
	UploadedAt time.Time `json:"upload_time"`
}
