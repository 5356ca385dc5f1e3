package model

// Package model contains domain models/data structures.
// Pure data, no persistence or transport dependencies.

import "time"

// Note describes one uploaded academic document: its catalog placement
// (university/course/subject), descriptive metadata, and the pointer to the
// backing file. ContentURL is the single link from metadata to the artifact;
// it is a store-relative public path such as
// /uploads/notes/mit/cs101/algorithms/<file>.
type Note struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	University  string    `json:"university"`
	Course      string    `json:"course"`
	Subject     string    `json:"subject"`
	ContentURL  string    `json:"contentURL"`
	Tags        []string  `json:"tags"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
