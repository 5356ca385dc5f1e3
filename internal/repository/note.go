package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

import (
	"context"

	"campusnotes/internal/model"
)

// NoteRepository defines data access for notes using SQL queries only.
// No business logic here — strictly persistence operations.
type NoteRepository interface {
	// Create inserts a new note record and returns the stored row
	// (may include values set by the DB).
	Create(ctx context.Context, note *model.Note) (*model.Note, error)

	// FindByID returns a note by its ID, or sql.ErrNoRows if absent.
	FindByID(ctx context.Context, id string) (*model.Note, error)

	// FindByCatalog returns notes matching all three catalog fields exactly,
	// newest first. Catalog values are stored lowercased, so callers pass
	// lowercased values for case-insensitive matching.
	FindByCatalog(ctx context.Context, university, course, subject string) ([]model.Note, error)

	// FindBySubject returns notes for a subject only, newest first.
	FindBySubject(ctx context.Context, subject string) ([]model.Note, error)

	// Search matches the query case-insensitively as a substring of title,
	// description, or any tag, optionally narrowed by catalog filters.
	Search(ctx context.Context, f SearchFilter) ([]model.Note, error)

	// Update replaces the mutable columns of an existing note and returns
	// the stored row, or sql.ErrNoRows if the note does not exist.
	Update(ctx context.Context, note *model.Note) (*model.Note, error)

	// Delete removes a note by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// SearchFilter holds free-text search parameters. Empty catalog fields are
// not applied as filters.
type SearchFilter struct {
	Query      string
	University string
	Course     string
	Subject    string
}
