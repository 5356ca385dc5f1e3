package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"campusnotes/internal/model"
	"campusnotes/internal/repository"
)

// NotePostgres is a PostgreSQL implementation of repository.NoteRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// Tags are stored as a JSONB array so substring search can reach into them.
type NotePostgres struct {
	db *sql.DB
}

// NewNotePostgres creates a new NotePostgres repository.
func NewNotePostgres(db *sql.DB) *NotePostgres {
	return &NotePostgres{db: db}
}

var _ repository.NoteRepository = (*NotePostgres)(nil)

const noteColumns = `id, title, description, university, course, subject, content_url, tags, uploaded_by, created_at, updated_at`

func scanNote(row interface{ Scan(...any) error }) (*model.Note, error) {
	var n model.Note
	var tags []byte
	if err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Description,
		&n.University,
		&n.Course,
		&n.Subject,
		&n.ContentURL,
		&tags,
		&n.UploadedBy,
		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &n.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return &n, nil
}

func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

// Create inserts a new note row and returns the stored record.
func (r *NotePostgres) Create(ctx context.Context, note *model.Note) (*model.Note, error) {
	const q = `
		INSERT INTO notes (id, title, description, university, course, subject, content_url, tags, uploaded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + noteColumns
	tags, err := encodeTags(note.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	row := r.db.QueryRowContext(ctx, q,
		note.ID,
		note.Title,
		note.Description,
		note.University,
		note.Course,
		note.Subject,
		note.ContentURL,
		tags,
		note.UploadedBy,
		note.CreatedAt,
		note.UpdatedAt,
	)
	return scanNote(row)
}

// FindByID fetches a single note by its ID.
func (r *NotePostgres) FindByID(ctx context.Context, id string) (*model.Note, error) {
	const q = `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`
	return scanNote(r.db.QueryRowContext(ctx, q, id))
}

// FindByCatalog returns notes matching the full catalog triple, newest first.
func (r *NotePostgres) FindByCatalog(ctx context.Context, university, course, subject string) ([]model.Note, error) {
	const q = `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE university = $1 AND course = $2 AND subject = $3
		ORDER BY created_at DESC, id DESC
	`
	return r.queryNotes(ctx, q, university, course, subject)
}

// FindBySubject returns notes for a subject only, newest first.
func (r *NotePostgres) FindBySubject(ctx context.Context, subject string) ([]model.Note, error) {
	const q = `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE subject = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.queryNotes(ctx, q, subject)
}

// Search matches the query against title, description, and tags with ILIKE,
// narrowed by any non-empty catalog filter.
func (r *NotePostgres) Search(ctx context.Context, f repository.SearchFilter) ([]model.Note, error) {
	const q = `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE (title ILIKE $1 OR description ILIKE $1 OR EXISTS (
			SELECT 1 FROM jsonb_array_elements_text(tags) AS tag WHERE tag ILIKE $1
		))
		AND ($2 = '' OR university = $2)
		AND ($3 = '' OR course = $3)
		AND ($4 = '' OR subject = $4)
		ORDER BY created_at DESC, id DESC
	`
	pattern := "%" + f.Query + "%"
	return r.queryNotes(ctx, q, pattern, f.University, f.Course, f.Subject)
}

// Update replaces the mutable columns and returns the stored row.
// Scanning surfaces sql.ErrNoRows when the note does not exist.
func (r *NotePostgres) Update(ctx context.Context, note *model.Note) (*model.Note, error) {
	const q = `
		UPDATE notes
		SET title = $2, description = $3, university = $4, course = $5, subject = $6,
		    content_url = $7, tags = $8, updated_at = $9
		WHERE id = $1
		RETURNING ` + noteColumns
	tags, err := encodeTags(note.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	row := r.db.QueryRowContext(ctx, q,
		note.ID,
		note.Title,
		note.Description,
		note.University,
		note.Course,
		note.Subject,
		note.ContentURL,
		tags,
		note.UpdatedAt,
	)
	return scanNote(row)
}

// Delete removes a note by ID. It does not return an error if the row does not exist.
func (r *NotePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM notes WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

func (r *NotePostgres) queryNotes(ctx context.Context, q string, args ...any) ([]model.Note, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]model.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}
