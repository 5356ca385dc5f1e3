package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusnotes/internal/model"
	"campusnotes/internal/notepath"
	"campusnotes/internal/repository"
	"campusnotes/internal/storage"
)

var (
	ErrIDRequired       = errors.New("id is required")
	ErrNotFound         = errors.New("note not found")
	ErrFileRequired     = errors.New("file is required")
	ErrUploaderRequired = errors.New("uploader identity is required")
	ErrCatalogRequired  = errors.New("university, course, and subject are required")
	ErrTitleRequired    = errors.New("title is required")
	ErrQueryRequired    = errors.New("query parameter q is required")
)

// downloadExpiry bounds presigned download URLs on object-store backends.
const downloadExpiry = 15 * time.Minute

// CreateNoteInput carries an upload that has already been staged on disk plus
// its metadata. Filename is the client's original name, used only for its
// extension; the stored filename is a generated UUID.
type CreateNoteInput struct {
	StagedPath  string
	Filename    string
	University  string
	Course      string
	Subject     string
	Title       string
	Description string
	Tags        string // comma-separated
	UploadedBy  string
}

// UpdateNoteInput is a partial update. Nil pointer fields leave the stored
// value unchanged. A non-empty StagedPath supplies a replacement file.
type UpdateNoteInput struct {
	StagedPath  string
	Filename    string
	University  *string
	Course      *string
	Subject     *string
	Title       *string
	Description *string
	Tags        *string
}

// NoteService defines the note lifecycle (create/update/delete, coordinating
// the blob store with the record store) and the read side.
type NoteService interface {
	// Create places the staged file into the catalog hierarchy and persists a
	// new Note. If the record insert fails the placed file is removed.
	Create(ctx context.Context, in CreateNoteInput) (*model.Note, error)

	// Update applies a metadata patch and optionally replaces the backing
	// file. The new file must land before the old one is removed; old-file
	// removal is best-effort.
	Update(ctx context.Context, id string, in UpdateNoteInput) (*model.Note, error)

	// Delete removes the backing file (absence is not an error) and the record.
	Delete(ctx context.Context, id string) error

	// Get returns a single note by its ID.
	Get(ctx context.Context, id string) (*model.Note, error)

	// GetByCatalogPath returns notes matching all three catalog fields,
	// newest first. An empty result is ErrNotFound.
	GetByCatalogPath(ctx context.Context, university, course, subject string) ([]model.Note, error)

	// GetBySubject is the legacy broad lookup by subject only, newest first.
	// An empty result is ErrNotFound.
	GetBySubject(ctx context.Context, subject string) ([]model.Note, error)

	// Search matches q case-insensitively against title, description, and
	// tags, narrowed by any supplied catalog filters. Unlike the catalog
	// lookups, no matches yields an empty slice, not an error.
	Search(ctx context.Context, q, university, course, subject string) ([]model.Note, error)

	// Download resolves the URL a client should fetch the note's file from:
	// a presigned URL on object-store backends, the public path otherwise.
	Download(ctx context.Context, id string) (*model.Note, string, error)
}

type noteService struct {
	store storage.BlobStore
	repo  repository.NoteRepository
}

// NewNoteService constructs a new NoteService.
func NewNoteService(store storage.BlobStore, repo repository.NoteRepository) NoteService {
	return &noteService{store: store, repo: repo}
}

func (s *noteService) Create(ctx context.Context, in CreateNoteInput) (*model.Note, error) {
	if in.UploadedBy == "" {
		return nil, ErrUploaderRequired
	}
	if in.StagedPath == "" {
		return nil, ErrFileRequired
	}
	university := normalizeCatalog(in.University)
	course := normalizeCatalog(in.Course)
	subject := normalizeCatalog(in.Subject)
	if university == "" || course == "" || subject == "" {
		return nil, ErrCatalogRequired
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	filename := uuid.New().String() + filepath.Ext(in.Filename)
	loc := notepath.Locate(university, course, subject, filename)

	if err := s.store.Promote(ctx, in.StagedPath, loc.Key); err != nil {
		return nil, fmt.Errorf("place note file: %w", err)
	}

	now := time.Now().UTC()
	note := &model.Note{
		ID:          uuid.New().String(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		University:  university,
		Course:      course,
		Subject:     subject,
		ContentURL:  loc.PublicPath,
		Tags:        splitTags(in.Tags),
		UploadedBy:  in.UploadedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	stored, err := s.repo.Create(ctx, note)
	if err != nil {
		// Rollback: the file landed but the record did not; remove the file
		// so no orphaned blob is left behind.
		if delErr := s.store.Remove(ctx, loc.Key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback remove failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *noteService) Update(ctx context.Context, id string, in UpdateNoteInput) (*model.Note, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updated := *existing
	if in.Title != nil {
		updated.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		updated.Description = strings.TrimSpace(*in.Description)
	}
	// Catalog values are normalized on every write path so storage paths and
	// lookups can never diverge by case.
	if in.University != nil {
		updated.University = normalizeCatalog(*in.University)
	}
	if in.Course != nil {
		updated.Course = normalizeCatalog(*in.Course)
	}
	if in.Subject != nil {
		updated.Subject = normalizeCatalog(*in.Subject)
	}
	if in.Tags != nil {
		updated.Tags = splitTags(*in.Tags)
	}

	if in.StagedPath != "" {
		filename := uuid.New().String() + filepath.Ext(in.Filename)
		loc := notepath.Locate(updated.University, updated.Course, updated.Subject, filename)

		// The replacement must land before the update can succeed.
		if err := s.store.Promote(ctx, in.StagedPath, loc.Key); err != nil {
			return nil, fmt.Errorf("place note file: %w", err)
		}
		// Old-file removal is best-effort: a failure here must not fail the
		// update now that the new file is in place.
		if existing.ContentURL != "" {
			_ = s.store.Remove(ctx, notepath.KeyFromPublic(existing.ContentURL))
		}
		updated.ContentURL = loc.PublicPath
	}

	updated.UpdatedAt = time.Now().UTC()
	stored, err := s.repo.Update(ctx, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return stored, nil
}

func (s *noteService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	// Remove is idempotent on missing blobs, so a dangling ContentURL does
	// not block deletion.
	if note.ContentURL != "" {
		if err := s.store.Remove(ctx, notepath.KeyFromPublic(note.ContentURL)); err != nil {
			return fmt.Errorf("remove note file: %w", err)
		}
	}
	return s.repo.Delete(ctx, id)
}

func (s *noteService) Get(ctx context.Context, id string) (*model.Note, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return note, nil
}

func (s *noteService) GetByCatalogPath(ctx context.Context, university, course, subject string) ([]model.Note, error) {
	notes, err := s.repo.FindByCatalog(ctx,
		normalizeCatalog(university),
		normalizeCatalog(course),
		normalizeCatalog(subject),
	)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, ErrNotFound
	}
	return notes, nil
}

func (s *noteService) GetBySubject(ctx context.Context, subject string) ([]model.Note, error) {
	notes, err := s.repo.FindBySubject(ctx, normalizeCatalog(subject))
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, ErrNotFound
	}
	return notes, nil
}

func (s *noteService) Search(ctx context.Context, q, university, course, subject string) ([]model.Note, error) {
	if strings.TrimSpace(q) == "" {
		return nil, ErrQueryRequired
	}
	return s.repo.Search(ctx, repository.SearchFilter{
		Query:      q,
		University: normalizeCatalog(university),
		Course:     normalizeCatalog(course),
		Subject:    normalizeCatalog(subject),
	})
}

func (s *noteService) Download(ctx context.Context, id string) (*model.Note, string, error) {
	note, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if note.ContentURL == "" {
		return nil, "", ErrNotFound
	}
	url, err := s.store.PresignGet(ctx, notepath.KeyFromPublic(note.ContentURL), downloadExpiry)
	if err != nil {
		if errors.Is(err, storage.ErrNotPresignable) {
			// Local driver: the file is served statically under its public path.
			return note, note.ContentURL, nil
		}
		return nil, "", err
	}
	return note, url, nil
}

// normalizeCatalog trims and lowercases a catalog field.
func normalizeCatalog(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// splitTags turns a comma-separated tag string into trimmed tokens,
// dropping empty ones.
func splitTags(raw string) []string {
	tags := make([]string, 0)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
