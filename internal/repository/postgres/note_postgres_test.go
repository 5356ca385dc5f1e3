package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"campusnotes/internal/model"
	"campusnotes/internal/repository"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var noteCols = []string{"id", "title", "description", "university", "course", "subject", "content_url", "tags", "uploaded_by", "created_at", "updated_at"}

func noteRow(n *model.Note, tagsJSON string) *sqlmock.Rows {
	return sqlmock.NewRows(noteCols).
		AddRow(n.ID, n.Title, n.Description, n.University, n.Course, n.Subject, n.ContentURL, []byte(tagsJSON), n.UploadedBy, n.CreatedAt, n.UpdatedAt)
}

func TestNotePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewNotePostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	note := &model.Note{
		ID:          "test-uuid",
		Title:       "Big-O",
		Description: "asymptotic notation",
		University:  "mit",
		Course:      "cs101",
		Subject:     "algorithms",
		ContentURL:  "/uploads/notes/mit/cs101/algorithms/f.pdf",
		Tags:        []string{"complexity"},
		UploadedBy:  "user-1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectQuery("INSERT INTO notes").
		WithArgs(note.ID, note.Title, note.Description, note.University, note.Course, note.Subject,
			note.ContentURL, []byte(`["complexity"]`), note.UploadedBy, note.CreatedAt, note.UpdatedAt).
		WillReturnRows(noteRow(note, `["complexity"]`))

	result, err := repo.Create(ctx, note)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, note.ID, result.ID)
	assert.Equal(t, []string{"complexity"}, result.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotePostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewNotePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		n := &model.Note{ID: "test-id", Title: "t", University: "mit", Course: "cs101", Subject: "algorithms",
			ContentURL: "/uploads/notes/mit/cs101/algorithms/f.pdf", UploadedBy: "u", CreatedAt: time.Now(), UpdatedAt: time.Now()}
		mock.ExpectQuery("SELECT (.+) FROM notes WHERE id = ?").
			WithArgs("test-id").
			WillReturnRows(noteRow(n, `[]`))

		got, err := repo.FindByID(ctx, "test-id")

		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, "test-id", got.ID)
		assert.Empty(t, got.Tags)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM notes WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotePostgres_FindByCatalog(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewNotePostgres(db)
	ctx := context.Background()

	t.Run("rows returned", func(t *testing.T) {
		n := &model.Note{ID: "n1", Title: "t", University: "mit", Course: "cs101", Subject: "algorithms",
			ContentURL: "/uploads/x", UploadedBy: "u", CreatedAt: time.Now(), UpdatedAt: time.Now()}
		mock.ExpectQuery("SELECT (.+) FROM notes").
			WithArgs("mit", "cs101", "algorithms").
			WillReturnRows(noteRow(n, `["a","b"]`))

		notes, err := repo.FindByCatalog(ctx, "mit", "cs101", "algorithms")

		assert.NoError(t, err)
		assert.Len(t, notes, 1)
		assert.Equal(t, []string{"a", "b"}, notes[0].Tags)
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM notes").
			WithArgs("mit", "cs101", "nonexistent").
			WillReturnRows(sqlmock.NewRows(noteCols))

		notes, err := repo.FindByCatalog(ctx, "mit", "cs101", "nonexistent")

		assert.NoError(t, err)
		assert.Empty(t, notes)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotePostgres_FindBySubject(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewNotePostgres(db)

	n := &model.Note{ID: "n1", Title: "t", University: "mit", Course: "cs101", Subject: "algorithms",
		ContentURL: "/uploads/x", UploadedBy: "u", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	mock.ExpectQuery("SELECT (.+) FROM notes").
		WithArgs("algorithms").
		WillReturnRows(noteRow(n, `[]`))

	notes, err := repo.FindBySubject(context.Background(), "algorithms")

	assert.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotePostgres_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewNotePostgres(db)
	ctx := context.Background()

	t.Run("query pattern and filters are passed through", func(t *testing.T) {
		n := &model.Note{ID: "n1", Title: "Big-O", University: "mit", Course: "cs101", Subject: "algorithms",
			ContentURL: "/uploads/x", UploadedBy: "u", CreatedAt: time.Now(), UpdatedAt: time.Now()}
		mock.ExpectQuery("SELECT (.+) FROM notes").
			WithArgs("%algo%", "mit", "", "").
			WillReturnRows(noteRow(n, `[]`))

		notes, err := repo.Search(ctx, repository.SearchFilter{Query: "algo", University: "mit"})

		assert.NoError(t, err)
		assert.Len(t, notes, 1)
	})

	t.Run("no matches is an empty slice, not an error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM notes").
			WithArgs("%nothing%", "", "", "").
			WillReturnRows(sqlmock.NewRows(noteCols))

		notes, err := repo.Search(ctx, repository.SearchFilter{Query: "nothing"})

		assert.NoError(t, err)
		assert.NotNil(t, notes)
		assert.Empty(t, notes)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotePostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewNotePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		now := time.Now().UTC()
		n := &model.Note{ID: "n1", Title: "new title", Description: "d", University: "mit", Course: "cs101",
			Subject: "algorithms", ContentURL: "/uploads/x", Tags: []string{"t"}, UploadedBy: "u",
			CreatedAt: now, UpdatedAt: now}

		mock.ExpectQuery("UPDATE notes").
			WithArgs(n.ID, n.Title, n.Description, n.University, n.Course, n.Subject, n.ContentURL,
				[]byte(`["t"]`), n.UpdatedAt).
			WillReturnRows(noteRow(n, `["t"]`))

		got, err := repo.Update(ctx, n)

		assert.NoError(t, err)
		assert.Equal(t, "new title", got.Title)
	})

	t.Run("not found", func(t *testing.T) {
		n := &model.Note{ID: "missing", UpdatedAt: time.Now()}
		mock.ExpectQuery("UPDATE notes").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.Update(ctx, n)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotePostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewNotePostgres(db)

	mock.ExpectExec("DELETE FROM notes").
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), "n1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
