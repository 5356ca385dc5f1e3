package handler

import (
	"errors"
	"mime/multipart"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"campusnotes/internal/http/middleware"
	"campusnotes/internal/service"
	"campusnotes/internal/storage"
)

// UploadNote handles POST /api/upload (multipart/form-data, field name: file).
// The file is staged on the storage volume before the service takes over.
func UploadNote(store storage.BlobStore, svc service.NoteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uploader, _ := c.Locals(middleware.UserIDLocalKey).(string)
		if uploader == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "user not authenticated")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "no file uploaded")
		}
		staged, err := stageUpload(store, fh)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		note, err := svc.Create(c.UserContext(), service.CreateNoteInput{
			StagedPath:  staged,
			Filename:    fh.Filename,
			University:  c.FormValue("university"),
			Course:      c.FormValue("course"),
			Subject:     c.FormValue("subject"),
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Tags:        c.FormValue("tags"),
			UploadedBy:  uploader,
		})
		if err != nil {
			// The staged file was never promoted; discard it.
			_ = os.Remove(staged)
			return writeNoteError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(note)
	}
}

// GetNote handles GET /api/note/:id.
func GetNote(svc service.NoteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		note, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeNoteError(c, err)
		}
		return c.JSON(note)
	}
}

// DownloadNote handles GET /api/note/:id/download by redirecting to wherever
// the backing file is served from (static path or presigned URL).
func DownloadNote(svc service.NoteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		_, url, err := svc.Download(c.UserContext(), id)
		if err != nil {
			return writeNoteError(c, err)
		}
		return c.Redirect(url, fiber.StatusTemporaryRedirect)
	}
}

// UpdateNote handles PUT /api/:id with an optional replacement file and a
// metadata patch; absent form fields leave the stored values unchanged.
func UpdateNote(store storage.BlobStore, svc service.NoteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var in service.UpdateNoteInput
		if form, err := c.MultipartForm(); err == nil {
			in.Title = formValue(form, "title")
			in.Description = formValue(form, "description")
			in.University = formValue(form, "university")
			in.Course = formValue(form, "course")
			in.Subject = formValue(form, "subject")
			in.Tags = formValue(form, "tags")
		}

		if fh, err := c.FormFile("file"); err == nil {
			staged, err := stageUpload(store, fh)
			if err != nil {
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
			in.StagedPath = staged
			in.Filename = fh.Filename
		}

		note, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			if in.StagedPath != "" {
				_ = os.Remove(in.StagedPath)
			}
			return writeNoteError(c, err)
		}
		return c.JSON(note)
	}
}

// DeleteNote handles DELETE /api/:id.
func DeleteNote(svc service.NoteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeNoteError(c, err)
		}
		return c.JSON(fiber.Map{"message": "note deleted successfully"})
	}
}

// SearchNotes handles GET /api/search?q=...&university=&course=&subject=.
// No matches is an empty array, not a 404.
func SearchNotes(svc service.NoteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		notes, err := svc.Search(c.UserContext(),
			c.Query("q"),
			c.Query("university"),
			c.Query("course"),
			c.Query("subject"),
		)
		if err != nil {
			return writeNoteError(c, err)
		}
		return c.JSON(notes)
	}
}

// GetNotesByCatalogPath handles GET /api/university/:university/course/:course/subject/:subject.
// An empty result set is a 404.
func GetNotesByCatalogPath(svc service.NoteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		notes, err := svc.GetByCatalogPath(c.UserContext(),
			c.Params("university"),
			c.Params("course"),
			c.Params("subject"),
		)
		if err != nil {
			return writeNoteError(c, err)
		}
		return c.JSON(notes)
	}
}

// GetNotesBySubject handles GET /api/subject/:subject, the legacy broad lookup.
func GetNotesBySubject(svc service.NoteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		notes, err := svc.GetBySubject(c.UserContext(), c.Params("subject"))
		if err != nil {
			return writeNoteError(c, err)
		}
		return c.JSON(notes)
	}
}

// writeNoteError maps service errors onto the client-facing taxonomy:
// validation 400, missing identity 401, not found 404, everything else 500.
func writeNoteError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "note not found")
	case errors.Is(err, service.ErrUploaderRequired):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "user not authenticated")
	case errors.Is(err, service.ErrIDRequired),
		errors.Is(err, service.ErrFileRequired),
		errors.Is(err, service.ErrCatalogRequired),
		errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrQueryRequired):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func stageUpload(store storage.BlobStore, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return store.Stage(f, fh.Filename)
}

// formValue returns a pointer to the first value of key, or nil when the
// field is absent from the form (so the patch leaves it unchanged).
func formValue(form *multipart.Form, key string) *string {
	vals := form.Value[key]
	if len(vals) == 0 {
		return nil
	}
	return &vals[0]
}
