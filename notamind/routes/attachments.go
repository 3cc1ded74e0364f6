package routes

import (
	"io"
	"net/http"
	"notamind/notamind/controllers"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func noteIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, &controllers.ValidationError{Reason: "invalid note id"}
	}
	return id, nil
}

func AttachmentRoutes(ctrl *controllers.AttachmentsController) chi.Router {
	r := chi.NewRouter()

	// List attachment metadata for a note
	r.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
		noteID, err := noteIDParam(r)
		if err != nil {
			return nil, 0, err
		}
		infos, err := ctrl.List(r.Context(), noteID)
		if err != nil {
			return nil, 0, err
		}
		return infos, http.StatusOK, nil
	}))

	// Upload: 201 on create, 204 on overwrite
	r.Put("/{attachmentId}", func(w http.ResponseWriter, r *http.Request) {
		noteID, err := noteIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		created, err := ctrl.Upload(r.Context(), noteID, chi.URLParam(r, "attachmentId"),
			r.Body, r.ContentLength, contentType)
		if err != nil {
			writeError(w, err)
			return
		}
		if created {
			w.WriteHeader(http.StatusCreated)
		} else {
			w.WriteHeader(http.StatusNoContent)
		}
	})

	// Delete: 204 whether or not the attachment existed
	r.Delete("/{attachmentId}", handleJSON(func(r *http.Request) (any, int, error) {
		noteID, err := noteIDParam(r)
		if err != nil {
			return nil, 0, err
		}
		if err := ctrl.Delete(r.Context(), noteID, chi.URLParam(r, "attachmentId")); err != nil {
			return nil, 0, err
		}
		return nil, http.StatusNoContent, nil
	}))

	// Download the attachment bytes with the stored content type
	r.Get("/{attachmentId}", func(w http.ResponseWriter, r *http.Request) {
		noteID, err := noteIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		rc, contentType, err := ctrl.Download(r.Context(), noteID, chi.URLParam(r, "attachmentId"))
		if err != nil {
			writeError(w, err)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", contentType)
		io.Copy(w, rc)
	})

	return r
}
