package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"notamind/notamind/controllers"
	"notamind/notamind/sources/psql/models"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// statusForError maps the coordinator taxonomy onto the HTTP surface.
func statusForError(err error) int {
	var ve *controllers.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	var qe *controllers.QuotaExceededError
	if errors.As(err, &qe) {
		return http.StatusForbidden
	}
	if errors.Is(err, controllers.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusForError(err))
}

func handleJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, status, err := handler(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if res == nil {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(res)
	}
}

type noteResponse struct {
	ID         uuid.UUID  `json:"id"`
	Summary    string     `json:"summary"`
	Details    string     `json:"details"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt *time.Time `json:"modified_at"`
	Tags       []string   `json:"tags"`
}

func toNoteResponse(n *models.Note) noteResponse {
	return noteResponse{
		ID:         n.ID,
		Summary:    n.Summary,
		Details:    n.Details,
		CreatedAt:  n.CreatedAt,
		ModifiedAt: n.ModifiedAt,
		Tags:       n.TagNames(),
	}
}

func NotesRoutes(ctrl *controllers.NotesController, attCtrl *controllers.AttachmentsController) chi.Router {
	r := chi.NewRouter()

	// List notes, optionally filtered by tag name
	r.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
		notes, err := ctrl.ListNotes(r.Context(), r.URL.Query().Get("tagName"))
		if err != nil {
			return nil, 0, err
		}
		res := make([]noteResponse, 0, len(notes))
		for i := range notes {
			res = append(res, toNoteResponse(&notes[i]))
		}
		return res, http.StatusOK, nil
	}))

	// Distinct tag names, alphabetical
	r.Get("/tags", handleJSON(func(r *http.Request) (any, int, error) {
		names, err := ctrl.ListTagNames(r.Context())
		if err != nil {
			return nil, 0, err
		}
		return names, http.StatusOK, nil
	}))

	// Create note; Location header carries the new resource path
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Summary string `json:"summary"`
			Details string `json:"details"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		note, err := ctrl.CreateNote(r.Context(), req.Summary, req.Details)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Location", "/notes/"+note.ID.String())
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(toNoteResponse(note))
	})

	// Get single note
	r.Get("/{id}", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			return nil, 0, &controllers.ValidationError{Reason: "invalid note id"}
		}
		note, err := ctrl.GetNote(r.Context(), id)
		if err != nil {
			return nil, 0, err
		}
		return toNoteResponse(note), http.StatusOK, nil
	}))

	// Partial update; at least one of summary/details required
	r.Patch("/{id}", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			return nil, 0, &controllers.ValidationError{Reason: "invalid note id"}
		}
		var req struct {
			Summary *string `json:"summary"`
			Details *string `json:"details"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, 0, &controllers.ValidationError{Reason: "invalid request body"}
		}
		if _, err := ctrl.UpdateNote(r.Context(), id, req.Summary, req.Details); err != nil {
			return nil, 0, err
		}
		return nil, http.StatusNoContent, nil
	}))

	// Delete note and purge its attachments
	r.Delete("/{id}", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			return nil, 0, &controllers.ValidationError{Reason: "invalid note id"}
		}
		if err := ctrl.DeleteNote(r.Context(), id); err != nil {
			return nil, 0, err
		}
		return nil, http.StatusNoContent, nil
	}))

	r.Mount("/{id}/attachments", AttachmentRoutes(attCtrl))

	return r
}
