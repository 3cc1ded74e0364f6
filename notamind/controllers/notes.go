package controllers

import (
	"context"
	"io"
	"notamind/notamind/sources/psql/models"
	"notamind/notamind/sources/storage"
	"notamind/notamind/utils/logging"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordStore owns the relational side: notes and their tags. A
// note-plus-tags write is the only atomic unit in the system.
type RecordStore interface {
	CountNotes(ctx context.Context) (int64, error)
	CreateNote(ctx context.Context, summary, details string, tagNames []string) (*models.Note, error)
	GetNote(ctx context.Context, id uuid.UUID) (*models.Note, error)
	ListNotes(ctx context.Context, tagFilter string) ([]models.Note, error)
	ListDistinctTagNames(ctx context.Context) ([]string, error)
	UpdateNote(ctx context.Context, id uuid.UUID, summary, details *string, tagNames []string) (*models.Note, error)
	DeleteNote(ctx context.Context, id uuid.UUID) (bool, error)
}

// TagService produces a tag list for note text. The contract is total:
// implementations return a sentinel list instead of failing.
type TagService interface {
	Generate(ctx context.Context, text string) []string
}

// ContainerStore owns the object side: one container per note, blobs
// keyed by attachment id.
type ContainerStore interface {
	EnsureContainer(ctx context.Context, noteID uuid.UUID) error
	ContainerExists(ctx context.Context, noteID uuid.UUID) (bool, error)
	CountAttachments(ctx context.Context, noteID uuid.UUID, limit int) (int, error)
	BlobExists(ctx context.Context, noteID uuid.UUID, attachmentID string) (bool, error)
	Upload(ctx context.Context, noteID uuid.UUID, attachmentID string, body io.Reader, size int64, contentType string) (bool, error)
	Delete(ctx context.Context, noteID uuid.UUID, attachmentID string) (bool, error)
	Download(ctx context.Context, noteID uuid.UUID, attachmentID string) (io.ReadCloser, string, error)
	ListAttachments(ctx context.Context, noteID uuid.UUID) ([]storage.AttachmentInfo, error)
	PurgeContainer(ctx context.Context, noteID uuid.UUID) error
}

// NotesController coordinates the record store, the tag generator and
// the attachment containers across the note lifecycle. Quota checks
// are check-then-act: concurrent creates near the ceiling can
// transiently admit more notes than MaxNotes. That is an accepted
// property of the design, not a bug to lock away.
type NotesController struct {
	store       RecordStore
	tags        TagService
	attachments ContainerStore
	maxNotes    int
}

func NewNotesController(store RecordStore, tags TagService, attachments ContainerStore, maxNotes int) *NotesController {
	return &NotesController{
		store:       store,
		tags:        tags,
		attachments: attachments,
		maxNotes:    maxNotes,
	}
}

func validateSummary(summary string) error {
	if strings.TrimSpace(summary) == "" {
		return &ValidationError{Reason: "summary is required"}
	}
	if utf8.RuneCountInString(summary) > models.MaxSummaryLen {
		return &ValidationError{Reason: "summary exceeds 60 characters"}
	}
	return nil
}

func validateDetails(details string) error {
	if strings.TrimSpace(details) == "" {
		return &ValidationError{Reason: "details is required"}
	}
	if utf8.RuneCountInString(details) > models.MaxDetailsLen {
		return &ValidationError{Reason: "details exceeds 1024 characters"}
	}
	return nil
}

// CreateNote validates, enforces the note ceiling, generates tags and
// persists. Tag generation never blocks persistence: a degraded
// completion service yields a sentinel tag and the note is stored
// anyway.
func (c *NotesController) CreateNote(ctx context.Context, summary, details string) (*models.Note, error) {
	if err := validateSummary(summary); err != nil {
		return nil, err
	}
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	count, err := c.store.CountNotes(ctx)
	if err != nil {
		return nil, &StorageError{Op: "counting notes", Err: err}
	}
	if count >= int64(c.maxNotes) {
		return nil, &QuotaExceededError{Resource: "note", Limit: c.maxNotes}
	}

	tagNames := c.tags.Generate(ctx, details)

	note, err := c.store.CreateNote(ctx, summary, details, tagNames)
	if err != nil {
		return nil, &StorageError{Op: "creating note", Err: err}
	}
	return note, nil
}

func (c *NotesController) GetNote(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	note, err := c.store.GetNote(ctx, id)
	if err != nil {
		return nil, &StorageError{Op: "loading note", Err: err}
	}
	if note == nil {
		return nil, ErrNotFound
	}
	return note, nil
}

func (c *NotesController) ListNotes(ctx context.Context, tagFilter string) ([]models.Note, error) {
	notes, err := c.store.ListNotes(ctx, tagFilter)
	if err != nil {
		return nil, &StorageError{Op: "listing notes", Err: err}
	}
	return notes, nil
}

func (c *NotesController) ListTagNames(ctx context.Context) ([]string, error) {
	names, err := c.store.ListDistinctTagNames(ctx)
	if err != nil {
		return nil, &StorageError{Op: "listing tag names", Err: err}
	}
	return names, nil
}

// UpdateNote requires at least one field. Tags are regenerated only
// when details is supplied; the replacement set is ready before the
// old one is discarded, so the zero-tag window stays inside the store
// transaction.
func (c *NotesController) UpdateNote(ctx context.Context, id uuid.UUID, summary, details *string) (*models.Note, error) {
	if summary == nil && details == nil {
		return nil, &ValidationError{Reason: "at least one of summary or details is required"}
	}
	if summary != nil {
		if err := validateSummary(*summary); err != nil {
			return nil, err
		}
	}
	if details != nil {
		if err := validateDetails(*details); err != nil {
			return nil, err
		}
	}

	existing, err := c.store.GetNote(ctx, id)
	if err != nil {
		return nil, &StorageError{Op: "loading note", Err: err}
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	var tagNames []string
	if details != nil {
		tagNames = c.tags.Generate(ctx, *details)
	}

	note, err := c.store.UpdateNote(ctx, id, summary, details, tagNames)
	if err != nil {
		return nil, &StorageError{Op: "updating note", Err: err}
	}
	if note == nil {
		// deleted between load and update
		return nil, ErrNotFound
	}
	return note, nil
}

// DeleteNote removes the note row (tags cascade with it) and then
// purges the attachment container best-effort. A failed purge is
// logged, never surfaced: the note is already gone, and residual
// attachments beat a half-deleted note.
func (c *NotesController) DeleteNote(ctx context.Context, id uuid.UUID) error {
	found, err := c.store.DeleteNote(ctx, id)
	if err != nil {
		return &StorageError{Op: "deleting note", Err: err}
	}
	if !found {
		return ErrNotFound
	}
	if err := c.attachments.PurgeContainer(ctx, id); err != nil {
		logging.ErrorLogger.Error("attachment purge failed after note delete",
			zap.String("note_id", id.String()), zap.Error(err))
	}
	return nil
}
