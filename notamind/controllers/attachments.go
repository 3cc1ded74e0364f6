package controllers

import (
	"context"
	"errors"
	"io"
	"notamind/notamind/sources/storage"

	"github.com/google/uuid"
)

// AttachmentsController fronts the object store for a note's
// attachments. Every operation verifies the owning note in the record
// store strictly before touching any container, so an orphan container
// is never created for a nonexistent note.
type AttachmentsController struct {
	store          RecordStore
	attachments    ContainerStore
	maxAttachments int
}

func NewAttachmentsController(store RecordStore, attachments ContainerStore, maxAttachments int) *AttachmentsController {
	return &AttachmentsController{
		store:          store,
		attachments:    attachments,
		maxAttachments: maxAttachments,
	}
}

func (c *AttachmentsController) requireNote(ctx context.Context, noteID uuid.UUID) error {
	note, err := c.store.GetNote(ctx, noteID)
	if err != nil {
		return &StorageError{Op: "loading note", Err: err}
	}
	if note == nil {
		return ErrNotFound
	}
	return nil
}

// Upload stores the blob and reports whether it was newly created
// (true) or an overwrite (false). Empty payloads are rejected before
// anything is touched; the store's quota refusal is mapped with the
// configured ceiling echoed in the message.
func (c *AttachmentsController) Upload(ctx context.Context, noteID uuid.UUID, attachmentID string, body io.Reader, size int64, contentType string) (bool, error) {
	if err := c.requireNote(ctx, noteID); err != nil {
		return false, err
	}
	if size <= 0 {
		return false, &ValidationError{Reason: "attachment body must not be empty"}
	}
	if err := c.attachments.EnsureContainer(ctx, noteID); err != nil {
		return false, &StorageError{Op: "ensuring container", Err: err}
	}
	created, err := c.attachments.Upload(ctx, noteID, attachmentID, body, size, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrQuotaExceeded) {
			return false, &QuotaExceededError{Resource: "attachment", Limit: c.maxAttachments}
		}
		return false, &StorageError{Op: "uploading attachment", Err: err}
	}
	return created, nil
}

// Delete is idempotent: a missing attachment is not an error, only a
// missing note is.
func (c *AttachmentsController) Delete(ctx context.Context, noteID uuid.UUID, attachmentID string) error {
	if err := c.requireNote(ctx, noteID); err != nil {
		return err
	}
	if _, err := c.attachments.Delete(ctx, noteID, attachmentID); err != nil {
		return &StorageError{Op: "deleting attachment", Err: err}
	}
	return nil
}

// Download returns the blob stream and content type. The caller must
// close the stream.
func (c *AttachmentsController) Download(ctx context.Context, noteID uuid.UUID, attachmentID string) (io.ReadCloser, string, error) {
	if err := c.requireNote(ctx, noteID); err != nil {
		return nil, "", err
	}
	rc, contentType, err := c.attachments.Download(ctx, noteID, attachmentID)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", &StorageError{Op: "downloading attachment", Err: err}
	}
	return rc, contentType, nil
}

func (c *AttachmentsController) List(ctx context.Context, noteID uuid.UUID) ([]storage.AttachmentInfo, error) {
	if err := c.requireNote(ctx, noteID); err != nil {
		return nil, err
	}
	infos, err := c.attachments.ListAttachments(ctx, noteID)
	if err != nil {
		return nil, &StorageError{Op: "listing attachments", Err: err}
	}
	return infos, nil
}
