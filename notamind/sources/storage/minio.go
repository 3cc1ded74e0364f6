package storage

import (
	"context"
	"errors"
	"io"
	"notamind/notamind/config"
	"notamind/notamind/utils/logging"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var (
	// ErrQuotaExceeded is returned by Upload when the note's container
	// already holds the configured maximum number of attachments.
	ErrQuotaExceeded = errors.New("attachment quota exceeded")
	// ErrBlobNotFound is returned by Download for a missing attachment.
	ErrBlobNotFound = errors.New("attachment not found")
)

const createdAtMetaKey = "Created-At"

// AttachmentInfo is the metadata the object store reports per blob.
type AttachmentInfo struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type"`
	Length      int64     `json:"length"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}

// AttachmentStore keeps one bucket per note (the note's container),
// named after the note id. Blobs inside are keyed by attachment id.
type AttachmentStore struct {
	client         *minio.Client
	maxAttachments int
}

func NewAttachmentStore(cfg config.Config) (*AttachmentStore, error) {
	// Use insecure for local (no HTTPS)
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: false,
		},
	)
	if err != nil {
		return nil, err
	}
	return &AttachmentStore{client: client, maxAttachments: cfg.MaxAttachments}, nil
}

// containerName derives the bucket name for a note. A lowercase uuid
// is already a valid bucket name; the prefix keeps the namespace ours.
func containerName(noteID uuid.UUID) string {
	return "note-" + noteID.String()
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == 404
}

// EnsureContainer creates the note's container if it does not exist.
func (s *AttachmentStore) EnsureContainer(ctx context.Context, noteID uuid.UUID) error {
	bucket := containerName(noteID)
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	err = s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
	if err != nil {
		// two concurrent ensures can race on creation
		resp := minio.ToErrorResponse(err)
		if resp.Code == "BucketAlreadyOwnedByYou" || resp.Code == "BucketAlreadyExists" {
			return nil
		}
		return err
	}
	return nil
}

func (s *AttachmentStore) ContainerExists(ctx context.Context, noteID uuid.UUID) (bool, error) {
	return s.client.BucketExists(ctx, containerName(noteID))
}

// CountAttachments enumerates the container. The enumeration stops as
// soon as limit is reached, which is enough for quota checks; pass 0
// for an exact count.
func (s *AttachmentStore) CountAttachments(ctx context.Context, noteID uuid.UUID, limit int) (int, error) {
	bucket := containerName(noteID)
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}
	// cancel tells ListObjects to stop producing once we bail early
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	count := 0
	for obj := range s.client.ListObjects(listCtx, bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return 0, obj.Err
		}
		count++
		if limit > 0 && count >= limit {
			break
		}
	}
	return count, nil
}

func (s *AttachmentStore) BlobExists(ctx context.Context, noteID uuid.UUID, attachmentID string) (bool, error) {
	_, err := s.client.StatObject(ctx, containerName(noteID), attachmentID, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Upload writes the blob, overwriting any previous version. Returns
// true when the blob is new. The quota is checked before any byte of
// the stream is read; an overwrite does not consume quota. The
// original creation instant is kept in user metadata so it survives
// overwrites.
func (s *AttachmentStore) Upload(ctx context.Context, noteID uuid.UUID, attachmentID string, body io.Reader, size int64, contentType string) (bool, error) {
	bucket := containerName(noteID)

	stat, err := s.client.StatObject(ctx, bucket, attachmentID, minio.StatObjectOptions{})
	exists := err == nil
	if err != nil && !isNotFound(err) {
		return false, err
	}

	if !exists {
		count, err := s.CountAttachments(ctx, noteID, s.maxAttachments)
		if err != nil {
			return false, err
		}
		if count >= s.maxAttachments {
			return false, ErrQuotaExceeded
		}
	}

	createdAt := time.Now().UTC().Format(time.RFC3339)
	if exists {
		if prior := stat.UserMetadata[createdAtMetaKey]; prior != "" {
			createdAt = prior
		}
	}

	_, err = s.client.PutObject(ctx, bucket, attachmentID, body, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{createdAtMetaKey: createdAt},
	})
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// Delete is idempotent: removing an absent blob reports found=false
// and no error.
func (s *AttachmentStore) Delete(ctx context.Context, noteID uuid.UUID, attachmentID string) (bool, error) {
	exists, err := s.BlobExists(ctx, noteID, attachmentID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	err = s.client.RemoveObject(ctx, containerName(noteID), attachmentID, minio.RemoveObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Download returns the blob stream and its content type. The caller
// owns the stream and must close it.
func (s *AttachmentStore) Download(ctx context.Context, noteID uuid.UUID, attachmentID string) (io.ReadCloser, string, error) {
	bucket := containerName(noteID)
	obj, err := s.client.GetObject(ctx, bucket, attachmentID, minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrBlobNotFound
		}
		return nil, "", err
	}
	// GetObject is lazy; Stat forces the request and surfaces a miss.
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		if isNotFound(err) {
			return nil, "", ErrBlobNotFound
		}
		return nil, "", err
	}
	return obj, stat.ContentType, nil
}

func (s *AttachmentStore) ListAttachments(ctx context.Context, noteID uuid.UUID) ([]AttachmentInfo, error) {
	bucket := containerName(noteID)
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	infos := []AttachmentInfo{}
	if !exists {
		return infos, nil
	}
	for obj := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		stat, err := s.client.StatObject(ctx, bucket, obj.Key, minio.StatObjectOptions{})
		if err != nil {
			if isNotFound(err) {
				// deleted between list and stat
				continue
			}
			return nil, err
		}
		createdAt := stat.LastModified
		if raw := stat.UserMetadata[createdAtMetaKey]; raw != "" {
			if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
				createdAt = parsed
			}
		}
		infos = append(infos, AttachmentInfo{
			ID:          obj.Key,
			ContentType: stat.ContentType,
			Length:      stat.Size,
			CreatedAt:   createdAt,
			ModifiedAt:  stat.LastModified,
		})
	}
	return infos, nil
}

// PurgeContainer removes every blob and then the container itself.
// Best-effort: a failing blob is logged and skipped, the loop keeps
// going, and leftovers stay behind for a later retry.
func (s *AttachmentStore) PurgeContainer(ctx context.Context, noteID uuid.UUID) error {
	bucket := containerName(noteID)
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	for obj := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			logging.ErrorLogger.Error("purge: listing container failed",
				zap.String("container", bucket), zap.Error(obj.Err))
			break
		}
		if err := s.client.RemoveObject(ctx, bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			logging.ErrorLogger.Error("purge: removing blob failed",
				zap.String("container", bucket), zap.String("blob", obj.Key), zap.Error(err))
		}
	}
	if err := s.client.RemoveBucket(ctx, bucket); err != nil && !isNotFound(err) {
		logging.ErrorLogger.Error("purge: removing container failed",
			zap.String("container", bucket), zap.Error(err))
	}
	return nil
}
