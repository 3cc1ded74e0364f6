package controllers

import (
	"bytes"
	"context"
	"io"
	"notamind/notamind/sources/psql/models"
	"notamind/notamind/sources/storage"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// In-memory stand-ins for the two stores and the generator, shaped
// after the real implementations so the coordinators can be exercised
// without postgres, minio or a completion service.

type fakeRecordStore struct {
	notes map[uuid.UUID]*models.Note
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{notes: map[uuid.UUID]*models.Note{}}
}

func (f *fakeRecordStore) CountNotes(ctx context.Context) (int64, error) {
	return int64(len(f.notes)), nil
}

func (f *fakeRecordStore) CreateNote(ctx context.Context, summary, details string, tagNames []string) (*models.Note, error) {
	note := &models.Note{
		ID:        uuid.New(),
		Summary:   summary,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	for _, name := range tagNames {
		note.Tags = append(note.Tags, models.Tag{
			ID:     uuid.New(),
			NoteID: note.ID,
			Name:   models.TruncateTagName(name),
		})
	}
	f.notes[note.ID] = note
	return note, nil
}

func (f *fakeRecordStore) GetNote(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	return f.notes[id], nil
}

func (f *fakeRecordStore) ListNotes(ctx context.Context, tagFilter string) ([]models.Note, error) {
	filter := strings.TrimSpace(tagFilter)
	var out []models.Note
	for _, n := range f.notes {
		if filter == "" {
			out = append(out, *n)
			continue
		}
		for _, t := range n.Tags {
			if t.Name == filter {
				out = append(out, *n)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRecordStore) ListDistinctTagNames(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	for _, n := range f.notes {
		for _, t := range n.Tags {
			seen[t.Name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeRecordStore) UpdateNote(ctx context.Context, id uuid.UUID, summary, details *string, tagNames []string) (*models.Note, error) {
	note, ok := f.notes[id]
	if !ok {
		return nil, nil
	}
	now := time.Now().UTC()
	if summary != nil {
		note.Summary = *summary
	}
	if details != nil {
		note.Details = *details
		note.Tags = nil
		for _, name := range tagNames {
			note.Tags = append(note.Tags, models.Tag{
				ID:     uuid.New(),
				NoteID: id,
				Name:   models.TruncateTagName(name),
			})
		}
	}
	note.ModifiedAt = &now
	return note, nil
}

func (f *fakeRecordStore) DeleteNote(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := f.notes[id]; !ok {
		return false, nil
	}
	delete(f.notes, id)
	return true, nil
}

type fakeTagService struct {
	result []string
	calls  int
}

func (f *fakeTagService) Generate(ctx context.Context, text string) []string {
	f.calls++
	return f.result
}

type fakeBlob struct {
	data        []byte
	contentType string
	createdAt   time.Time
	modifiedAt  time.Time
}

type fakeContainerStore struct {
	containers  map[uuid.UUID]map[string]fakeBlob
	max         int
	purgeErr    error
	ensureCalls int
	purged      []uuid.UUID
}

func newFakeContainerStore(max int) *fakeContainerStore {
	return &fakeContainerStore{
		containers: map[uuid.UUID]map[string]fakeBlob{},
		max:        max,
	}
}

func (f *fakeContainerStore) EnsureContainer(ctx context.Context, noteID uuid.UUID) error {
	f.ensureCalls++
	if _, ok := f.containers[noteID]; !ok {
		f.containers[noteID] = map[string]fakeBlob{}
	}
	return nil
}

func (f *fakeContainerStore) ContainerExists(ctx context.Context, noteID uuid.UUID) (bool, error) {
	_, ok := f.containers[noteID]
	return ok, nil
}

func (f *fakeContainerStore) CountAttachments(ctx context.Context, noteID uuid.UUID, limit int) (int, error) {
	count := len(f.containers[noteID])
	if limit > 0 && count > limit {
		count = limit
	}
	return count, nil
}

func (f *fakeContainerStore) BlobExists(ctx context.Context, noteID uuid.UUID, attachmentID string) (bool, error) {
	_, ok := f.containers[noteID][attachmentID]
	return ok, nil
}

func (f *fakeContainerStore) Upload(ctx context.Context, noteID uuid.UUID, attachmentID string, body io.Reader, size int64, contentType string) (bool, error) {
	container := f.containers[noteID]
	if container == nil {
		container = map[string]fakeBlob{}
		f.containers[noteID] = container
	}
	prior, exists := container[attachmentID]
	if !exists && len(container) >= f.max {
		return false, storage.ErrQuotaExceeded
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return false, err
	}
	now := time.Now().UTC()
	blob := fakeBlob{data: data, contentType: contentType, createdAt: now, modifiedAt: now}
	if exists {
		blob.createdAt = prior.createdAt
	}
	container[attachmentID] = blob
	return !exists, nil
}

func (f *fakeContainerStore) Delete(ctx context.Context, noteID uuid.UUID, attachmentID string) (bool, error) {
	container := f.containers[noteID]
	if _, ok := container[attachmentID]; !ok {
		return false, nil
	}
	delete(container, attachmentID)
	return true, nil
}

func (f *fakeContainerStore) Download(ctx context.Context, noteID uuid.UUID, attachmentID string) (io.ReadCloser, string, error) {
	blob, ok := f.containers[noteID][attachmentID]
	if !ok {
		return nil, "", storage.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(blob.data)), blob.contentType, nil
}

func (f *fakeContainerStore) ListAttachments(ctx context.Context, noteID uuid.UUID) ([]storage.AttachmentInfo, error) {
	infos := []storage.AttachmentInfo{}
	for id, blob := range f.containers[noteID] {
		infos = append(infos, storage.AttachmentInfo{
			ID:          id,
			ContentType: blob.contentType,
			Length:      int64(len(blob.data)),
			CreatedAt:   blob.createdAt,
			ModifiedAt:  blob.modifiedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

func (f *fakeContainerStore) PurgeContainer(ctx context.Context, noteID uuid.UUID) error {
	f.purged = append(f.purged, noteID)
	if f.purgeErr != nil {
		return f.purgeErr
	}
	delete(f.containers, noteID)
	return nil
}
