package dao

import (
	"context"
	"errors"
	"notamind/notamind/sources/psql/models"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteDAO struct {
	DB *gorm.DB
}

func NewNoteDAO(db *gorm.DB) *NoteDAO {
	return &NoteDAO{DB: db}
}

func (dao *NoteDAO) CountNotes(ctx context.Context) (int64, error) {
	var count int64
	err := dao.DB.WithContext(ctx).Model(&models.Note{}).Count(&count).Error
	return count, err
}

// CreateNote persists the note row and all its tag rows as one unit.
// Tag names are clipped to the column width, never rejected.
func (dao *NoteDAO) CreateNote(ctx context.Context, summary, details string, tagNames []string) (*models.Note, error) {
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
	if err := dao.DB.WithContext(ctx).Create(note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

func (dao *NoteDAO) GetNote(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	var note models.Note
	err := dao.DB.WithContext(ctx).Preload("Tags").First(&note, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// ListNotes returns all notes, or only those owning a tag whose name
// equals the trimmed filter, compared case-sensitively as stored.
func (dao *NoteDAO) ListNotes(ctx context.Context, tagFilter string) ([]models.Note, error) {
	q := dao.DB.WithContext(ctx).Preload("Tags").Order("created_at desc")
	if filter := strings.TrimSpace(tagFilter); filter != "" {
		q = q.Distinct("notes.*").
			Joins("JOIN tags ON tags.note_id = notes.id").
			Where("tags.name = ?", filter)
	}
	var notes []models.Note
	if err := q.Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (dao *NoteDAO) ListDistinctTagNames(ctx context.Context) ([]string, error) {
	var names []string
	err := dao.DB.WithContext(ctx).
		Model(&models.Tag{}).
		Distinct().
		Order("name asc").
		Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// UpdateNote applies the supplied fields and stamps ModifiedAt. When
// details changes the caller supplies the replacement tag set; the old
// tags are deleted and the new ones inserted inside the same
// transaction, so no reader observes a half-replaced set.
func (dao *NoteDAO) UpdateNote(ctx context.Context, id uuid.UUID, summary, details *string, tagNames []string) (*models.Note, error) {
	var note models.Note
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Tags").First(&note, "id = ?", id).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		updates := map[string]interface{}{"modified_at": now}
		if summary != nil {
			updates["summary"] = *summary
		}
		if details != nil {
			updates["details"] = *details
		}
		if err := tx.Model(&note).Updates(updates).Error; err != nil {
			return err
		}
		if summary != nil {
			note.Summary = *summary
		}
		if details != nil {
			note.Details = *details
		}
		note.ModifiedAt = &now

		if details != nil {
			if err := tx.Where("note_id = ?", id).Delete(&models.Tag{}).Error; err != nil {
				return err
			}
			replacement := make([]models.Tag, 0, len(tagNames))
			for _, name := range tagNames {
				replacement = append(replacement, models.Tag{
					ID:     uuid.New(),
					NoteID: id,
					Name:   models.TruncateTagName(name),
				})
			}
			if len(replacement) > 0 {
				if err := tx.Create(&replacement).Error; err != nil {
					return err
				}
			}
			note.Tags = replacement
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNote removes the note's tags and then the note row as one
// transaction. Returns false when no such note exists.
func (dao *NoteDAO) DeleteNote(ctx context.Context, id uuid.UUID) (bool, error) {
	found := false
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ?", id).Delete(&models.Tag{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Note{})
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}
