package models

import (
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTagNameLen is the column width for tag names. Longer names are
// truncated on write, never rejected.
const MaxTagNameLen = 30

type Tag struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	NoteID uuid.UUID `json:"note_id" gorm:"type:uuid;not null;index"`
	Name   string    `json:"name" gorm:"type:varchar(30);not null"`
}

func (Tag) TableName() string {
	return "tags"
}

// TruncateTagName clips a tag name to MaxTagNameLen code points.
func TruncateTagName(name string) string {
	if utf8.RuneCountInString(name) <= MaxTagNameLen {
		return name
	}
	runes := []rune(name)
	return string(runes[:MaxTagNameLen])
}
