package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaxSummaryLen = 60
	MaxDetailsLen = 1024
)

type Note struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Summary    string     `json:"summary" gorm:"type:varchar(60);not null"`
	Details    string     `json:"details" gorm:"type:varchar(1024);not null"`
	CreatedAt  time.Time  `json:"created_at" gorm:"not null"`
	ModifiedAt *time.Time `json:"modified_at"`
	Tags       []Tag      `json:"tags" gorm:"foreignKey:NoteID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Note) TableName() string {
	return "notes"
}

// TagNames returns the tag names in stored order.
func (n *Note) TagNames() []string {
	names := make([]string, 0, len(n.Tags))
	for _, t := range n.Tags {
		names = append(names, t.Name)
	}
	return names
}
