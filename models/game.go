package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// Game holds one scoresheet. The secret key is the only write
// credential and is never serialized.
type Game struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	Title       string     `json:"title"`
	SecretKey   string     `json:"-" gorm:"not null"`
	Status      string     `json:"status" gorm:"not null;default:'IN_PROGRESS'"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`

	// Relationships
	Players []GamePlayer `json:"players,omitempty" gorm:"foreignKey:GameID"`
	Rounds  []Round      `json:"rounds,omitempty" gorm:"foreignKey:GameID"`
}

func (g *Game) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
