package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Player is a global identity shared across games. The slug is the
// upsert key: any name that normalizes to the same slug resolves to
// the same player.
type Player struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"not null"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;not null;size:48"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	GamePlayers []GamePlayer `json:"-" gorm:"foreignKey:PlayerID"`
	RoundScores []RoundScore `json:"-" gorm:"foreignKey:PlayerID"`
}

func (p *Player) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
