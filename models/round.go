package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Round is one of the eleven fixed deals of a game. RoundNumber is
// the card count for the deal (3 through 13).
type Round struct {
	ID              string  `json:"id" gorm:"primaryKey;size:36"`
	GameID          string  `json:"game_id" gorm:"not null;index"`
	RoundNumber     int     `json:"round_number" gorm:"not null"`
	WentOutPlayerID *string `json:"went_out_player_id" gorm:"size:36"`

	// Relationships
	Game          Game         `json:"-" gorm:"foreignKey:GameID"`
	WentOutPlayer *Player      `json:"went_out_player,omitempty" gorm:"foreignKey:WentOutPlayerID"`
	Scores        []RoundScore `json:"scores,omitempty" gorm:"foreignKey:RoundID"`
}

func (r *Round) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
