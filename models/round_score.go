package models

// RoundScore exists only for (round, player) pairs where a score was
// actually submitted; a round with fewer score rows than players is
// incomplete.
type RoundScore struct {
	RoundID  string `json:"round_id" gorm:"primaryKey;size:36"`
	PlayerID string `json:"player_id" gorm:"primaryKey;size:36"`
	GameID   string `json:"game_id" gorm:"not null;index"`
	Score    int    `json:"score" gorm:"not null;default:0"`
	WentOut  bool   `json:"went_out" gorm:"not null;default:false"`

	// Relationships
	Round  Round  `json:"-" gorm:"foreignKey:RoundID"`
	Player Player `json:"player,omitempty" gorm:"foreignKey:PlayerID"`
}
