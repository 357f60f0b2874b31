package models

// GamePlayer seats a player in a game. WentOuts, FinalTotal and
// IsWinner are derived columns, overwritten wholesale whenever their
// source rounds change.
type GamePlayer struct {
	GameID     string `json:"game_id" gorm:"primaryKey;size:36;uniqueIndex:idx_game_seat"`
	PlayerID   string `json:"player_id" gorm:"primaryKey;size:36"`
	Seat       int    `json:"seat" gorm:"not null;uniqueIndex:idx_game_seat"`
	WentOuts   int    `json:"went_outs" gorm:"not null;default:0"`
	FinalTotal *int   `json:"final_total"`
	IsWinner   bool   `json:"is_winner" gorm:"not null;default:false"`

	// Relationships
	Game   Game   `json:"-" gorm:"foreignKey:GameID"`
	Player Player `json:"player,omitempty" gorm:"foreignKey:PlayerID"`
}
