package services

import (
	"math"

	"github.com/Regan831/five-crowns-scoreboard/models"

	"gorm.io/gorm"
)

type PlayerService struct {
	db *gorm.DB
}

func NewPlayerService(db *gorm.DB) *PlayerService {
	return &PlayerService{db: db}
}

// ListPlayers returns every known player, name-ordered, for the
// new-game picker.
func (s *PlayerService) ListPlayers() ([]models.Player, error) {
	var players []models.Player
	err := s.db.Order("name").Find(&players).Error
	return players, err
}

type PlayerStatsRow struct {
	PlayerID     string `json:"player_id"`
	Name         string `json:"name"`
	Games        int    `json:"games"`
	Wins         int    `json:"wins"`
	WinRate      int    `json:"win_rate"`
	AvgScore     *int   `json:"avg_score"`
	HighScore    *int   `json:"high_score"`
	LowScore     *int   `json:"low_score"`
	HighestRound *int   `json:"highest_round"`
}

// PlayerStats aggregates per-player results. Games played, wins, win
// rate and final-total stats count completed games only; the highest
// single-round score covers every round ever recorded.
func (s *PlayerService) PlayerStats() ([]PlayerStatsRow, error) {
	var players []models.Player
	err := s.db.Order("name").
		Preload("GamePlayers.Game").
		Preload("RoundScores").
		Find(&players).Error
	if err != nil {
		return nil, err
	}

	rows := make([]PlayerStatsRow, 0, len(players))
	for _, player := range players {
		row := PlayerStatsRow{PlayerID: player.ID, Name: player.Name}

		finals := []int{}
		for _, seat := range player.GamePlayers {
			if seat.Game.Status != models.StatusCompleted {
				continue
			}
			row.Games++
			if seat.IsWinner {
				row.Wins++
			}
			if seat.FinalTotal != nil {
				finals = append(finals, *seat.FinalTotal)
			}
		}

		if row.Games > 0 {
			row.WinRate = int(math.Round(float64(row.Wins) / float64(row.Games) * 100))
		}

		if len(finals) > 0 {
			sum, high, low := 0, finals[0], finals[0]
			for _, total := range finals {
				sum += total
				if total > high {
					high = total
				}
				if total < low {
					low = total
				}
			}
			avg := int(math.Round(float64(sum) / float64(len(finals))))
			row.AvgScore = &avg
			row.HighScore = &high
			row.LowScore = &low
		}

		if len(player.RoundScores) > 0 {
			highest := player.RoundScores[0].Score
			for _, score := range player.RoundScores[1:] {
				if score.Score > highest {
					highest = score.Score
				}
			}
			row.HighestRound = &highest
		}

		rows = append(rows, row)
	}
	return rows, nil
}
