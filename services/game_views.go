package services

import (
	"sort"
	"strings"
	"time"

	"github.com/Regan831/five-crowns-scoreboard/models"

	"gorm.io/gorm"
)

// Read models consumed by the presentation layer. Everything derived
// (totals, leaderboard, completion eligibility) is recomputed from the
// stored rounds on every read.

type GameDetail struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Status          string             `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	CompletedAt     *time.Time         `json:"completed_at"`
	Players         []SeatView         `json:"players"`
	Rounds          []RoundView        `json:"rounds"`
	Leaderboard     []LeaderboardEntry `json:"leaderboard"`
	AllRoundsScored bool               `json:"all_rounds_scored"`
}

type SeatView struct {
	PlayerID   string `json:"player_id"`
	Name       string `json:"name"`
	Seat       int    `json:"seat"`
	WentOuts   int    `json:"went_outs"`
	FinalTotal *int   `json:"final_total"`
	IsWinner   bool   `json:"is_winner"`
}

type RoundView struct {
	ID              string      `json:"id"`
	RoundNumber     int         `json:"round_number"`
	WentOutPlayerID *string     `json:"went_out_player_id"`
	Scores          []ScoreView `json:"scores"`
}

type ScoreView struct {
	PlayerID string `json:"player_id"`
	Score    int    `json:"score"`
	WentOut  bool   `json:"went_out"`
}

type LeaderboardEntry struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Total    int    `json:"total"`
	IsWinner bool   `json:"is_winner"`
}

// GetGame loads one game with its seats in order, all eleven rounds,
// and the computed leaderboard. Returns gorm.ErrRecordNotFound when
// the id is unknown.
func (s *GameService) GetGame(gameID string) (*GameDetail, error) {
	var game models.Game
	err := s.db.Where("id = ?", gameID).
		Preload("Players", func(db *gorm.DB) *gorm.DB {
			return db.Order("seat")
		}).
		Preload("Players.Player").
		Preload("Rounds", func(db *gorm.DB) *gorm.DB {
			return db.Order("round_number")
		}).
		Preload("Rounds.Scores").
		First(&game).Error
	if err != nil {
		return nil, err
	}

	totals := map[string]int{}
	for _, round := range game.Rounds {
		for _, score := range round.Scores {
			totals[score.PlayerID] += score.Score
		}
	}

	detail := &GameDetail{
		ID:              game.ID,
		Title:           game.Title,
		Status:          game.Status,
		CreatedAt:       game.CreatedAt,
		CompletedAt:     game.CompletedAt,
		Players:         make([]SeatView, 0, len(game.Players)),
		Rounds:          make([]RoundView, 0, len(game.Rounds)),
		Leaderboard:     make([]LeaderboardEntry, 0, len(game.Players)),
		AllRoundsScored: len(game.Rounds) > 0,
	}

	for _, seat := range game.Players {
		detail.Players = append(detail.Players, SeatView{
			PlayerID:   seat.PlayerID,
			Name:       seat.Player.Name,
			Seat:       seat.Seat,
			WentOuts:   seat.WentOuts,
			FinalTotal: seat.FinalTotal,
			IsWinner:   seat.IsWinner,
		})
		detail.Leaderboard = append(detail.Leaderboard, LeaderboardEntry{
			PlayerID: seat.PlayerID,
			Name:     seat.Player.Name,
			Total:    totals[seat.PlayerID],
			IsWinner: seat.IsWinner,
		})
	}

	for _, round := range game.Rounds {
		view := RoundView{
			ID:              round.ID,
			RoundNumber:     round.RoundNumber,
			WentOutPlayerID: round.WentOutPlayerID,
			Scores:          make([]ScoreView, 0, len(round.Scores)),
		}
		for _, score := range round.Scores {
			view.Scores = append(view.Scores, ScoreView{
				PlayerID: score.PlayerID,
				Score:    score.Score,
				WentOut:  score.WentOut,
			})
		}
		detail.Rounds = append(detail.Rounds, view)

		if len(round.Scores) != len(game.Players) {
			detail.AllRoundsScored = false
		}
	}

	// Ascending totals, seat order breaking ties.
	sort.SliceStable(detail.Leaderboard, func(i, j int) bool {
		return detail.Leaderboard[i].Total < detail.Leaderboard[j].Total
	})

	return detail, nil
}

type GameSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Players     []string   `json:"players"`
	Winners     []string   `json:"winners"`
}

// ListGames returns the archive, newest first. Any status other than
// IN_PROGRESS filters to completed games.
func (s *GameService) ListGames(status string) ([]GameSummary, error) {
	filter := models.StatusCompleted
	if strings.ToUpper(status) == models.StatusInProgress {
		filter = models.StatusInProgress
	}

	var games []models.Game
	err := s.db.Where("status = ?", filter).
		Preload("Players", func(db *gorm.DB) *gorm.DB {
			return db.Order("seat")
		}).
		Preload("Players.Player").
		Order("created_at DESC").
		Find(&games).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]GameSummary, 0, len(games))
	for _, game := range games {
		summary := GameSummary{
			ID:          game.ID,
			Title:       game.Title,
			Status:      game.Status,
			CreatedAt:   game.CreatedAt,
			CompletedAt: game.CompletedAt,
			Players:     []string{},
			Winners:     []string{},
		}
		for _, seat := range game.Players {
			summary.Players = append(summary.Players, seat.Player.Name)
			if seat.IsWinner {
				summary.Winners = append(summary.Winners, seat.Player.Name)
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
