package services

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Regan831/five-crowns-scoreboard/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	minPlayers = 2
	maxPlayers = 7
	numRounds  = 11
)

// roundNumbers returns the fixed deal sizes of a game, 3 through 13.
func roundNumbers() []int {
	numbers := make([]int, numRounds)
	for i := range numbers {
		numbers[i] = i + 3
	}
	return numbers
}

type GameService struct {
	db *gorm.DB
}

func NewGameService(db *gorm.DB) *GameService {
	return &GameService{db: db}
}

type CreatedGame struct {
	GameID    string `json:"game_id"`
	SecretKey string `json:"secret_key"`
}

// CreateGame upserts one Player per unique name and creates the game
// with seats in submission order plus its eleven empty rounds, all in
// one transaction.
func (s *GameService) CreateGame(freeText string, existing []string) (*CreatedGame, error) {
	names := uniqueNames(freeText, existing)
	if len(names) < minPlayers || len(names) > maxPlayers {
		return nil, &ValidationError{Message: "pick between 2 and 7 players for a game"}
	}

	secretKey := randomHex(12)

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if tx.Error != nil {
		return nil, tx.Error
	}

	playerIDs := make([]string, 0, len(names))
	for _, name := range names {
		slug := slugify(name)

		var player models.Player
		err := tx.Where("slug = ?", slug).First(&player).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			player = models.Player{Name: name, Slug: slug}
			if err := tx.Create(&player).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		case err != nil:
			tx.Rollback()
			return nil, err
		default:
			// Canonical casing drifts to the most recent submission.
			if player.Name != name {
				if err := tx.Model(&player).Update("name", name).Error; err != nil {
					tx.Rollback()
					return nil, err
				}
			}
		}

		playerIDs = append(playerIDs, player.ID)
	}

	game := models.Game{
		SecretKey: secretKey,
		Status:    models.StatusInProgress,
	}
	if err := tx.Create(&game).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for seat, playerID := range playerIDs {
		seating := models.GamePlayer{
			GameID:   game.ID,
			PlayerID: playerID,
			Seat:     seat,
		}
		if err := tx.Create(&seating).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	for _, number := range roundNumbers() {
		round := models.Round{
			GameID:      game.ID,
			RoundNumber: number,
		}
		if err := tx.Create(&round).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &CreatedGame{GameID: game.ID, SecretKey: secretKey}, nil
}

// authorize compares the provided key against the game's stored key.
// A missing game and a wrong key return the same error so game IDs
// cannot be enumerated.
func (s *GameService) authorize(gameID, providedKey string) error {
	var game models.Game
	err := s.db.Select("secret_key").Where("id = ?", gameID).First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errInvalidKey()
		}
		return err
	}
	if game.SecretKey != providedKey {
		return errInvalidKey()
	}
	return nil
}

// coerceScore turns raw form text into a score. Anything that does
// not parse as a finite number becomes 0; fractions truncate.
func coerceScore(raw string) int {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return int(value)
}

// SaveRoundScores upserts one score row per submitted player, records
// who went out, and recomputes every seat's went-out tally from
// scratch inside one transaction. The wholesale recompute makes
// re-saves self-correcting when the went-out player changes.
func (s *GameService) SaveRoundScores(gameID, roundID, providedKey, wentOutPlayerID string, scores map[string]string) error {
	if gameID == "" || roundID == "" {
		return &ValidationError{Message: "missing game or round information"}
	}
	if err := s.authorize(gameID, providedKey); err != nil {
		return err
	}

	wentOutPlayerID = strings.TrimSpace(wentOutPlayerID)
	var wentOut *string
	if wentOutPlayerID != "" {
		wentOut = &wentOutPlayerID
	}

	playerIDs := make([]string, 0, len(scores))
	for playerID := range scores {
		playerIDs = append(playerIDs, playerID)
	}
	sort.Strings(playerIDs)

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if tx.Error != nil {
		return tx.Error
	}

	result := tx.Model(&models.Round{}).Where("id = ? AND game_id = ?", roundID, gameID).
		Update("went_out_player_id", wentOut)
	if result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return gorm.ErrRecordNotFound
	}

	for _, playerID := range playerIDs {
		score := models.RoundScore{
			RoundID:  roundID,
			PlayerID: playerID,
			GameID:   gameID,
			Score:    coerceScore(scores[playerID]),
			WentOut:  playerID == wentOutPlayerID,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "round_id"}, {Name: "player_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "went_out"}),
		}).Create(&score).Error
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := recomputeWentOuts(tx, gameID); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// recomputeWentOuts overwrites every seat's tally with a fresh count
// of the rounds naming that player. Never incremental: an edited
// round must zero out the previous player's contribution.
func recomputeWentOuts(tx *gorm.DB, gameID string) error {
	if err := tx.Model(&models.GamePlayer{}).Where("game_id = ?", gameID).
		Update("went_outs", 0).Error; err != nil {
		return err
	}

	var counts []struct {
		WentOutPlayerID string
		Total           int
	}
	err := tx.Model(&models.Round{}).
		Select("went_out_player_id, COUNT(*) AS total").
		Where("game_id = ? AND went_out_player_id IS NOT NULL", gameID).
		Group("went_out_player_id").
		Scan(&counts).Error
	if err != nil {
		return err
	}

	for _, count := range counts {
		err := tx.Model(&models.GamePlayer{}).
			Where("game_id = ? AND player_id = ?", gameID, count.WentOutPlayerID).
			Update("went_outs", count.Total).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// CompleteGame sums each player's scores, marks everyone tied at the
// minimum total as a winner (lower is better), and flips the game to
// COMPLETED. Safe to call again: winners are re-resolved wholesale.
func (s *GameService) CompleteGame(gameID, providedKey string) error {
	if gameID == "" {
		return &ValidationError{Message: "missing game information"}
	}
	if err := s.authorize(gameID, providedKey); err != nil {
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Model(&models.GamePlayer{}).Where("game_id = ?", gameID).
		Update("is_winner", false).Error; err != nil {
		tx.Rollback()
		return err
	}

	var totals []struct {
		PlayerID string
		Total    int
	}
	err := tx.Model(&models.RoundScore{}).
		Select("player_id, SUM(score) AS total").
		Where("game_id = ?", gameID).
		Group("player_id").
		Scan(&totals).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	if len(totals) > 0 {
		lowest := totals[0].Total
		for _, entry := range totals[1:] {
			if entry.Total < lowest {
				lowest = entry.Total
			}
		}

		for _, entry := range totals {
			err := tx.Model(&models.GamePlayer{}).
				Where("game_id = ? AND player_id = ?", gameID, entry.PlayerID).
				Updates(map[string]interface{}{
					"final_total": entry.Total,
					"is_winner":   entry.Total == lowest,
				}).Error
			if err != nil {
				tx.Rollback()
				return err
			}
		}
	}

	now := time.Now()
	err = tx.Model(&models.Game{}).Where("id = ?", gameID).
		Updates(map[string]interface{}{
			"status":       models.StatusCompleted,
			"completed_at": now,
		}).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// CheckKey reports whether the provided key grants write access.
func (s *GameService) CheckKey(gameID, providedKey string) bool {
	return s.authorize(gameID, providedKey) == nil
}
