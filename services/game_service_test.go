package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Regan831/five-crowns-scoreboard/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	err = db.AutoMigrate(
		&models.Player{},
		&models.Game{},
		&models.GamePlayer{},
		&models.Round{},
		&models.RoundScore{},
	)
	if err != nil {
		t.Fatal(err)
	}

	return db
}

// newGame creates a game and returns its detail alongside the
// creation result, so tests have player and round IDs to work with.
func newGame(t *testing.T, svc *GameService, freeText string) (*CreatedGame, *GameDetail) {
	t.Helper()

	created, err := svc.CreateGame(freeText, nil)
	if err != nil {
		t.Fatal(err)
	}
	detail, err := svc.GetGame(created.GameID)
	if err != nil {
		t.Fatal(err)
	}
	return created, detail
}

func seatByName(t *testing.T, detail *GameDetail, name string) SeatView {
	t.Helper()
	for _, seat := range detail.Players {
		if seat.Name == name {
			return seat
		}
	}
	t.Fatalf("no seat for player %q", name)
	return SeatView{}
}

func TestCreateGamePlayerBounds(t *testing.T) {
	svc := NewGameService(setupDB(t))

	test := func(freeText string, wantErr bool) {
		t.Run(freeText, func(t *testing.T) {
			_, err := svc.CreateGame(freeText, nil)
			var validationErr *ValidationError
			if wantErr {
				if !errors.As(err, &validationErr) {
					t.Errorf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	test("solo", true)
	test("", true)
	test("a, b, c, d, e, f, g, h", true)
	test("a, b", false)
	test("a1, b1, c1, d1, e1, f1, g1", false)
	// Duplicates collapse before the bound check.
	test("dup, DUP", true)
}

func TestCreateGameRounds(t *testing.T) {
	db := setupDB(t)
	svc := NewGameService(db)

	created, detail := newGame(t, svc, "Alice, Bob")

	if len(detail.Rounds) != 11 {
		t.Fatalf("expected 11 rounds, got %d", len(detail.Rounds))
	}
	for i, round := range detail.Rounds {
		if round.RoundNumber != i+3 {
			t.Errorf("round %d: expected number %d, got %d", i, i+3, round.RoundNumber)
		}
		if len(round.Scores) != 0 {
			t.Errorf("round %d: expected no scores, got %d", i, len(round.Scores))
		}
	}

	var scoreCount int64
	db.Model(&models.RoundScore{}).Where("game_id = ?", created.GameID).Count(&scoreCount)
	if scoreCount != 0 {
		t.Errorf("expected 0 score rows, got %d", scoreCount)
	}

	for i, seat := range detail.Players {
		if seat.Seat != i {
			t.Errorf("expected seat %d, got %d", i, seat.Seat)
		}
	}
	if detail.Status != models.StatusInProgress {
		t.Errorf("expected IN_PROGRESS, got %s", detail.Status)
	}
}

func TestCreateGameMergesSlugs(t *testing.T) {
	db := setupDB(t)
	svc := NewGameService(db)

	newGame(t, svc, "Alice, Bob")
	newGame(t, svc, "  ALICE , Carol")

	var count int64
	db.Model(&models.Player{}).Count(&count)
	if count != 3 {
		t.Fatalf("expected 3 players after slug merge, got %d", count)
	}

	// Display name follows the most recent submission.
	var alice models.Player
	if err := db.Where("slug = ?", "alice").First(&alice).Error; err != nil {
		t.Fatal(err)
	}
	if alice.Name != "ALICE" {
		t.Errorf("expected name ALICE, got %q", alice.Name)
	}
}

func TestSaveRoundScoresWrongKey(t *testing.T) {
	db := setupDB(t)
	svc := NewGameService(db)

	created, detail := newGame(t, svc, "Alice, Bob")
	roundID := detail.Rounds[0].ID
	scores := map[string]string{detail.Players[0].PlayerID: "10"}

	var authErr *AuthorizationError

	err := svc.SaveRoundScores(created.GameID, roundID, "wrong-key", "", scores)
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}

	// A nonexistent game reads the same as a wrong key.
	missing := svc.SaveRoundScores("no-such-game", roundID, created.SecretKey, "", scores)
	if !errors.As(missing, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", missing)
	}
	if err.Error() != missing.Error() {
		t.Errorf("wrong-key and not-found errors should be indistinguishable: %q vs %q", err, missing)
	}

	var count int64
	db.Model(&models.RoundScore{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected save mutated %d score rows", count)
	}
}

func TestSaveRoundScoresMissingIDs(t *testing.T) {
	svc := NewGameService(setupDB(t))

	var validationErr *ValidationError
	if err := svc.SaveRoundScores("", "round", "key", "", nil); !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError for empty game id, got %v", err)
	}
	if err := svc.SaveRoundScores("game", "", "key", "", nil); !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError for empty round id, got %v", err)
	}
}

func TestSaveRoundScoresUpsert(t *testing.T) {
	svc := NewGameService(setupDB(t))

	created, detail := newGame(t, svc, "Alice, Bob")
	roundID := detail.Rounds[0].ID
	alice := seatByName(t, detail, "Alice").PlayerID
	bob := seatByName(t, detail, "Bob").PlayerID

	save := func(aliceScore, bobScore, wentOut string) {
		t.Helper()
		err := svc.SaveRoundScores(created.GameID, roundID, created.SecretKey, wentOut, map[string]string{
			alice: aliceScore,
			bob:   bobScore,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	save("12", "junk", alice)

	detail, err := svc.GetGame(created.GameID)
	if err != nil {
		t.Fatal(err)
	}
	round := detail.Rounds[0]
	if len(round.Scores) != 2 {
		t.Fatalf("expected 2 score rows, got %d", len(round.Scores))
	}
	for _, score := range round.Scores {
		switch score.PlayerID {
		case alice:
			if score.Score != 12 || !score.WentOut {
				t.Errorf("alice: got score=%d wentOut=%v", score.Score, score.WentOut)
			}
		case bob:
			// Unparseable input coerces to zero instead of failing.
			if score.Score != 0 || score.WentOut {
				t.Errorf("bob: got score=%d wentOut=%v", score.Score, score.WentOut)
			}
		}
	}

	// Re-saving overwrites in place rather than stacking rows.
	save("7", "20", bob)

	detail, err = svc.GetGame(created.GameID)
	if err != nil {
		t.Fatal(err)
	}
	round = detail.Rounds[0]
	if len(round.Scores) != 2 {
		t.Fatalf("expected 2 score rows after re-save, got %d", len(round.Scores))
	}
	for _, score := range round.Scores {
		switch score.PlayerID {
		case alice:
			if score.Score != 7 || score.WentOut {
				t.Errorf("alice after re-save: got score=%d wentOut=%v", score.Score, score.WentOut)
			}
		case bob:
			if score.Score != 20 || !score.WentOut {
				t.Errorf("bob after re-save: got score=%d wentOut=%v", score.Score, score.WentOut)
			}
		}
	}
	if round.WentOutPlayerID == nil || *round.WentOutPlayerID != bob {
		t.Errorf("round went-out player not updated")
	}
}

func TestWentOutTallyRecompute(t *testing.T) {
	svc := NewGameService(setupDB(t))

	created, detail := newGame(t, svc, "Alice, Bob")
	alice := seatByName(t, detail, "Alice").PlayerID
	bob := seatByName(t, detail, "Bob").PlayerID
	scores := map[string]string{alice: "5", bob: "9"}

	save := func(roundIdx int, wentOut string) {
		t.Helper()
		err := svc.SaveRoundScores(created.GameID, detail.Rounds[roundIdx].ID, created.SecretKey, wentOut, scores)
		if err != nil {
			t.Fatal(err)
		}
	}
	tallies := func() (int, int) {
		t.Helper()
		d, err := svc.GetGame(created.GameID)
		if err != nil {
			t.Fatal(err)
		}
		return seatByName(t, d, "Alice").WentOuts, seatByName(t, d, "Bob").WentOuts
	}

	save(0, alice)
	save(1, alice)
	save(2, bob)

	if a, b := tallies(); a != 2 || b != 1 {
		t.Fatalf("expected tallies 2/1, got %d/%d", a, b)
	}

	// Editing round 1's went-out player zeroes Alice's contribution
	// from that round and credits Bob: a recompute, not an increment.
	save(1, bob)

	if a, b := tallies(); a != 1 || b != 2 {
		t.Fatalf("expected tallies 1/2 after edit, got %d/%d", a, b)
	}

	// Clearing the went-out selection drops the round entirely.
	save(2, "")

	if a, b := tallies(); a != 1 || b != 1 {
		t.Fatalf("expected tallies 1/1 after clear, got %d/%d", a, b)
	}
}

func TestCompleteGameWinners(t *testing.T) {
	svc := NewGameService(setupDB(t))

	created, detail := newGame(t, svc, "Alice, Bob, Carol")
	alice := seatByName(t, detail, "Alice").PlayerID
	bob := seatByName(t, detail, "Bob").PlayerID
	carol := seatByName(t, detail, "Carol").PlayerID

	// Alice 10, Bob 10, Carol 15 across two rounds.
	rounds := []map[string]string{
		{alice: "4", bob: "6", carol: "5"},
		{alice: "6", bob: "4", carol: "10"},
	}
	for i, scores := range rounds {
		if err := svc.SaveRoundScores(created.GameID, detail.Rounds[i].ID, created.SecretKey, "", scores); err != nil {
			t.Fatal(err)
		}
	}

	if err := svc.CompleteGame(created.GameID, created.SecretKey); err != nil {
		t.Fatal(err)
	}

	detail, err := svc.GetGame(created.GameID)
	if err != nil {
		t.Fatal(err)
	}

	if detail.Status != models.StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", detail.Status)
	}
	if detail.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}

	expect := func(name string, total int, winner bool) {
		t.Helper()
		seat := seatByName(t, detail, name)
		if seat.FinalTotal == nil || *seat.FinalTotal != total {
			t.Errorf("%s: expected final total %d, got %v", name, total, seat.FinalTotal)
		}
		if seat.IsWinner != winner {
			t.Errorf("%s: expected winner=%v", name, winner)
		}
	}

	// Lower score wins and ties are preserved as co-winners.
	expect("Alice", 10, true)
	expect("Bob", 10, true)
	expect("Carol", 15, false)

	// Leaderboard sorts ascending.
	if detail.Leaderboard[len(detail.Leaderboard)-1].Name != "Carol" {
		t.Errorf("expected Carol last on the leaderboard")
	}
}

func TestCompleteGameNoScores(t *testing.T) {
	svc := NewGameService(setupDB(t))

	created, _ := newGame(t, svc, "Alice, Bob")

	if err := svc.CompleteGame(created.GameID, created.SecretKey); err != nil {
		t.Fatal(err)
	}

	detail, err := svc.GetGame(created.GameID)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Status != models.StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", detail.Status)
	}
	for _, seat := range detail.Players {
		if seat.IsWinner {
			t.Errorf("%s: no scored entries means no winner", seat.Name)
		}
		if seat.FinalTotal != nil {
			t.Errorf("%s: expected nil final total, got %d", seat.Name, *seat.FinalTotal)
		}
	}
}

func TestCompleteGameWrongKey(t *testing.T) {
	db := setupDB(t)
	svc := NewGameService(db)

	created, _ := newGame(t, svc, "Alice, Bob")

	var authErr *AuthorizationError
	if err := svc.CompleteGame(created.GameID, "bogus"); !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}

	var game models.Game
	if err := db.Where("id = ?", created.GameID).First(&game).Error; err != nil {
		t.Fatal(err)
	}
	if game.Status != models.StatusInProgress {
		t.Errorf("rejected completion changed status to %s", game.Status)
	}
}

func TestCompleteGameRerun(t *testing.T) {
	svc := NewGameService(setupDB(t))

	created, detail := newGame(t, svc, "Alice, Bob")
	alice := seatByName(t, detail, "Alice").PlayerID
	bob := seatByName(t, detail, "Bob").PlayerID

	save := func(scores map[string]string) {
		t.Helper()
		if err := svc.SaveRoundScores(created.GameID, detail.Rounds[0].ID, created.SecretKey, "", scores); err != nil {
			t.Fatal(err)
		}
	}

	save(map[string]string{alice: "3", bob: "8"})
	if err := svc.CompleteGame(created.GameID, created.SecretKey); err != nil {
		t.Fatal(err)
	}

	// Edit the round and re-complete: winners re-resolve wholesale.
	save(map[string]string{alice: "30", bob: "8"})
	if err := svc.CompleteGame(created.GameID, created.SecretKey); err != nil {
		t.Fatal(err)
	}

	detail, err := svc.GetGame(created.GameID)
	if err != nil {
		t.Fatal(err)
	}
	if seatByName(t, detail, "Alice").IsWinner {
		t.Error("Alice should no longer be the winner")
	}
	if !seatByName(t, detail, "Bob").IsWinner {
		t.Error("Bob should be the winner after re-completion")
	}
}

func TestAllRoundsScored(t *testing.T) {
	svc := NewGameService(setupDB(t))

	created, detail := newGame(t, svc, "Alice, Bob")
	alice := seatByName(t, detail, "Alice").PlayerID
	bob := seatByName(t, detail, "Bob").PlayerID

	if detail.AllRoundsScored {
		t.Fatal("fresh game should not be completion-eligible")
	}

	// Score every round for both players except the last.
	for i := 0; i < len(detail.Rounds)-1; i++ {
		err := svc.SaveRoundScores(created.GameID, detail.Rounds[i].ID, created.SecretKey, "", map[string]string{
			alice: fmt.Sprint(i), bob: fmt.Sprint(i + 1),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	detail, err := svc.GetGame(created.GameID)
	if err != nil {
		t.Fatal(err)
	}
	if detail.AllRoundsScored {
		t.Error("one unscored round should block eligibility")
	}

	// Scoring the last round for only one player is still incomplete.
	lastRound := detail.Rounds[len(detail.Rounds)-1].ID
	if err := svc.SaveRoundScores(created.GameID, lastRound, created.SecretKey, "", map[string]string{alice: "1"}); err != nil {
		t.Fatal(err)
	}
	detail, err = svc.GetGame(created.GameID)
	if err != nil {
		t.Fatal(err)
	}
	if detail.AllRoundsScored {
		t.Error("a round missing one player's score should block eligibility")
	}

	if err := svc.SaveRoundScores(created.GameID, lastRound, created.SecretKey, "", map[string]string{alice: "1", bob: "2"}); err != nil {
		t.Fatal(err)
	}
	detail, err = svc.GetGame(created.GameID)
	if err != nil {
		t.Fatal(err)
	}
	if !detail.AllRoundsScored {
		t.Error("every round scored for every player should be eligible")
	}
}

func TestCheckKey(t *testing.T) {
	svc := NewGameService(setupDB(t))

	created, _ := newGame(t, svc, "Alice, Bob")

	if !svc.CheckKey(created.GameID, created.SecretKey) {
		t.Error("expected the issued key to check out")
	}
	if svc.CheckKey(created.GameID, "nope") {
		t.Error("wrong key should not check out")
	}
	if svc.CheckKey("missing", created.SecretKey) {
		t.Error("missing game should not check out")
	}
}

func TestListGames(t *testing.T) {
	svc := NewGameService(setupDB(t))

	first, _ := newGame(t, svc, "Alice, Bob")
	second, _ := newGame(t, svc, "Carol, Dave")

	if err := svc.CompleteGame(first.GameID, first.SecretKey); err != nil {
		t.Fatal(err)
	}

	completed, err := svc.ListGames("")
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 1 || completed[0].ID != first.GameID {
		t.Errorf("expected only the completed game, got %v", completed)
	}

	inProgress, err := svc.ListGames("in_progress")
	if err != nil {
		t.Fatal(err)
	}
	if len(inProgress) != 1 || inProgress[0].ID != second.GameID {
		t.Errorf("expected only the in-progress game, got %v", inProgress)
	}
}

func TestGetGameUnknownID(t *testing.T) {
	svc := NewGameService(setupDB(t))

	if _, err := svc.GetGame("nope"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected record-not-found, got %v", err)
	}
}
