package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/eddielee6/ReactionMatch/internal/config"
	"github.com/eddielee6/ReactionMatch/internal/core"
	"github.com/eddielee6/ReactionMatch/internal/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// backends runs a test against both implementations.
func backends(t *testing.T, fn func(t *testing.T, b Backend)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, openTestStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestRecordAndTopScores(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		for _, score := range []int64{100, 50, 200} {
			if err := b.RecordScore(ctx, "classic", score); err != nil {
				t.Fatalf("RecordScore() failed: %v", err)
			}
		}
		if err := b.RecordScore(ctx, "v2", 500); err != nil {
			t.Fatalf("RecordScore() failed: %v", err)
		}

		scores, err := b.TopScores(ctx, "classic", 10)
		if err != nil {
			t.Fatalf("TopScores() failed: %v", err)
		}
		if len(scores) != 3 {
			t.Fatalf("Expected 3 scores, got %d", len(scores))
		}
		if scores[0].Score != 200 || scores[1].Score != 100 || scores[2].Score != 50 {
			t.Errorf("Scores not highest first: %v", scores)
		}

		v2, _ := b.TopScores(ctx, "v2", 10)
		if len(v2) != 1 {
			t.Errorf("Expected 1 v2 score, got %d", len(v2))
		}
	})
}

func TestTopScoresLimit(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		for i := 0; i < 15; i++ {
			b.RecordScore(ctx, "classic", int64((i+1)*10)) //nolint:errcheck
		}

		scores, err := b.TopScores(ctx, "classic", 3)
		if err != nil {
			t.Fatalf("TopScores() failed: %v", err)
		}
		if len(scores) != 3 || scores[0].Score != 150 || scores[2].Score != 130 {
			t.Errorf("TopScores(3) = %v", scores)
		}

		scores, _ = b.TopScores(ctx, "classic", 0)
		if len(scores) != DefaultTopLimit {
			t.Errorf("TopScores(0) returned %d, expected default %d", len(scores), DefaultTopLimit)
		}
	})
}

func TestHighScore(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()

		high, err := b.HighScore(ctx, "classic")
		if err != nil {
			t.Fatalf("HighScore() failed: %v", err)
		}
		if high != 0 {
			t.Errorf("Expected high score of 0 for empty game, got %d", high)
		}

		for _, score := range []int64{100, 300, 200} {
			b.RecordScore(ctx, "classic", score) //nolint:errcheck
		}

		high, _ = b.HighScore(ctx, "classic")
		if high != 300 {
			t.Errorf("Expected high score of 300, got %d", high)
		}
	})
}

func TestRecordResultKeepsDetails(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		res := engine.Result{
			SessionID:    "abc-123",
			GameType:     "v2",
			Score:        42,
			LevelsPlayed: 7,
			Reason:       engine.ReasonTimesUp,
			EndedAt:      time.Now(),
		}
		if err := b.RecordResult(ctx, res); err != nil {
			t.Fatalf("RecordResult() failed: %v", err)
		}

		scores, _ := b.TopScores(ctx, "v2", 1)
		if len(scores) != 1 {
			t.Fatalf("expected 1 score, got %d", len(scores))
		}
		got := scores[0]
		if got.SessionID != "abc-123" || got.LevelsPlayed != 7 || got.Reason != engine.ReasonTimesUp || got.Score != 42 {
			t.Errorf("stored entry = %+v", got)
		}
	})
}

func TestClearScores(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		b.RecordScore(ctx, "classic", 100) //nolint:errcheck
		b.RecordScore(ctx, "classic", 200) //nolint:errcheck
		b.RecordScore(ctx, "v2", 300)      //nolint:errcheck

		if err := b.ClearScores(ctx, "classic"); err != nil {
			t.Fatalf("ClearScores() failed: %v", err)
		}

		classic, _ := b.TopScores(ctx, "classic", 10)
		if len(classic) != 0 {
			t.Errorf("Expected 0 classic scores after clear, got %d", len(classic))
		}
		v2, _ := b.TopScores(ctx, "v2", 10)
		if len(v2) != 1 {
			t.Errorf("v2 scores should not be affected by clearing classic")
		}
	})
}

func TestGameStats(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		for i, score := range []int64{10, 30, 20} {
			b.RecordResult(ctx, engine.Result{GameType: "classic", Score: score, LevelsPlayed: i + 2}) //nolint:errcheck
		}
		b.RecordScore(ctx, "v2", 5) //nolint:errcheck

		stats, err := b.GameStats(ctx, "classic")
		if err != nil {
			t.Fatalf("GameStats() failed: %v", err)
		}
		if stats.GamesCount != 3 || stats.HighScore != 30 || stats.TotalScore != 60 || stats.AvgScore != 20 || stats.MostLevels != 4 {
			t.Errorf("GameStats = %+v", stats)
		}

		empty, err := b.GameStats(ctx, "nothing")
		if err != nil || empty.GamesCount != 0 {
			t.Errorf("GameStats(empty) = %+v, %v", empty, err)
		}

		all, err := b.AllGameStats(ctx)
		if err != nil {
			t.Fatalf("AllGameStats() failed: %v", err)
		}
		if len(all) != 2 || all["v2"].HighScore != 5 || all["classic"].GamesCount != 3 {
			t.Errorf("AllGameStats = %v", all)
		}
	})
}

func TestSavedSessions(t *testing.T) {
	backends(t, func(t *testing.T, b Backend) {
		ctx := context.Background()

		if _, err := b.LoadSession(ctx, "classic"); !errors.Is(err, ErrNoSession) {
			t.Errorf("LoadSession(empty) = %v, expected ErrNoSession", err)
		}

		sess := engine.NewSession("classic")
		sess.LevelsPlayed = 4
		sess.Score = 31
		sess.HasStartedFirstMove = true
		if err := b.SaveSession(ctx, sess); err != nil {
			t.Fatalf("SaveSession() failed: %v", err)
		}

		sess.LevelsPlayed = 5
		if err := b.SaveSession(ctx, sess); err != nil {
			t.Fatalf("SaveSession() overwrite failed: %v", err)
		}

		got, err := b.LoadSession(ctx, "classic")
		if err != nil {
			t.Fatalf("LoadSession() failed: %v", err)
		}
		if got != sess {
			t.Errorf("LoadSession = %+v, expected %+v", got, sess)
		}

		if err := b.DeleteSession(ctx, "classic"); err != nil {
			t.Fatalf("DeleteSession() failed: %v", err)
		}
		if _, err := b.LoadSession(ctx, "classic"); !errors.Is(err, ErrNoSession) {
			t.Errorf("LoadSession after delete = %v, expected ErrNoSession", err)
		}
	})
}

func TestEngineRecordsIntoStore(t *testing.T) {
	store := openTestStore(t)

	e, err := engine.New(engine.Config{
		Settings: config.DefaultClassicSettings(),
		GameType: config.PresetClassic,
		Random:   core.NewSeededRandom(3),
		Store:    store,
	})
	if err != nil {
		t.Fatal(err)
	}

	e.NewGame()
	e.BeginLevel()
	e.FirstMove()
	winner, _ := e.Level().Winner()
	e.Move(winner.Position)
	e.EndMove()
	e.BeginLevel()
	e.Tick(5 * time.Second)
	e.Close()

	scores, err := store.TopScores(context.Background(), config.PresetClassic, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected exactly one recorded game, got %d", len(scores))
	}
	if scores[0].Score != 10 || scores[0].LevelsPlayed != 1 || scores[0].Reason != engine.ReasonTimesUp {
		t.Errorf("recorded entry = %+v", scores[0])
	}
	if scores[0].SessionID != e.Session().ID.String() {
		t.Errorf("session id = %q, expected %q", scores[0].SessionID, e.Session().ID)
	}
}

func TestOpenOrMemoryFallsBack(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	// A regular file where a directory should be makes Open fail
	b := OpenOrMemory(filepath.Join(blocker, "scores.db"), log.New(os.Stderr))
	defer b.Close()
	if _, ok := b.(*Memory); !ok {
		t.Errorf("OpenOrMemory returned %T, expected *Memory", b)
	}

	b2 := OpenOrMemory(filepath.Join(dir, "ok.db"), log.New(os.Stderr))
	defer b2.Close()
	if _, ok := b2.(*Store); !ok {
		t.Errorf("OpenOrMemory returned %T, expected *Store", b2)
	}
}
