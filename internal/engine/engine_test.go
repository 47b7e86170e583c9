package engine

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/eddielee6/ReactionMatch/internal/config"
	"github.com/eddielee6/ReactionMatch/internal/core"
	"github.com/eddielee6/ReactionMatch/internal/puzzle"
)

type fakeStore struct {
	mu       sync.Mutex
	high     int64
	recorded []int64
	err      error
}

func (s *fakeStore) HighScore(ctx context.Context, gameType string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.high, s.err
}

func (s *fakeStore) RecordScore(ctx context.Context, gameType string, score int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.recorded = append(s.recorded, score)
	s.high = max(s.high, score)
	return nil
}

func (s *fakeStore) records() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.recorded...)
}

type resultStore struct {
	fakeStore
	results []Result
}

func (s *resultStore) RecordResult(ctx context.Context, res Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, res)
	return nil
}

func newTestEngine(t *testing.T, settings config.LevelSettings, store ScoreStore) *Engine {
	t.Helper()
	e, err := New(Config{
		Settings: settings,
		GameType: "classic",
		Random:   core.NewSeededRandom(42),
		Store:    store,
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

// startPlaying runs a new game up to the first Playing state.
func startPlaying(t *testing.T, e *Engine) {
	t.Helper()
	e.NewGame()
	e.BeginLevel()
	e.FirstMove()
	if e.State() != puzzle.StatePlaying {
		t.Fatalf("State() = %s, expected Playing", e.State())
	}
}

func moveOnto(e *Engine, target puzzle.Entity) {
	e.Move(target.Position.Sub(e.Level().Player.Position))
}

func distractor(t *testing.T, lvl puzzle.Level) puzzle.Entity {
	t.Helper()
	for _, target := range lvl.Targets {
		if !target.IsWinner {
			return target
		}
	}
	t.Fatal("level has no distractor")
	return puzzle.Entity{}
}

func findEvent[T Event](events []Event) (T, bool) {
	for _, ev := range events {
		if v, ok := ev.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	s := config.DefaultClassicSettings()
	s.MaxTargets = 1
	s.MinTargets = 3

	_, err := New(Config{Settings: s, GameType: "classic"})
	if !errors.Is(err, config.ErrInvalidSettings) {
		t.Errorf("New() error = %v, expected ErrInvalidSettings", err)
	}

	if _, err := New(Config{Settings: config.DefaultClassicSettings()}); err == nil {
		t.Error("New() without a game type should fail")
	}
}

func TestInputsIgnoredBeforeNewGame(t *testing.T) {
	e := newTestEngine(t, config.DefaultClassicSettings(), nil)

	for _, events := range [][]Event{
		e.BeginLevel(), e.FirstMove(), e.Move(core.Pt(10, 0)), e.EndMove(), e.Tick(time.Second),
	} {
		if len(events) != 0 {
			t.Errorf("input before NewGame produced %v", events)
		}
	}
	if e.Started() {
		t.Error("Started() should be false before NewGame")
	}
}

func TestNewGameStartsIdleAtLevelOne(t *testing.T) {
	e := newTestEngine(t, config.DefaultClassicSettings(), nil)
	events := e.NewGame()

	started, ok := findEvent[LevelStartedEvent](events)
	if !ok {
		t.Fatal("NewGame did not emit LevelStarted")
	}
	if started.Level.Index != 1 || started.Level.NumberOfTargets != 4 {
		t.Errorf("first level = index %d with %d targets", started.Level.Index, started.Level.NumberOfTargets)
	}
	if e.State() != puzzle.StateIdle {
		t.Errorf("State() = %s, expected Idle", e.State())
	}
	if e.PointsAvailable() != 10 {
		t.Errorf("PointsAvailable() = %d, expected 10", e.PointsAvailable())
	}
	sess := e.Session()
	if sess.LevelsPlayed != 0 || sess.Score != 0 || sess.IsGameOver || sess.HasStartedFirstMove {
		t.Errorf("fresh session = %+v", sess)
	}
}

func TestScenarioCorrectTarget(t *testing.T) {
	e := newTestEngine(t, config.DefaultClassicSettings(), nil)
	startPlaying(t, e)

	e.Tick(300 * time.Millisecond)
	lvl := e.Level()
	winner, _ := lvl.Winner()
	if winner.Color != lvl.Player.Color {
		t.Fatalf("winner color %s differs from player %s", winner.Color, lvl.Player.Color)
	}

	moveOnto(e, winner)
	events := e.EndMove()

	succeeded, ok := findEvent[LevelSucceededEvent](events)
	if !ok {
		t.Fatalf("EndMove on winner produced %v, expected LevelSucceeded", events)
	}
	// 900ms of 1200ms left: ceil(7.5) = 8
	if succeeded.PointsGained != 8 || succeeded.Level != 1 {
		t.Errorf("LevelSucceeded = %+v, expected level 1 with 8 points", succeeded)
	}
	changed, ok := findEvent[ScoreChangedEvent](events)
	if !ok || changed.Score != 8 || changed.PointsGained != 8 {
		t.Errorf("ScoreChanged = %+v, expected score 8", changed)
	}

	next, ok := findEvent[LevelStartedEvent](events)
	if !ok || next.Level.Index != 2 {
		t.Errorf("expected level 2 to start, got %+v", next)
	}
	if e.State() != puzzle.StateIdle {
		t.Errorf("State() = %s, expected Idle for next level", e.State())
	}
	if s := e.Session(); s.Score != 8 || s.LevelsPlayed != 1 {
		t.Errorf("session = %+v, expected score 8 after 1 level", s)
	}
}

func TestScenarioIncorrectTarget(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(t, config.DefaultClassicSettings(), store)
	startPlaying(t, e)

	moveOnto(e, distractor(t, e.Level()))
	events := e.EndMove()

	over, ok := findEvent[GameOverEvent](events)
	if !ok {
		t.Fatalf("EndMove on distractor produced %v, expected GameOver", events)
	}
	if over.Reason != ReasonIncorrect || over.FinalScore != 0 {
		t.Errorf("GameOver = %+v, expected Incorrect with score 0", over)
	}
	if e.State() != puzzle.StateGameOver || !e.Session().IsGameOver {
		t.Errorf("State() = %s, expected GameOver", e.State())
	}

	changed, ok := findEvent[StateChangedEvent](events)
	if !ok || changed.To != puzzle.StateResolvedIncorrect {
		t.Errorf("first transition = %+v, expected to ResolvedIncorrect", changed)
	}
}

func TestScenarioTimesUp(t *testing.T) {
	e := newTestEngine(t, config.DefaultClassicSettings(), nil)
	startPlaying(t, e)

	if events := e.Tick(1100 * time.Millisecond); len(events) != 0 {
		t.Fatalf("Tick before expiry produced %v", events)
	}
	if e.PointsAvailable() != 1 {
		t.Errorf("PointsAvailable() = %d with 100ms left, expected 1", e.PointsAvailable())
	}

	events := e.Tick(100 * time.Millisecond)
	over, ok := findEvent[GameOverEvent](events)
	if !ok || over.Reason != ReasonTimesUp || over.FinalScore != 0 {
		t.Fatalf("Tick at expiry = %v, expected GameOver Times Up", events)
	}
	changed, _ := findEvent[StateChangedEvent](events)
	if changed.To != puzzle.StateResolvedTimedOut {
		t.Errorf("first transition = %+v, expected to ResolvedTimedOut", changed)
	}
}

func TestTimeoutWhileOnWinnerSucceeds(t *testing.T) {
	e := newTestEngine(t, config.DefaultClassicSettings(), nil)
	startPlaying(t, e)

	winner, _ := e.Level().Winner()
	moveOnto(e, winner)
	events := e.Tick(2 * time.Second)

	succeeded, ok := findEvent[LevelSucceededEvent](events)
	if !ok {
		t.Fatalf("expiry on winner produced %v, expected success", events)
	}
	if succeeded.PointsGained != 0 {
		t.Errorf("PointsGained = %d at expiry, expected 0", succeeded.PointsGained)
	}
	if s := e.Session(); s.LevelsPlayed != 1 || s.IsGameOver {
		t.Errorf("session = %+v, expected one level played", s)
	}
}

func TestReleaseOnEmptySpaceReturnsPlayer(t *testing.T) {
	e := newTestEngine(t, config.DefaultClassicSettings(), nil)
	startPlaying(t, e)

	winner, _ := e.Level().Winner()
	half := winner.Position.Scale(0.5)
	e.Move(half)
	events := e.EndMove()

	returned, ok := findEvent[PlayerReturnedEvent](events)
	if !ok {
		t.Fatalf("release on empty space produced %v", events)
	}
	if returned.From != half || returned.Position != (core.Point{}) {
		t.Errorf("PlayerReturned = %+v", returned)
	}
	if e.State() != puzzle.StatePlaying {
		t.Errorf("State() = %s, expected still Playing", e.State())
	}
	if e.Level().Player.Position != (core.Point{}) {
		t.Errorf("player at %+v, expected centre", e.Level().Player.Position)
	}
}

func TestMoveIsClamped(t *testing.T) {
	e := newTestEngine(t, config.DefaultClassicSettings(), nil)
	startPlaying(t, e)

	limit := config.DefaultClassicSettings().Playfield.MaxPlayerDistance()
	for i := 0; i < 50; i++ {
		e.Move(core.Pt(37, -91))
		if d := e.Level().Player.DistanceFromCenter(); d > limit+1e-9 {
			t.Fatalf("player at distance %g, max %g", d, limit)
		}
	}
}

func TestFirstMoveLatches(t *testing.T) {
	e := newTestEngine(t, config.DefaultClassicSettings(), nil)
	e.NewGame()

	events := e.BeginLevel()
	if changed, _ := findEvent[StateChangedEvent](events); changed.To != puzzle.StateArmed {
		t.Fatalf("first BeginLevel = %v, expected Armed", events)
	}

	// Countdown does not run while armed
	e.Tick(5 * time.Second)
	if e.State() != puzzle.StateArmed {
		t.Fatalf("State() = %s after ticking armed level", e.State())
	}

	e.FirstMove()
	if e.State() != puzzle.StatePlaying || !e.Session().HasStartedFirstMove {
		t.Fatalf("FirstMove did not start play")
	}
	if e.Level().TimeRemaining != e.Level().TimeBudget {
		t.Errorf("FirstMove should restart the countdown")
	}

	winner, _ := e.Level().Winner()
	moveOnto(e, winner)
	e.EndMove()

	if events := e.FirstMove(); events != nil {
		t.Errorf("second FirstMove produced %v", events)
	}
	if e.State() != puzzle.StateIdle {
		t.Fatalf("State() = %s, expected Idle", e.State())
	}

	events = e.BeginLevel()
	if changed, _ := findEvent[StateChangedEvent](events); changed.To != puzzle.StatePlaying {
		t.Errorf("BeginLevel after first move = %v, expected Playing", events)
	}
}

func TestFirstMoveFromIdle(t *testing.T) {
	e := newTestEngine(t, config.DefaultClassicSettings(), nil)
	e.NewGame()

	e.FirstMove()
	if e.State() != puzzle.StatePlaying {
		t.Errorf("FirstMove from Idle = %s, expected Playing", e.State())
	}
	if events := e.BeginLevel(); events != nil {
		t.Errorf("BeginLevel while playing produced %v", events)
	}
}

func TestHintAnimatesWhileArmed(t *testing.T) {
	e := newTestEngine(t, config.DefaultClassicSettings(), nil)
	e.NewGame()

	if _, ok := e.HintPosition(); ok {
		t.Error("HintPosition should be unavailable while idle")
	}
	e.BeginLevel()

	winner, _ := e.Level().Winner()
	mid := winner.Position.Scale(0.5)

	// 0.5s delay + 1.25s pause + 0.3s out
	e.Tick(2050 * time.Millisecond)
	pos, ok := e.HintPosition()
	if !ok {
		t.Fatal("HintPosition unavailable while armed")
	}
	if pos.Distance(mid) > 0.5 {
		t.Errorf("hint at %+v after 2.05s, expected midpoint %+v", pos, mid)
	}
	if e.Level().Player.Position.Distance(mid) > 0.5 {
		t.Errorf("player at %+v, expected to follow the hint", e.Level().Player.Position)
	}

	e.FirstMove()
	if e.Level().Player.Position != (core.Point{}) {
		t.Errorf("FirstMove should put the player back in the centre, got %+v", e.Level().Player.Position)
	}
}

func TestHintAnimationTimeline(t *testing.T) {
	h := newHintAnimation(core.Pt(0, 0), core.Pt(100, 0))

	tests := []struct {
		after    time.Duration
		expected float64
	}{
		{400 * time.Millisecond, 0},
		{1300 * time.Millisecond, 0}, // 1.7s: still pausing
		{200 * time.Millisecond, 25}, // 1.9s: halfway out, eased
		{150 * time.Millisecond, 50}, // 2.05s: at the midpoint
		{300 * time.Millisecond, 0},  // 2.35s: back home
		{1250 * time.Millisecond, 0}, // 3.6s: paused again
		{300 * time.Millisecond, 50}, // 3.9s: out again
	}

	for i, tt := range tests {
		pos := h.Update(tt.after)
		if math.Abs(pos.X-tt.expected) > 0.5 || pos.Y != 0 {
			t.Errorf("step %d: hint at %+v, expected x=%g", i, pos, tt.expected)
		}
	}
	if h.Target() != core.Pt(50, 0) {
		t.Errorf("Target() = %+v, expected midpoint", h.Target())
	}
}

func TestGameOverIgnoresInputUntilNewGame(t *testing.T) {
	e := newTestEngine(t, config.DefaultClassicSettings(), nil)
	startPlaying(t, e)
	e.Tick(2 * time.Second)

	for _, events := range [][]Event{
		e.BeginLevel(), e.FirstMove(), e.Move(core.Pt(1, 1)), e.EndMove(), e.Tick(time.Second),
	} {
		if len(events) != 0 {
			t.Errorf("input after game over produced %v", events)
		}
	}

	e.NewGame()
	if e.State() != puzzle.StateIdle || e.Session().IsGameOver || e.Level().Index != 1 {
		t.Errorf("NewGame after game over: state %s session %+v", e.State(), e.Session())
	}
}

func TestScoreRecordedOncePerGameOver(t *testing.T) {
	store := &fakeStore{}
	e, err := New(Config{
		Settings: config.DefaultClassicSettings(),
		GameType: "classic",
		Random:   core.NewSeededRandom(7),
		Store:    store,
	})
	if err != nil {
		t.Fatal(err)
	}

	startPlaying(t, e)
	winner, _ := e.Level().Winner()
	moveOnto(e, winner)
	e.EndMove()
	e.BeginLevel()
	e.Tick(5 * time.Second)
	e.Tick(5 * time.Second)
	e.EndMove()

	e.Close()

	records := store.records()
	if len(records) != 1 {
		t.Fatalf("recorded %d scores, expected exactly 1", len(records))
	}
	if records[0] != e.Session().Score {
		t.Errorf("recorded %d, expected %d", records[0], e.Session().Score)
	}
}

// gatedStore holds every RecordScore until open is closed.
type gatedStore struct {
	fakeStore
	open chan struct{}
}

func (s *gatedStore) RecordScore(ctx context.Context, gameType string, score int64) error {
	<-s.open
	return s.fakeStore.RecordScore(ctx, gameType, score)
}

func TestSlowStoreKeepsEveryResult(t *testing.T) {
	store := &gatedStore{open: make(chan struct{})}
	e, err := New(Config{
		Settings: config.DefaultClassicSettings(),
		GameType: "classic",
		Random:   core.NewSeededRandom(11),
		Store:    store,
	})
	if err != nil {
		t.Fatal(err)
	}

	const games = 40
	for i := 0; i < games; i++ {
		e.NewGame()
		e.FirstMove()
		e.Tick(5 * time.Second)
		if e.State() != puzzle.StateGameOver {
			t.Fatalf("game %d: state = %s, expected GameOver", i, e.State())
		}
	}

	close(store.open)
	e.Close()

	if got := len(store.records()); got != games {
		t.Errorf("recorded %d scores, expected %d", got, games)
	}
}

func TestResultRecorderPreferred(t *testing.T) {
	store := &resultStore{}
	e, err := New(Config{
		Settings: config.DefaultClassicSettings(),
		GameType: "classic",
		Random:   core.NewSeededRandom(7),
		Store:    store,
	})
	if err != nil {
		t.Fatal(err)
	}

	startPlaying(t, e)
	moveOnto(e, distractor(t, e.Level()))
	e.EndMove()
	e.Close()

	if len(store.results) != 1 || len(store.recorded) != 0 {
		t.Fatalf("results %d, plain scores %d; expected the full result only", len(store.results), len(store.recorded))
	}
	res := store.results[0]
	if res.Reason != ReasonIncorrect || res.GameType != "classic" || res.SessionID != e.Session().ID.String() {
		t.Errorf("result = %+v", res)
	}
}

func TestNewHighScoreSignal(t *testing.T) {
	store := &fakeStore{high: 50}
	e := newTestEngine(t, config.DefaultClassicSettings(), store)
	startPlaying(t, e)

	deadline := time.Now().Add(2 * time.Second)
	for e.HighScore() != 50 {
		if time.Now().After(deadline) {
			t.Fatalf("HighScore() = %d, lookup never arrived", e.HighScore())
		}
		time.Sleep(5 * time.Millisecond)
	}

	over, _ := findEvent[GameOverEvent](e.Tick(2 * time.Second))
	if over.NewHighScore || over.HighScore != 50 {
		t.Errorf("GameOver = %+v, expected no new high score against 50", over)
	}
}

func TestNewHighScoreWithoutStore(t *testing.T) {
	e := newTestEngine(t, config.DefaultClassicSettings(), nil)
	startPlaying(t, e)

	winner, _ := e.Level().Winner()
	moveOnto(e, winner)
	e.EndMove()
	e.BeginLevel()

	over, _ := findEvent[GameOverEvent](e.Tick(2 * time.Second))
	if !over.NewHighScore || over.HighScore != over.FinalScore || over.FinalScore != 10 {
		t.Errorf("GameOver = %+v, expected new high score of 10", over)
	}
	if e.HighScore() != 10 {
		t.Errorf("HighScore() = %d, expected 10", e.HighScore())
	}
}

func TestStoreFailureDoesNotAlterResult(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	e := newTestEngine(t, config.DefaultClassicSettings(), store)
	startPlaying(t, e)

	over, ok := findEvent[GameOverEvent](e.Tick(2 * time.Second))
	if !ok || over.Reason != ReasonTimesUp {
		t.Errorf("GameOver = %+v, expected Times Up despite store failure", over)
	}
	e.Close()
	if len(store.records()) != 0 {
		t.Error("failing store should hold no records")
	}
}

func TestListenerReceivesEvents(t *testing.T) {
	var heard []Event
	e, err := New(Config{
		Settings: config.DefaultClassicSettings(),
		GameType: "classic",
		Random:   core.NewSeededRandom(1),
		Listener: func(ev Event) { heard = append(heard, ev) },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	var returned []Event
	returned = append(returned, e.NewGame()...)
	returned = append(returned, e.BeginLevel()...)
	returned = append(returned, e.FirstMove()...)
	returned = append(returned, e.Tick(2*time.Second)...)

	if len(heard) != len(returned) {
		t.Fatalf("listener heard %d events, inputs returned %d", len(heard), len(returned))
	}
	for i := range heard {
		if heard[i].Name() != returned[i].Name() {
			t.Errorf("event %d: listener %s, returned %s", i, heard[i].Name(), returned[i].Name())
		}
	}
}

func TestScenarioTargetGrowth(t *testing.T) {
	e := newTestEngine(t, config.DefaultV2Settings(), nil)
	startPlaying(t, e)

	solve := func() {
		winner, _ := e.Level().Winner()
		moveOnto(e, winner)
		e.EndMove()
		e.BeginLevel()
	}

	for i := 0; i < 4; i++ {
		solve()
	}
	if lvl := e.Level(); lvl.Index != 5 || lvl.NumberOfTargets != 4 || lvl.TimeBudget != 1100*time.Millisecond {
		t.Errorf("level 5 = index %d, %d targets, %s; expected 4 targets and 1.1s", lvl.Index, lvl.NumberOfTargets, lvl.TimeBudget)
	}

	for i := 0; i < 6; i++ {
		solve()
	}

	if s := e.Session(); s.LevelsPlayed != 10 {
		t.Fatalf("LevelsPlayed = %d, expected 10", s.LevelsPlayed)
	}
	if n := e.Level().NumberOfTargets; n != 6 {
		t.Errorf("NumberOfTargets after 10 levels = %d, expected 6", n)
	}
	if b := e.Level().TimeBudget; b != 1000*time.Millisecond {
		t.Errorf("TimeBudget after 10 levels = %s, expected 1s", b)
	}
}

func TestSessionRoundTripResumesIdentically(t *testing.T) {
	settings := config.DefaultV2Settings()
	first := newTestEngine(t, settings, nil)
	startPlaying(t, first)
	for i := 0; i < 3; i++ {
		winner, _ := first.Level().Winner()
		moveOnto(first, winner)
		first.EndMove()
		first.BeginLevel()
	}

	data, err := first.Session().Encode()
	if err != nil {
		t.Fatal(err)
	}
	restored, err := DecodeSession(data)
	if err != nil {
		t.Fatal(err)
	}
	if restored != first.Session() {
		t.Fatalf("restored session %+v, expected %+v", restored, first.Session())
	}

	build := func() *Engine {
		e, err := New(Config{Settings: settings, GameType: "classic", Random: core.NewSeededRandom(99)})
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(e.Close)
		return e
	}
	a, b := build(), build()
	if _, err := a.Resume(first.Session()); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Resume(restored); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 8; i++ {
		la, lb := a.Level(), b.Level()
		if la.Index != 4+i || la.Index != lb.Index {
			t.Fatalf("level index %d vs %d, expected %d", la.Index, lb.Index, 4+i)
		}
		if la.Player.Entity != lb.Player.Entity || len(la.Targets) != len(lb.Targets) {
			t.Fatalf("level %d differs after resume", la.Index)
		}
		for j := range la.Targets {
			if la.Targets[j] != lb.Targets[j] {
				t.Fatalf("level %d target %d differs after resume", la.Index, j)
			}
		}
		if a.Snapshot() != b.Snapshot() {
			t.Fatalf("snapshots differ: %+v vs %+v", a.Snapshot(), b.Snapshot())
		}

		for _, e := range []*Engine{a, b} {
			e.BeginLevel()
			winner, _ := e.Level().Winner()
			moveOnto(e, winner)
			e.Tick(100 * time.Millisecond)
			e.EndMove()
		}
	}
}

func TestResumeRejectsFinishedSession(t *testing.T) {
	e := newTestEngine(t, config.DefaultClassicSettings(), nil)

	s := NewSession("classic")
	s.IsGameOver = true
	if _, err := e.Resume(s); !errors.Is(err, ErrSessionOver) {
		t.Errorf("Resume(finished) = %v, expected ErrSessionOver", err)
	}

	if _, err := e.Resume(NewSession("v2")); err == nil {
		t.Error("Resume of another game type should fail")
	}

	if _, err := DecodeSession([]byte(`{"levels_played": -1}`)); err == nil {
		t.Error("DecodeSession should reject negative counters")
	}
}
