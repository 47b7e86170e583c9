package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/eddielee6/ReactionMatch/internal/catalog"
)

func TestDefaultPresetsAreValid(t *testing.T) {
	for _, p := range Presets() {
		if err := p.Settings.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", p.ID, err)
		}
		if p.LeaderboardID == "" || p.Title == "" {
			t.Errorf("preset %s missing title or leaderboard id", p.ID)
		}
	}
}

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	tests := []struct {
		id       string
		expected LevelSettings
	}{
		{PresetClassic, DefaultClassicSettings()},
		{PresetV2, DefaultV2Settings()},
	}

	for _, tt := range tests {
		got, err := Decode(GetDefaultYAML(tt.id), ".yaml", LevelSettings{})
		if err != nil {
			t.Fatalf("Decode(%s embedded) error: %v", tt.id, err)
		}
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("embedded %s = %+v, expected %+v", tt.id, got, tt.expected)
		}
	}
}

func TestYAMLAndTOMLDecodeAlike(t *testing.T) {
	yamlData := []byte(`
game_mode: exact
min_targets: 3
max_targets: 6
max_time_for_level: 2s
min_time_for_level: 500ms
colors: [red, blue, green]
shapes: [star, circle]
playfield:
  hit_radius: 15
`)
	tomlData := []byte(`
game_mode = "exact"
min_targets = 3
max_targets = 6
max_time_for_level = "2s"
min_time_for_level = "500ms"
colors = ["red", "blue", "green"]
shapes = ["star", "circle"]

[playfield]
hit_radius = 15.0
`)

	base := DefaultV2Settings()
	fromYAML, err := Decode(yamlData, ".yaml", base)
	if err != nil {
		t.Fatalf("yaml decode: %v", err)
	}
	fromTOML, err := Decode(tomlData, ".toml", base)
	if err != nil {
		t.Fatalf("toml decode: %v", err)
	}

	if !reflect.DeepEqual(fromYAML, fromTOML) {
		t.Errorf("yaml and toml differ:\nyaml %+v\ntoml %+v", fromYAML, fromTOML)
	}

	if fromYAML.GameMode != ModeExact || fromYAML.MaxTimeForLevel != 2*time.Second {
		t.Errorf("decoded settings = %+v", fromYAML)
	}
	// Untouched fields keep the base value
	if fromYAML.TargetsIncrementEveryNLevels != 5 || fromYAML.Playfield.TargetDistance != 110 {
		t.Errorf("base values lost: %+v", fromYAML)
	}
	if fromYAML.Playfield.HitRadius != 15 {
		t.Errorf("HitRadius = %g, expected 15", fromYAML.Playfield.HitRadius)
	}
	expectedColors := []catalog.Color{catalog.Red, catalog.Blue, catalog.Green}
	if !reflect.DeepEqual(fromYAML.Colors, expectedColors) {
		t.Errorf("Colors = %v, expected %v", fromYAML.Colors, expectedColors)
	}
}

func TestDecodeRejectsUnknownNames(t *testing.T) {
	if _, err := Decode([]byte("colors: [red, teal]"), ".yaml", DefaultClassicSettings()); err == nil {
		t.Error("expected error for unknown color")
	}
	if _, err := Decode([]byte(`fixed_shape = "hexagon"`), ".toml", DefaultClassicSettings()); err == nil {
		t.Error("expected error for unknown shape")
	}
}

func TestValidateRejectsDegenerateSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LevelSettings)
	}{
		{"unknown mode", func(s *LevelSettings) { s.GameMode = "mirror" }},
		{"zero targets", func(s *LevelSettings) { s.MinTargets = 0 }},
		{"inverted targets", func(s *LevelSettings) { s.MinTargets, s.MaxTargets = 6, 3 }},
		{"negative increment", func(s *LevelSettings) { s.TargetsIncrementAmount = -1 }},
		{"negative interval", func(s *LevelSettings) { s.TargetsIncrementEveryNLevels = -5 }},
		{"zero time", func(s *LevelSettings) { s.MinTimeForLevel = 0 }},
		{"inverted time", func(s *LevelSettings) { s.MaxTimeForLevel = 100 * time.Millisecond }},
		{"negative decay", func(s *LevelSettings) { s.TimeDecayPerFiveLevels = -time.Millisecond }},
		{"single shape in shape mode", func(s *LevelSettings) { s.Shapes = []catalog.Shape{catalog.Star} }},
		{"single color in shape mode", func(s *LevelSettings) { s.Colors = []catalog.Color{catalog.Red} }},
		{"bad fixed shape", func(s *LevelSettings) { s.FixedShape = catalog.Shape(9) }},
		{"bad palette color", func(s *LevelSettings) { s.Colors = []catalog.Color{catalog.Red, catalog.Color(40)} }},
		{"zero hit radius", func(s *LevelSettings) { s.Playfield.HitRadius = 0 }},
		{"unreachable targets", func(s *LevelSettings) { s.Playfield.PlayerDistanceFactor = 0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultV2Settings()
			tt.mutate(&s)
			err := s.Validate()
			if !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Validate() = %v, expected ErrInvalidSettings", err)
			}
		})
	}
}

func TestValidateSingleVariantAllowedWithoutExclusion(t *testing.T) {
	// One target in color mode never draws a distractor
	s := DefaultClassicSettings()
	s.MinTargets, s.MaxTargets = 1, 1
	s.Colors = []catalog.Color{catalog.Pink}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v, expected nil", err)
	}

	s.MaxTargets = 2
	if err := s.Validate(); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("Validate() with distractors = %v, expected ErrInvalidSettings", err)
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	s := DefaultClassicSettings()
	s.MinTargets = 0
	s.MinTimeForLevel = 0

	err := s.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"min targets", "min time"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}

func TestApplyDifficulty(t *testing.T) {
	tests := []struct {
		preset  DifficultyPreset
		maxTime time.Duration
		minTime time.Duration
		decay   time.Duration
	}{
		{DifficultyEasy, 1800 * time.Millisecond, 600 * time.Millisecond, 150 * time.Millisecond},
		{DifficultyNormal, 1200 * time.Millisecond, 400 * time.Millisecond, 100 * time.Millisecond},
		{DifficultyHard, 900 * time.Millisecond, 300 * time.Millisecond, 75 * time.Millisecond},
		{DifficultyFixed, 1200 * time.Millisecond, 400 * time.Millisecond, 0},
	}

	for _, tt := range tests {
		s := DefaultClassicSettings()
		ApplyDifficulty(&s, tt.preset)
		if s.MaxTimeForLevel != tt.maxTime || s.MinTimeForLevel != tt.minTime || s.TimeDecayPerFiveLevels != tt.decay {
			t.Errorf("ApplyDifficulty(%s) = max %s min %s decay %s, expected %s %s %s",
				tt.preset, s.MaxTimeForLevel, s.MinTimeForLevel, s.TimeDecayPerFiveLevels,
				tt.maxTime, tt.minTime, tt.decay)
		}
		if err := s.Validate(); err != nil {
			t.Errorf("ApplyDifficulty(%s) produced invalid settings: %v", tt.preset, err)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	if p, err := ParseDifficulty(""); err != nil || p != DifficultyNormal {
		t.Errorf("ParseDifficulty(\"\") = %q, %v", p, err)
	}
	if p, err := ParseDifficulty("hard"); err != nil || p != DifficultyHard {
		t.Errorf("ParseDifficulty(hard) = %q, %v", p, err)
	}
	if _, err := ParseDifficulty("nightmare"); err == nil {
		t.Error("ParseDifficulty(nightmare) should fail")
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	path := filepath.Join(dir, "mine.toml")
	data := []byte("max_targets = 6\ntargets_increment_amount = 1\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(PresetV2, path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.MaxTargets != 6 || cfg.TargetsIncrementAmount != 1 || cfg.GameMode != ModeShape {
		t.Errorf("Load = %+v", cfg)
	}

	if _, err := Load(PresetV2, filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing custom path should fail")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("min_targets: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(PresetV2, bad); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("Load(bad) = %v, expected ErrInvalidSettings", err)
	}
}

func TestLoadUserConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".reactionmatch", "configs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "classic.toml"), []byte("max_time_for_level = \"3s\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(PresetClassic, "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.MaxTimeForLevel != 3*time.Second {
		t.Errorf("MaxTimeForLevel = %s, expected user override 3s", cfg.MaxTimeForLevel)
	}
}

func TestLoadFallsBackToEmbedded(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(PresetClassic, "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultClassicSettings()) {
		t.Errorf("Load = %+v, expected classic defaults", cfg)
	}

	if _, err := Load("blitz", ""); err == nil {
		t.Error("unknown preset should fail")
	}
}
