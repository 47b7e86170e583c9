// Package modes registers the built-in presets with the registry.
// Import it for its side effects.
package modes

import (
	"fmt"

	"github.com/eddielee6/ReactionMatch/internal/config"
	"github.com/eddielee6/ReactionMatch/internal/engine"
	"github.com/eddielee6/ReactionMatch/internal/registry"
)

func init() {
	for _, p := range config.Presets() {
		registry.Register(registry.GameInfo{
			ID:            p.ID,
			Title:         p.Title,
			LeaderboardID: p.LeaderboardID,
		}, factoryFor(p.ID))
	}
}

// factoryFor loads the preset's settings on every call so edited config
// files apply to the next game.
func factoryFor(id string) registry.Factory {
	return func(opts registry.Options) (*engine.Engine, error) {
		settings, err := config.Load(id, opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		config.ApplyDifficulty(&settings, opts.Difficulty)

		e, err := engine.New(engine.Config{
			Settings: settings,
			GameType: id,
			Random:   opts.Random,
			Store:    opts.Store,
			Logger:   opts.Logger,
			Listener: opts.Listener,
		})
		if err != nil {
			return nil, fmt.Errorf("modes: %s: %w", id, err)
		}
		return e, nil
	}
}
