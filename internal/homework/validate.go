package homework

import (
	"errors"
	"fmt"

	"github.com/rewiredtx/rewire/internal/models"
)

const (
	MinFrequency = 1
	MaxFrequency = 7
)

var (
	ErrUnknownGame      = errors.New("game is not in the diagnosis catalog")
	ErrDuplicateGame    = errors.New("game is assigned to more than one slot")
	ErrInvalidFrequency = errors.New("frequency must be between 1 and 7 times per week")
	ErrMissingGame      = errors.New("slot has no game")
)

// Validate checks that every slot has a catalog game, games are pairwise
// distinct and frequencies are in range. The first problem found is returned.
func Validate(plan models.HomeworkPlan, diagnosis models.Diagnosis) error {
	seen := make(map[string]models.Slot)
	for _, slot := range models.Slots {
		game := plan.Games[slot]
		if game == "" {
			return fmt.Errorf("%s: %w", slot.Label(), ErrMissingGame)
		}
		if !InCatalog(diagnosis, game) {
			return fmt.Errorf("%s %q: %w", slot.Label(), game, ErrUnknownGame)
		}
		if prev, dup := seen[game]; dup {
			return fmt.Errorf("%q in %s and %s: %w", game, prev.Label(), slot.Label(), ErrDuplicateGame)
		}
		seen[game] = slot

		freq := plan.Frequencies[slot]
		if freq < MinFrequency || freq > MaxFrequency {
			return fmt.Errorf("%s frequency %d: %w", slot.Label(), freq, ErrInvalidFrequency)
		}
	}
	return nil
}
