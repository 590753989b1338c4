package plan

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// KeySeparator joins key components in their canonical storage form.
const KeySeparator = "_"

// ErrInvalidKey is wrapped by every key validation failure.
var ErrInvalidKey = errors.New("invalid key")

// Key identifies a week plan: one player, one week.
type Key struct {
	PlayerID string `json:"playerId"`
	Week     string `json:"week"`
}

// String returns the canonical storage id, e.g. "player1_2024-W10".
func (k Key) String() string {
	return k.PlayerID + KeySeparator + k.Week
}

// Validate rejects empty components and components containing the separator,
// which would make the canonical id ambiguous.
func (k Key) Validate() error {
	return validateComponents("player id", k.PlayerID, "week", k.Week)
}

// ParseKey splits a canonical plan id back into its components.
func ParseKey(id string) (Key, error) {
	player, week, ok := strings.Cut(id, KeySeparator)
	if !ok {
		return Key{}, fmt.Errorf("%w: plan id %q has no separator", ErrInvalidKey, id)
	}
	k := Key{PlayerID: player, Week: week}
	if err := k.Validate(); err != nil {
		return Key{}, fmt.Errorf("plan id %q: %w", id, err)
	}
	return k, nil
}

// LogKey identifies a player's exercise log for one block at one level.
type LogKey struct {
	PlayerID string `json:"playerId"`
	BlockID  string `json:"blockId"`
	Level    string `json:"level"`
}

// String returns the canonical storage id, e.g. "p1_ukk_3".
func (k LogKey) String() string {
	return k.PlayerID + KeySeparator + k.BlockID + KeySeparator + k.Level
}

// Validate rejects empty components and components containing the separator.
func (k LogKey) Validate() error {
	return validateComponents("player id", k.PlayerID, "block id", k.BlockID, "level", k.Level)
}

// ParseLogKey splits a canonical log id back into its components.
func ParseLogKey(id string) (LogKey, error) {
	parts := strings.Split(id, KeySeparator)
	if len(parts) != 3 {
		return LogKey{}, fmt.Errorf("%w: log id %q has %d components, want 3", ErrInvalidKey, id, len(parts))
	}
	k := LogKey{PlayerID: parts[0], BlockID: parts[1], Level: parts[2]}
	if err := k.Validate(); err != nil {
		return LogKey{}, fmt.Errorf("log id %q: %w", id, err)
	}
	return k, nil
}

// validateComponents takes alternating name, value pairs.
func validateComponents(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		name, v := pairs[i], pairs[i+1]
		if v == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidKey, name)
		}
		if strings.Contains(v, KeySeparator) {
			return fmt.Errorf("%w: %s %q must not contain %q", ErrInvalidKey, name, v, KeySeparator)
		}
	}
	return nil
}

// WeekKey formats the ISO-8601 week of t as "2006-W01".
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// CurrentWeekKey returns the week key of the current date.
func CurrentWeekKey() string {
	return WeekKey(time.Now())
}
