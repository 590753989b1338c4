package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNoExerciseMapping means the block carries no executable exercise detail.
	ErrNoExerciseMapping = errors.New("no exercise detail for block")
	// ErrNoExercisesForLevel means the exercise catalog has nothing for the level or body part.
	ErrNoExercisesForLevel = errors.New("no exercises for level")
)

// Exercise is one entry of the exercise catalog. DefaultRPE is authored as
// either a number or free text and is passed through unchanged.
type Exercise struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Order         int    `json:"order,omitempty" yaml:"order,omitempty"`
	Tempo         string `json:"tempo,omitempty" yaml:"tempo,omitempty"`
	DefaultRPE    any    `json:"defaultRPE,omitempty" yaml:"defaultRPE,omitempty"`
	DefaultSxR    string `json:"defaultSxR,omitempty" yaml:"defaultSxR,omitempty"`
	DefaultWeight string `json:"defaultWeight,omitempty" yaml:"defaultWeight,omitempty"`
}

// LevelPlan holds the bucketed exercises of one level.
type LevelPlan struct {
	LowerBody map[string][]Exercise `json:"lowerBody,omitempty" yaml:"lowerBody,omitempty"`
	UpperBody map[string][]Exercise `json:"upperBody,omitempty" yaml:"upperBody,omitempty"`
}

// Part returns the buckets for one body part.
func (l LevelPlan) Part(bp BodyPart) map[string][]Exercise {
	switch bp {
	case LowerBody:
		return l.LowerBody
	case UpperBody:
		return l.UpperBody
	}
	return nil
}

// ExerciseDocument is keyed by level, then body part, then training bucket.
type ExerciseDocument struct {
	Levels map[string]LevelPlan `json:"levels" yaml:"levels"`
}

// ProgressionLevel names the exercise used at one level of a progression.
type ProgressionLevel struct {
	Level    string `json:"level" yaml:"level"`
	Exercise string `json:"exercise" yaml:"exercise"`
}

type Progression struct {
	ID       string             `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string             `json:"name,omitempty" yaml:"name,omitempty"`
	FullName string             `json:"fullName,omitempty" yaml:"fullName,omitempty"`
	Levels   []ProgressionLevel `json:"levels" yaml:"levels"`
	Source   string             `json:"source,omitempty" yaml:"source,omitempty"`
}

// ProgressionDocument is served read-only for display.
type ProgressionDocument struct {
	LowerBody []Progression `json:"lowerBody" yaml:"lowerBody"`
	UpperBody []Progression `json:"upperBody" yaml:"upperBody"`
}

// ResolveExercises returns the exercises of a block at a level, bucket by
// bucket in mapping order. Buckets missing from the level are skipped.
func (c *Catalog) ResolveExercises(level, blockID string) ([]Exercise, error) {
	m := c.Mapping(blockID)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoExerciseMapping, blockID)
	}
	if c.exercises == nil {
		return nil, fmt.Errorf("%w %s", ErrNoExercisesForLevel, level)
	}
	lp, ok := c.exercises.Levels[level]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrNoExercisesForLevel, level)
	}
	buckets := lp.Part(m.BodyPart)
	if buckets == nil {
		return nil, fmt.Errorf("%w %s", ErrNoExercisesForLevel, level)
	}
	out := []Exercise{}
	for _, name := range m.Buckets {
		out = append(out, buckets[name]...)
	}
	return out, nil
}
