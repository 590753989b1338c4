// Package catalog holds the read-only reference data the planner and the
// execution session work from: building blocks, week templates and the
// exercise, progression and warm-up documents.
package catalog

import (
	"errors"
	"fmt"

	"github.com/meltforce/blockplan/internal/plan"
)

// ErrTemplateNotFound is returned for a template index or name the catalog does not hold.
var ErrTemplateNotFound = errors.New("template not found")

// BodyPart selects one half of a level's exercise plan.
type BodyPart string

const (
	LowerBody BodyPart = "lowerBody"
	UpperBody BodyPart = "upperBody"
)

// ExerciseMapping resolves a block to exercises: the body part, then the
// training buckets concatenated in order.
type ExerciseMapping struct {
	BodyPart BodyPart `json:"bodyPart" yaml:"bodyPart"`
	Buckets  []string `json:"buckets" yaml:"buckets"`
}

// BlockDefinition is one entry of the building-block catalog.
type BlockDefinition struct {
	ID              string           `json:"id" yaml:"id"`
	Code            string           `json:"code" yaml:"code"`
	Name            string           `json:"name" yaml:"name"`
	DefaultRPE      int              `json:"defaultRPE" yaml:"defaultRPE"`
	DefaultDuration DefaultDuration  `json:"defaultDuration" yaml:"defaultDuration"`
	Color           string           `json:"color" yaml:"color"`
	Exercises       *ExerciseMapping `json:"exercises,omitempty" yaml:"exercises,omitempty"`
}

// TemplateBlock is one authored (blockId, rpe, duration) triple.
type TemplateBlock struct {
	BlockID  string `json:"blockId" yaml:"blockId"`
	RPE      int    `json:"rpe" yaml:"rpe"`
	Duration int    `json:"duration" yaml:"duration"`
}

// TemplateDay is a template's definition of one day: a special designation or a block list.
type TemplateDay struct {
	Type      plan.DayType    `json:"type,omitempty" yaml:"type,omitempty"`
	Intensity string          `json:"intensity,omitempty" yaml:"intensity,omitempty"`
	Blocks    []TemplateBlock `json:"blocks,omitempty" yaml:"blocks,omitempty"`
}

// TemplateWeek is one week of a multi-week template. TotalRPE is advisory.
type TemplateWeek struct {
	TotalRPE int                          `json:"totalRPE,omitempty" yaml:"totalRPE,omitempty"`
	Days     map[plan.DayName]TemplateDay `json:"days" yaml:"days"`
}

// Template is a named multi-week prescription.
type Template struct {
	Name       string         `json:"name" yaml:"name"`
	LevelRange string         `json:"levelRange" yaml:"levelRange"`
	Weeks      []TemplateWeek `json:"weeks" yaml:"weeks"`
}

// TemplateDocument is the on-disk shape of the template catalog.
type TemplateDocument struct {
	BuildingBlocks []BlockDefinition `json:"buildingBlocks" yaml:"buildingBlocks"`
	Templates      []Template        `json:"templates" yaml:"templates"`
}

// PaletteEntry is one placeable item: a catalog block or a special-day marker.
type PaletteEntry struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Color   string `json:"color"`
	Special bool   `json:"special,omitempty"`
}

// Catalog is immutable after construction and safe for concurrent reads.
type Catalog struct {
	blocks       []BlockDefinition
	byID         map[string]int
	templates    []Template
	exercises    *ExerciseDocument
	progressions *ProgressionDocument
	warmUps      any
	fallback     bool
}

// New builds a catalog from a template document and an optional exercise document.
// A document without building blocks gets the built-in blocks.
func New(doc TemplateDocument, exercises *ExerciseDocument) *Catalog {
	c := &Catalog{
		templates: doc.Templates,
		exercises: exercises,
	}
	blocks := doc.BuildingBlocks
	if len(blocks) == 0 {
		blocks = builtinBlocks()
	}
	c.setBlocks(blocks)
	return c
}

// Builtin returns the minimal fallback catalog: the standard building blocks and no templates.
func Builtin() *Catalog {
	c := New(TemplateDocument{}, nil)
	c.fallback = true
	return c
}

func (c *Catalog) setBlocks(blocks []BlockDefinition) {
	c.blocks = blocks
	c.byID = make(map[string]int, len(blocks))
	for i, b := range blocks {
		if _, dup := c.byID[b.ID]; !dup {
			c.byID[b.ID] = i
		}
	}
}

// IsFallback reports whether the catalog is the built-in fallback.
func (c *Catalog) IsFallback() bool { return c.fallback }

// Blocks returns the building blocks in catalog order.
func (c *Catalog) Blocks() []BlockDefinition {
	out := make([]BlockDefinition, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// Lookup returns the building block with the given id.
func (c *Catalog) Lookup(id string) (BlockDefinition, bool) {
	i, ok := c.byID[id]
	if !ok {
		return BlockDefinition{}, false
	}
	return c.blocks[i], true
}

// Code returns the display code for a block id, falling back to the raw id.
func (c *Catalog) Code(id string) string {
	if b, ok := c.Lookup(id); ok {
		return b.Code
	}
	if t := plan.DayType(id); t.IsSpecial() {
		return t.Label()
	}
	return id
}

// Color returns the presentation color for a block id.
func (c *Catalog) Color(id string) string {
	if b, ok := c.Lookup(id); ok && b.Color != "" {
		return b.Color
	}
	if col, ok := builtinColors[id]; ok {
		return col
	}
	return defaultColor
}

// Palette lists the placeable items: catalog blocks followed by the special markers.
func (c *Catalog) Palette() []PaletteEntry {
	out := make([]PaletteEntry, 0, len(c.blocks)+len(plan.SpecialTypes))
	for _, b := range c.blocks {
		out = append(out, PaletteEntry{ID: b.ID, Code: b.Code, Color: c.Color(b.ID)})
	}
	for _, t := range plan.SpecialTypes {
		out = append(out, PaletteEntry{ID: string(t), Code: t.Label(), Color: c.Color(string(t)), Special: true})
	}
	return out
}

// Listing is the catalog as served to clients.
type Listing struct {
	Blocks   []BlockDefinition `json:"blocks"`
	Palette  []PaletteEntry    `json:"palette"`
	Fallback bool              `json:"fallback"`
}

func (c *Catalog) Listing() Listing {
	return Listing{Blocks: c.Blocks(), Palette: c.Palette(), Fallback: c.fallback}
}

// Placement returns the block placed for id with catalog defaults. Special
// markers and unknown ids are placed with zero RPE and duration.
func (c *Catalog) Placement(id string) plan.PlacedBlock {
	if b, ok := c.Lookup(id); ok {
		return plan.PlacedBlock{
			BlockID:  id,
			Code:     b.Code,
			RPE:      b.DefaultRPE,
			Duration: b.DefaultDuration.Resolve(PlacementRangeKey),
		}
	}
	return plan.PlacedBlock{BlockID: id, Code: c.Code(id)}
}

// Templates returns the template definitions in catalog order.
func (c *Catalog) Templates() []Template {
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Template returns the template at idx.
func (c *Catalog) Template(idx int) (Template, error) {
	if idx < 0 || idx >= len(c.templates) {
		return Template{}, fmt.Errorf("%w: index %d, have %d", ErrTemplateNotFound, idx, len(c.templates))
	}
	return c.templates[idx], nil
}

// TemplateByName returns the first template with the given name.
func (c *Catalog) TemplateByName(name string) (Template, int, bool) {
	for i, t := range c.templates {
		if t.Name == name {
			return t, i, true
		}
	}
	return Template{}, -1, false
}

// Mapping returns the exercise mapping for a block: the catalog entry's own
// mapping, else the built-in one. Special markers never map.
func (c *Catalog) Mapping(id string) *ExerciseMapping {
	if plan.DayType(id).IsSpecial() {
		return nil
	}
	if b, ok := c.Lookup(id); ok && b.Exercises != nil {
		return b.Exercises
	}
	return builtinMappings[id]
}

// Exercises returns the exercise document, or nil when none was loaded.
func (c *Catalog) Exercises() *ExerciseDocument { return c.exercises }

// Progressions returns the progression document, or nil when none was loaded.
func (c *Catalog) Progressions() *ProgressionDocument { return c.progressions }

// WarmUps returns the warm-up document as decoded, or nil when none was loaded.
func (c *Catalog) WarmUps() any { return c.warmUps }
