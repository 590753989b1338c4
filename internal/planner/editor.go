// Package planner edits one player's week: placing, moving and removing
// blocks, seeding a week from a template, and saving it.
package planner

import (
	"errors"
	"fmt"

	"github.com/meltforce/blockplan/internal/catalog"
	"github.com/meltforce/blockplan/internal/plan"
)

var (
	ErrUnknownDay         = errors.New("unknown day")
	ErrNoSuchBlock        = errors.New("no block at that position")
	ErrInvalidValue       = errors.New("rpe and duration must not be negative")
	ErrConfirmRequired    = errors.New("week has blocks, confirm to clear")
	ErrNoTemplateSelected = errors.New("no template selected")
	ErrWeekChoiceRequired = errors.New("template has several weeks, choose one")
	ErrNoPendingTemplate  = errors.New("no template is waiting for a week choice")
	ErrEmptyTemplate      = errors.New("template defines no weeks")
	ErrWeekOutOfRange     = errors.New("template week out of range")
)

// Origin is where a drag started. It is either a CatalogOrigin or a PlacedOrigin.
type Origin interface {
	isOrigin()
}

// CatalogOrigin drags a copy of a palette entry.
type CatalogOrigin struct {
	BlockID string `json:"blockId"`
	Code    string `json:"code"`
}

// PlacedOrigin drags an already placed block.
type PlacedOrigin struct {
	Day   plan.DayName `json:"day"`
	Index int          `json:"index"`
}

func (CatalogOrigin) isOrigin() {}
func (PlacedOrigin) isOrigin()  {}

// Editor holds the working copy of one week. It is not safe for concurrent
// use; callers serialize access.
type Editor struct {
	key     plan.Key
	week    plan.Week
	catalog *catalog.Catalog

	pick            string
	drag            Origin
	pendingTemplate *catalog.Template
}

// NewEditor starts editing key from week. A nil week starts empty.
func NewEditor(key plan.Key, week plan.Week, c *catalog.Catalog) *Editor {
	if week == nil {
		week = plan.NewWeek()
	}
	return &Editor{
		key:     key,
		week:    week.Clone().Complete(),
		catalog: c,
	}
}

func (e *Editor) Key() plan.Key { return e.key }

// Week returns a snapshot of the working week.
func (e *Editor) Week() plan.Week { return e.week.Clone() }

// Summary computes the live per-day and week load.
func (e *Editor) Summary() plan.Summary { return plan.Summarize(e.week) }

func (e *Editor) day(d plan.DayName) (plan.Day, error) {
	if !d.Valid() {
		return plan.Day{}, fmt.Errorf("%w: %q", ErrUnknownDay, d)
	}
	return e.week[d], nil
}

func (e *Editor) set(d plan.DayName, day plan.Day) {
	day.Normalize()
	e.week[d] = day
}

// PlaceBlock appends blockID with catalog defaults to the day. Unknown ids are
// placed with zero RPE and duration.
func (e *Editor) PlaceBlock(d plan.DayName, blockID string) error {
	return e.place(d, e.catalog.Placement(blockID))
}

func (e *Editor) place(d plan.DayName, pb plan.PlacedBlock) error {
	day, err := e.day(d)
	if err != nil {
		return err
	}
	day = day.Clone()
	day.Blocks = append(day.Blocks, pb)
	e.set(d, day)
	return nil
}

// RemoveBlock deletes the block at index. Out-of-range indexes are ignored.
func (e *Editor) RemoveBlock(d plan.DayName, index int) error {
	day, err := e.day(d)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(day.Blocks) {
		return nil
	}
	blocks := make([]plan.PlacedBlock, 0, len(day.Blocks)-1)
	blocks = append(blocks, day.Blocks[:index]...)
	blocks = append(blocks, day.Blocks[index+1:]...)
	day.Blocks = blocks
	e.set(d, day)
	return nil
}

// MoveBlock takes the block at index off from and appends it to to. Both days
// are replaced together, so the block is never on both or neither. Moving
// onto the same day re-appends it at the end.
func (e *Editor) MoveBlock(from plan.DayName, index int, to plan.DayName) error {
	src, err := e.day(from)
	if err != nil {
		return err
	}
	if _, err := e.day(to); err != nil {
		return err
	}
	if index < 0 || index >= len(src.Blocks) {
		return nil
	}
	moved := src.Blocks[index]

	next := e.week.Clone()
	srcDay := next[from]
	srcDay.Blocks = append(srcDay.Blocks[:index], srcDay.Blocks[index+1:]...)
	srcDay.Normalize()
	next[from] = srcDay

	dstDay := next[to]
	dstDay.Blocks = append(dstDay.Blocks, moved)
	dstDay.Normalize()
	next[to] = dstDay

	e.week = next
	return nil
}

// SetIntensity replaces the day's free-text annotation.
func (e *Editor) SetIntensity(d plan.DayName, text string) error {
	day, err := e.day(d)
	if err != nil {
		return err
	}
	day.Intensity = text
	e.week[d] = day
	return nil
}

// SetBlockValues edits the RPE and duration of a placed block.
func (e *Editor) SetBlockValues(d plan.DayName, index, rpe, duration int) error {
	day, err := e.day(d)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(day.Blocks) {
		return fmt.Errorf("%w: %s[%d]", ErrNoSuchBlock, d, index)
	}
	if rpe < 0 || duration < 0 {
		return ErrInvalidValue
	}
	day = day.Clone()
	day.Blocks[index].RPE = rpe
	day.Blocks[index].Duration = duration
	e.week[d] = day
	return nil
}

// Pick records a palette block to be placed on the next PickDay. A new pick
// replaces any pending one.
func (e *Editor) Pick(blockID string) {
	e.pick = blockID
}

// Pending returns the picked block id, if any.
func (e *Editor) Pending() (string, bool) {
	return e.pick, e.pick != ""
}

// CancelPick drops the pending pick.
func (e *Editor) CancelPick() { e.pick = "" }

// PickDay places the pending block on d and clears the pending slot. Without
// a pending block it does nothing.
func (e *Editor) PickDay(d plan.DayName) error {
	if e.pick == "" {
		return nil
	}
	if err := e.PlaceBlock(d, e.pick); err != nil {
		return err
	}
	e.pick = ""
	return nil
}

// BeginDrag records the drag origin.
func (e *Editor) BeginDrag(o Origin) { e.drag = o }

// Dragging returns the current drag origin, or nil.
func (e *Editor) Dragging() Origin { return e.drag }

// CancelDrag forgets the drag origin without dropping.
func (e *Editor) CancelDrag() { e.drag = nil }

// Drop completes a drag onto d: a catalog origin places a copy, a placed
// origin moves the block. Without an origin the drop is a no-op.
func (e *Editor) Drop(d plan.DayName) error {
	o := e.drag
	if o == nil {
		return nil
	}
	if !d.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownDay, d)
	}
	e.drag = nil

	switch o := o.(type) {
	case CatalogOrigin:
		if o.BlockID == "" {
			return nil
		}
		pb := e.catalog.Placement(o.BlockID)
		if o.Code != "" {
			pb.Code = o.Code
		}
		return e.place(d, pb)
	case PlacedOrigin:
		return e.MoveBlock(o.Day, o.Index, d)
	}
	return nil
}

// ClearWeek resets all seven days. A week holding blocks is only cleared
// when confirm is set.
func (e *Editor) ClearWeek(confirm bool) error {
	if e.week.HasBlocks() && !confirm {
		return ErrConfirmRequired
	}
	e.week = plan.NewWeek()
	return nil
}

// Replace swaps in a whole week, as after instantiating a template.
func (e *Editor) Replace(w plan.Week) {
	e.week = w.Clone().Complete()
}
