package plan

import (
	"fmt"
	"time"
)

// DayName identifies one of the seven fixed days of a plan week.
// Values are the wire names used by stored plans and templates.
type DayName string

const (
	Saturday  DayName = "samstag"
	Sunday    DayName = "sonntag"
	Monday    DayName = "montag"
	Tuesday   DayName = "dienstag"
	Wednesday DayName = "mittwoch"
	Thursday  DayName = "donnerstag"
	Friday    DayName = "freitag"
)

// Days lists the plan week in display order. A plan week starts on Saturday.
var Days = []DayName{Saturday, Sunday, Monday, Tuesday, Wednesday, Thursday, Friday}

// Label returns the capitalized display name of the day.
func (d DayName) Label() string {
	switch d {
	case Saturday:
		return "Samstag"
	case Sunday:
		return "Sonntag"
	case Monday:
		return "Montag"
	case Tuesday:
		return "Dienstag"
	case Wednesday:
		return "Mittwoch"
	case Thursday:
		return "Donnerstag"
	case Friday:
		return "Freitag"
	default:
		return string(d)
	}
}

// Valid reports whether d is one of the seven fixed day names.
func (d DayName) Valid() bool {
	for _, day := range Days {
		if d == day {
			return true
		}
	}
	return false
}

// ParseDay validates a raw day name.
func ParseDay(s string) (DayName, error) {
	d := DayName(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown day %q", s)
	}
	return d, nil
}

// DayType tags a day as ordinary training or one of the reserved whole-day designations.
type DayType string

const (
	DayTraining DayType = "training"
	DayPlay     DayType = "spielen"
	DayMatch    DayType = "match"
	DayFree     DayType = "frei"
)

// IsSpecial reports whether t is one of the three whole-day designations.
func (t DayType) IsSpecial() bool {
	switch t {
	case DayPlay, DayMatch, DayFree:
		return true
	}
	return false
}

// Label is the canonical display code of the synthesized block for a special day.
func (t DayType) Label() string {
	switch t {
	case DayPlay:
		return "Spielen"
	case DayMatch:
		return "Match"
	case DayFree:
		return "frei"
	default:
		return string(t)
	}
}

// SpecialTypes lists the reserved whole-day designations in palette order.
var SpecialTypes = []DayType{DayPlay, DayMatch, DayFree}

// PlacedBlock is one concrete block on a day. Code is a snapshot of the catalog
// display code taken at placement time and is never re-derived.
type PlacedBlock struct {
	BlockID  string `json:"id" yaml:"id"`
	Code     string `json:"code" yaml:"code"`
	RPE      int    `json:"rpe" yaml:"rpe"`
	Duration int    `json:"duration" yaml:"duration"`
}

// SpecialBlock returns the marker block that represents a whole special day.
func SpecialBlock(t DayType) PlacedBlock {
	return PlacedBlock{BlockID: string(t), Code: t.Label()}
}

// Day holds the ordered blocks of one plan day.
type Day struct {
	Blocks    []PlacedBlock `json:"blocks" yaml:"blocks"`
	Intensity string        `json:"intensity" yaml:"intensity"`
	Type      DayType       `json:"type" yaml:"type"`
}

// EmptyDay returns a training day with no blocks.
func EmptyDay() Day {
	return Day{Blocks: []PlacedBlock{}, Type: DayTraining}
}

// IsSpecial reports whether the day is a rest/match/free designation: its sole
// block is a special marker. The Type tag is not consulted.
func (d Day) IsSpecial() bool {
	return len(d.Blocks) == 1 && DayType(d.Blocks[0].BlockID).IsSpecial()
}

// Normalize re-derives Type from the block content: a day whose sole block is a
// special marker takes that marker's type, every other day is training.
func (d *Day) Normalize() {
	if d.Blocks == nil {
		d.Blocks = []PlacedBlock{}
	}
	if d.IsSpecial() {
		d.Type = DayType(d.Blocks[0].BlockID)
		return
	}
	d.Type = DayTraining
}

// Clone returns a deep copy of the day.
func (d Day) Clone() Day {
	out := d
	out.Blocks = make([]PlacedBlock, len(d.Blocks))
	copy(out.Blocks, d.Blocks)
	return out
}

// Week maps each fixed day name to its Day.
type Week map[DayName]Day

// NewWeek returns seven empty training days.
func NewWeek() Week {
	w := make(Week, len(Days))
	for _, d := range Days {
		w[d] = EmptyDay()
	}
	return w
}

// Complete fills in any missing day with an empty training day, drops entries
// that are not one of the seven fixed days and normalizes every day's Type.
// A day tagged special with no blocks gets its marker block.
func (w Week) Complete() Week {
	out := make(Week, len(Days))
	for _, d := range Days {
		day, ok := w[d]
		if !ok {
			day = EmptyDay()
		}
		if len(day.Blocks) == 0 && day.Type.IsSpecial() {
			day.Blocks = []PlacedBlock{SpecialBlock(day.Type)}
		}
		day.Normalize()
		out[d] = day
	}
	return out
}

// Clone returns a deep copy of the week.
func (w Week) Clone() Week {
	out := make(Week, len(w))
	for name, day := range w {
		out[name] = day.Clone()
	}
	return out
}

// BlockCount returns the number of placed blocks across all days.
func (w Week) BlockCount() int {
	n := 0
	for _, d := range Days {
		n += len(w[d].Blocks)
	}
	return n
}

// HasBlocks reports whether any day holds at least one block.
func (w Week) HasBlocks() bool {
	return w.BlockCount() > 0
}

// WeekPlan is a persisted week for one player.
type WeekPlan struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"playerId"`
	Week      string    `json:"week"`
	Days      Week      `json:"days"`
	TotalRPE  int       `json:"totalRPE"`
	CreatedAt time.Time `json:"createdAt"`
}

// Key returns the structured identity of the plan.
func (p *WeekPlan) Key() Key {
	return Key{PlayerID: p.PlayerID, Week: p.Week}
}

// New builds a plan for key from a snapshot of days. The days are cloned and
// completed and TotalRPE is computed from that same snapshot.
func New(key Key, days Week, createdAt time.Time) *WeekPlan {
	snapshot := days.Clone().Complete()
	return &WeekPlan{
		ID:        key.String(),
		PlayerID:  key.PlayerID,
		Week:      key.Week,
		Days:      snapshot,
		TotalRPE:  WeekLoad(snapshot),
		CreatedAt: createdAt.UTC(),
	}
}

// Recompute refreshes TotalRPE from Days.
func (p *WeekPlan) Recompute() {
	p.Days = p.Days.Complete()
	p.TotalRPE = WeekLoad(p.Days)
}
