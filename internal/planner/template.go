package planner

import (
	"errors"
	"fmt"

	"github.com/meltforce/blockplan/internal/catalog"
	"github.com/meltforce/blockplan/internal/plan"
)

// WeekOption is one entry of the week choice offered for a multi-week template.
type WeekOption struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// WeekOptions lists the weeks of t as "Woche N", with the RPE hint when present.
func WeekOptions(t catalog.Template) []WeekOption {
	out := make([]WeekOption, len(t.Weeks))
	for i, w := range t.Weeks {
		label := fmt.Sprintf("Woche %d", i+1)
		if w.TotalRPE != 0 {
			label += fmt.Sprintf(" (RPE: %d)", w.TotalRPE)
		}
		out[i] = WeekOption{Label: label, Value: i}
	}
	return out
}

// SelectWeek validates a week choice for t. A negative choice means none was
// made, which is only acceptable for a single-week template.
func SelectWeek(t catalog.Template, choice int) (int, error) {
	if len(t.Weeks) == 0 {
		return 0, ErrEmptyTemplate
	}
	if choice < 0 {
		if len(t.Weeks) > 1 {
			return 0, ErrWeekChoiceRequired
		}
		return 0, nil
	}
	if choice >= len(t.Weeks) {
		return 0, fmt.Errorf("%w: week %d, template %q has %d", ErrWeekOutOfRange, choice+1, t.Name, len(t.Weeks))
	}
	return choice, nil
}

// Instantiate expands week weekIdx of t into a complete week. Days the
// template leaves out are empty training days, special days carry a single
// marker block, and authored block values win over catalog defaults.
func Instantiate(t catalog.Template, weekIdx int, c *catalog.Catalog) (plan.Week, error) {
	if weekIdx < 0 || weekIdx >= len(t.Weeks) {
		return nil, fmt.Errorf("%w: week %d, template %q has %d", ErrWeekOutOfRange, weekIdx+1, t.Name, len(t.Weeks))
	}
	def := t.Weeks[weekIdx]

	w := plan.NewWeek()
	for _, name := range plan.Days {
		td, ok := def.Days[name]
		if !ok {
			continue
		}
		if td.Type.IsSpecial() {
			w[name] = plan.Day{
				Blocks:    []plan.PlacedBlock{plan.SpecialBlock(td.Type)},
				Intensity: td.Intensity,
				Type:      td.Type,
			}
			continue
		}
		day := plan.Day{Blocks: make([]plan.PlacedBlock, 0, len(td.Blocks)), Intensity: td.Intensity}
		for _, b := range td.Blocks {
			day.Blocks = append(day.Blocks, plan.PlacedBlock{
				BlockID:  b.BlockID,
				Code:     c.Code(b.BlockID),
				RPE:      b.RPE,
				Duration: b.Duration,
			})
		}
		day.Normalize()
		w[name] = day
	}
	return w, nil
}

// TemplateInfo describes one catalog template and its week choices.
type TemplateInfo struct {
	Index      int          `json:"index"`
	Name       string       `json:"name"`
	LevelRange string       `json:"levelRange"`
	Weeks      []WeekOption `json:"weeks"`
}

// DescribeTemplates lists the catalog templates in order.
func DescribeTemplates(c *catalog.Catalog) []TemplateInfo {
	templates := c.Templates()
	out := make([]TemplateInfo, 0, len(templates))
	for i, t := range templates {
		out = append(out, TemplateInfo{Index: i, Name: t.Name, LevelRange: t.LevelRange, Weeks: WeekOptions(t)})
	}
	return out
}

// TemplatePreview is one instantiated template week with its aggregates.
type TemplatePreview struct {
	Template string       `json:"template"`
	Week     int          `json:"week"`
	Days     plan.Week    `json:"days"`
	Summary  plan.Summary `json:"summary"`
}

// Preview instantiates week weekIdx of the template at idx without touching any plan.
func Preview(c *catalog.Catalog, idx, weekIdx int) (*TemplatePreview, error) {
	t, err := c.Template(idx)
	if err != nil {
		return nil, err
	}
	w, err := Instantiate(t, weekIdx, c)
	if err != nil {
		return nil, err
	}
	return &TemplatePreview{Template: t.Name, Week: weekIdx, Days: w, Summary: plan.Summarize(w)}, nil
}

// TemplateLoad is the outcome of LoadTemplate: either the week was applied,
// or Options must be answered with ChooseTemplateWeek.
type TemplateLoad struct {
	Template string       `json:"template"`
	Applied  bool         `json:"applied"`
	Week     int          `json:"week"`
	Options  []WeekOption `json:"options,omitempty"`
}

// LoadTemplate starts loading the catalog template at idx. A single-week
// template replaces the working week immediately; a multi-week template is
// held until ChooseTemplateWeek. Loading a template drops any earlier pending
// one. A negative idx means nothing was selected.
func (e *Editor) LoadTemplate(idx int) (TemplateLoad, error) {
	if idx < 0 {
		return TemplateLoad{}, ErrNoTemplateSelected
	}
	t, err := e.catalog.Template(idx)
	if err != nil {
		return TemplateLoad{}, err
	}
	e.pendingTemplate = nil
	week, err := SelectWeek(t, -1)
	switch {
	case errors.Is(err, ErrWeekChoiceRequired):
		e.pendingTemplate = &t
		return TemplateLoad{Template: t.Name, Options: WeekOptions(t)}, nil
	case err != nil:
		return TemplateLoad{}, err
	}
	if err := e.apply(t, week); err != nil {
		return TemplateLoad{}, err
	}
	return TemplateLoad{Template: t.Name, Applied: true, Week: week}, nil
}

// ChooseTemplateWeek applies the pending multi-week template at weekIdx.
func (e *Editor) ChooseTemplateWeek(weekIdx int) (TemplateLoad, error) {
	if e.pendingTemplate == nil {
		return TemplateLoad{}, ErrNoPendingTemplate
	}
	t := *e.pendingTemplate
	week, err := SelectWeek(t, weekIdx)
	if err != nil {
		return TemplateLoad{}, err
	}
	if err := e.apply(t, week); err != nil {
		return TemplateLoad{}, err
	}
	e.pendingTemplate = nil
	return TemplateLoad{Template: t.Name, Applied: true, Week: week}, nil
}

// PendingTemplate returns the template waiting for a week choice.
func (e *Editor) PendingTemplate() (catalog.Template, bool) {
	if e.pendingTemplate == nil {
		return catalog.Template{}, false
	}
	return *e.pendingTemplate, true
}

// CancelTemplate drops a pending template without touching the week.
func (e *Editor) CancelTemplate() { e.pendingTemplate = nil }

func (e *Editor) apply(t catalog.Template, weekIdx int) error {
	w, err := Instantiate(t, weekIdx, e.catalog)
	if err != nil {
		return err
	}
	e.week = w
	return nil
}
