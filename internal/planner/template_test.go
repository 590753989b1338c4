package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meltforce/blockplan/internal/catalog"
	"github.com/meltforce/blockplan/internal/plan"
)

func testCatalog() *catalog.Catalog {
	return catalog.New(catalog.TemplateDocument{
		Templates: []catalog.Template{
			{
				Name:       "Aufbau",
				LevelRange: "1-3",
				Weeks: []catalog.TemplateWeek{
					{
						TotalRPE: 330,
						Days: map[plan.DayName]catalog.TemplateDay{
							plan.Saturday: {Type: plan.DayMatch, Intensity: "hoch"},
							plan.Monday: {Intensity: "mittel", Blocks: []catalog.TemplateBlock{
								{BlockID: "ukk", RPE: 7, Duration: 30},
								{BlockID: "retired", RPE: 4, Duration: 15},
							}},
						},
					},
					{
						Days: map[plan.DayName]catalog.TemplateDay{
							plan.Tuesday: {Blocks: []catalog.TemplateBlock{{BlockID: "okk", RPE: 6, Duration: 20}}},
						},
					},
				},
			},
			{
				Name:  "Einzel",
				Weeks: []catalog.TemplateWeek{{Days: map[plan.DayName]catalog.TemplateDay{plan.Sunday: {Type: plan.DayFree}}}},
			},
			{Name: "Leer"},
		},
	}, nil)
}

func TestInstantiate_DaysAndSpecialTypes(t *testing.T) {
	c := testCatalog()
	tmpl, err := c.Template(0)
	require.NoError(t, err)

	w, err := Instantiate(tmpl, 0, c)
	require.NoError(t, err)
	require.Len(t, w, 7)

	sat := w[plan.Saturday]
	assert.Equal(t, plan.DayMatch, sat.Type)
	assert.Equal(t, "hoch", sat.Intensity)
	assert.Equal(t, []plan.PlacedBlock{{BlockID: "match", Code: "Match"}}, sat.Blocks)
	assert.Zero(t, plan.DayLoad(sat))

	mon := w[plan.Monday]
	assert.Equal(t, plan.DayTraining, mon.Type)
	assert.Equal(t, "mittel", mon.Intensity)
	require.Len(t, mon.Blocks, 2)
	assert.Equal(t, plan.PlacedBlock{BlockID: "ukk", Code: "UKK", RPE: 7, Duration: 30}, mon.Blocks[0], "authored values win over catalog defaults")
	assert.Equal(t, "retired", mon.Blocks[1].Code, "unknown ids keep the raw id as code")

	assert.Equal(t, plan.EmptyDay(), w[plan.Friday])
}

func TestInstantiate_Deterministic(t *testing.T) {
	c := testCatalog()
	tmpl, err := c.Template(0)
	require.NoError(t, err)

	a, err := Instantiate(tmpl, 1, c)
	require.NoError(t, err)
	b, err := Instantiate(tmpl, 1, c)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestInstantiate_WeekOutOfRange(t *testing.T) {
	c := testCatalog()
	tmpl, _ := c.Template(0)
	_, err := Instantiate(tmpl, 2, c)
	assert.Error(t, err)
}

func TestLoadTemplate_NothingSelected(t *testing.T) {
	e := NewEditor(plan.Key{PlayerID: "p1", Week: "2024-W10"}, nil, testCatalog())
	_, err := e.LoadTemplate(-1)
	assert.ErrorIs(t, err, ErrNoTemplateSelected)
}

func TestLoadTemplate_SingleWeekAppliesImmediately(t *testing.T) {
	e := NewEditor(plan.Key{PlayerID: "p1", Week: "2024-W10"}, nil, testCatalog())
	require.NoError(t, e.PlaceBlock(plan.Monday, "ukk"))

	res, err := e.LoadTemplate(1)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Empty(t, res.Options)

	w := e.Week()
	assert.Empty(t, w[plan.Monday].Blocks, "instantiation replaces the week")
	assert.Equal(t, plan.DayFree, w[plan.Sunday].Type)
}

func TestLoadTemplate_MultiWeekPromptsFirst(t *testing.T) {
	e := NewEditor(plan.Key{PlayerID: "p1", Week: "2024-W10"}, nil, testCatalog())
	require.NoError(t, e.PlaceBlock(plan.Friday, "bh1"))

	res, err := e.LoadTemplate(0)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, []WeekOption{
		{Label: "Woche 1 (RPE: 330)", Value: 0},
		{Label: "Woche 2", Value: 1},
	}, res.Options)
	assert.Len(t, e.Week()[plan.Friday].Blocks, 1, "week untouched until a week is chosen")

	_, ok := e.PendingTemplate()
	require.True(t, ok)

	_, err = e.ChooseTemplateWeek(5)
	assert.Error(t, err)

	res, err = e.ChooseTemplateWeek(1)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, 1, res.Week)
	assert.Len(t, e.Week()[plan.Tuesday].Blocks, 1)
	assert.Empty(t, e.Week()[plan.Friday].Blocks)

	_, err = e.ChooseTemplateWeek(0)
	assert.ErrorIs(t, err, ErrNoPendingTemplate)
}

func TestLoadTemplate_SingleWeekDropsPendingChoice(t *testing.T) {
	e := NewEditor(plan.Key{PlayerID: "p1", Week: "2024-W10"}, nil, testCatalog())

	res, err := e.LoadTemplate(0)
	require.NoError(t, err)
	require.False(t, res.Applied)

	res, err = e.LoadTemplate(1)
	require.NoError(t, err)
	require.True(t, res.Applied)
	_, ok := e.PendingTemplate()
	assert.False(t, ok)

	_, err = e.ChooseTemplateWeek(0)
	assert.ErrorIs(t, err, ErrNoPendingTemplate)
	assert.Equal(t, plan.DayFree, e.Week()[plan.Sunday].Type, "the single-week template stays applied")
	assert.Empty(t, e.Week()[plan.Monday].Blocks)
}

func TestSelectWeek(t *testing.T) {
	c := testCatalog()
	multi, _ := c.Template(0)
	single, _ := c.Template(1)
	empty, _ := c.Template(2)

	_, err := SelectWeek(multi, -1)
	assert.ErrorIs(t, err, ErrWeekChoiceRequired)

	w, err := SelectWeek(single, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, w)

	_, err = SelectWeek(empty, 0)
	assert.ErrorIs(t, err, ErrEmptyTemplate)
}

func TestDescribeTemplates(t *testing.T) {
	infos := DescribeTemplates(testCatalog())
	require.Len(t, infos, 3)

	assert.Equal(t, 0, infos[0].Index)
	assert.Equal(t, "1-3", infos[0].LevelRange)
	assert.Equal(t, []WeekOption{
		{Label: "Woche 1 (RPE: 330)", Value: 0},
		{Label: "Woche 2", Value: 1},
	}, infos[0].Weeks)

	assert.Equal(t, "Leer", infos[2].Name)
	assert.Empty(t, infos[2].Weeks)
}

func TestPreview(t *testing.T) {
	c := testCatalog()

	p, err := Preview(c, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Aufbau", p.Template)
	assert.Equal(t, 210+60, p.Summary.WeekLoad)
	assert.Equal(t, plan.DayMatch, p.Days[plan.Saturday].Type)

	_, err = Preview(c, 2, 0)
	assert.ErrorIs(t, err, ErrWeekOutOfRange)

	_, err = Preview(c, 9, 0)
	assert.ErrorIs(t, err, catalog.ErrTemplateNotFound)
}
