package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meltforce/blockplan/internal/catalog"
	"github.com/meltforce/blockplan/internal/plan"
)

func newTestEditor() *Editor {
	return NewEditor(plan.Key{PlayerID: "player1", Week: "2024-W10"}, nil, catalog.Builtin())
}

func TestPlaceBlock_CatalogDefaults(t *testing.T) {
	e := newTestEditor()
	require.NoError(t, e.PlaceBlock(plan.Monday, "ukk"))

	w := e.Week()
	require.Len(t, w[plan.Monday].Blocks, 1)
	assert.Equal(t, plan.PlacedBlock{BlockID: "ukk", Code: "UKK", RPE: 6, Duration: 20}, w[plan.Monday].Blocks[0])
	assert.Equal(t, 120, e.Summary().WeekLoad)
	for _, d := range plan.Days {
		if d != plan.Monday {
			assert.Empty(t, w[d].Blocks, d)
		}
	}
}

func TestPlaceBlock_UnknownIDPlacesZeroBlock(t *testing.T) {
	e := newTestEditor()
	require.NoError(t, e.PlaceBlock(plan.Friday, "does-not-exist"))

	blocks := e.Week()[plan.Friday].Blocks
	require.Len(t, blocks, 1)
	assert.Equal(t, 0, blocks[0].RPE)
	assert.Equal(t, 0, blocks[0].Duration)
	assert.Equal(t, "does-not-exist", blocks[0].Code)
}

func TestPlaceBlock_SpecialMarkerMakesSpecialDay(t *testing.T) {
	e := newTestEditor()
	require.NoError(t, e.PlaceBlock(plan.Saturday, "match"))
	assert.Equal(t, plan.DayMatch, e.Week()[plan.Saturday].Type)

	require.NoError(t, e.PlaceBlock(plan.Saturday, "ukk"))
	assert.Equal(t, plan.DayTraining, e.Week()[plan.Saturday].Type)
}

func TestRemoveBlock_SpecialMarkerLeavesTrainingDay(t *testing.T) {
	e := newTestEditor()
	require.NoError(t, e.PlaceBlock(plan.Saturday, "match"))
	require.NoError(t, e.RemoveBlock(plan.Saturday, 0))

	sat := e.Week()[plan.Saturday]
	assert.Equal(t, plan.DayTraining, sat.Type)
	assert.Empty(t, sat.Blocks)
	assert.Empty(t, e.Week().Complete()[plan.Saturday].Blocks)
}

func TestPlaceBlock_UnknownDay(t *testing.T) {
	e := newTestEditor()
	assert.ErrorIs(t, e.PlaceBlock(plan.DayName("sunday"), "ukk"), ErrUnknownDay)
}

func TestRemoveBlock(t *testing.T) {
	e := newTestEditor()
	require.NoError(t, e.PlaceBlock(plan.Monday, "ukk"))
	require.NoError(t, e.PlaceBlock(plan.Monday, "okk"))

	require.NoError(t, e.RemoveBlock(plan.Monday, 5))
	assert.Len(t, e.Week()[plan.Monday].Blocks, 2)

	require.NoError(t, e.RemoveBlock(plan.Monday, 0))
	blocks := e.Week()[plan.Monday].Blocks
	require.Len(t, blocks, 1)
	assert.Equal(t, "okk", blocks[0].BlockID)
}

func TestMoveBlock_PreservesCountsAndValues(t *testing.T) {
	e := newTestEditor()
	require.NoError(t, e.PlaceBlock(plan.Monday, "ukk"))
	require.NoError(t, e.PlaceBlock(plan.Monday, "okk"))
	require.NoError(t, e.PlaceBlock(plan.Wednesday, "bh1"))
	require.NoError(t, e.SetBlockValues(plan.Monday, 1, 8, 45))

	before := e.Week()
	require.NoError(t, e.MoveBlock(plan.Monday, 1, plan.Wednesday))
	after := e.Week()

	assert.Len(t, after[plan.Monday].Blocks, len(before[plan.Monday].Blocks)-1)
	assert.Len(t, after[plan.Wednesday].Blocks, len(before[plan.Wednesday].Blocks)+1)
	assert.Equal(t, before.BlockCount(), after.BlockCount())

	moved := after[plan.Wednesday].Blocks[1]
	assert.Equal(t, plan.PlacedBlock{BlockID: "okk", Code: "OKK", RPE: 8, Duration: 45}, moved)
}

func TestMoveBlock_SameDayReappends(t *testing.T) {
	e := newTestEditor()
	require.NoError(t, e.PlaceBlock(plan.Monday, "ukk"))
	require.NoError(t, e.PlaceBlock(plan.Monday, "okk"))
	require.NoError(t, e.PlaceBlock(plan.Monday, "bh1"))

	require.NoError(t, e.MoveBlock(plan.Monday, 0, plan.Monday))

	var ids []string
	for _, b := range e.Week()[plan.Monday].Blocks {
		ids = append(ids, b.BlockID)
	}
	assert.Equal(t, []string{"okk", "bh1", "ukk"}, ids)
}

func TestMoveBlock_OutOfRangeIsNoop(t *testing.T) {
	e := newTestEditor()
	require.NoError(t, e.PlaceBlock(plan.Monday, "ukk"))
	require.NoError(t, e.MoveBlock(plan.Monday, 3, plan.Tuesday))
	assert.Len(t, e.Week()[plan.Monday].Blocks, 1)
	assert.Empty(t, e.Week()[plan.Tuesday].Blocks)
}

func TestMoveBlock_SpecialMarkerRetagsDays(t *testing.T) {
	e := newTestEditor()
	require.NoError(t, e.PlaceBlock(plan.Saturday, "frei"))
	require.NoError(t, e.MoveBlock(plan.Saturday, 0, plan.Sunday))

	w := e.Week()
	assert.Equal(t, plan.DayTraining, w[plan.Saturday].Type)
	assert.Equal(t, plan.DayFree, w[plan.Sunday].Type)
}

func TestSetIntensityAndBlockValues(t *testing.T) {
	e := newTestEditor()
	require.NoError(t, e.SetIntensity(plan.Tuesday, "hoch"))
	assert.Equal(t, "hoch", e.Week()[plan.Tuesday].Intensity)

	assert.ErrorIs(t, e.SetBlockValues(plan.Tuesday, 0, 5, 5), ErrNoSuchBlock)
	require.NoError(t, e.PlaceBlock(plan.Tuesday, "ukk"))
	assert.ErrorIs(t, e.SetBlockValues(plan.Tuesday, 0, -1, 5), ErrInvalidValue)
}

func TestPick_LastWriteWins(t *testing.T) {
	e := newTestEditor()
	e.Pick("ukk")
	e.Pick("okk")

	id, ok := e.Pending()
	require.True(t, ok)
	assert.Equal(t, "okk", id)

	require.NoError(t, e.PickDay(plan.Thursday))
	blocks := e.Week()[plan.Thursday].Blocks
	require.Len(t, blocks, 1)
	assert.Equal(t, "okk", blocks[0].BlockID)

	_, ok = e.Pending()
	assert.False(t, ok, "pending slot clears after placement")

	require.NoError(t, e.PickDay(plan.Thursday))
	assert.Len(t, e.Week()[plan.Thursday].Blocks, 1)
}

func TestDrop_CatalogOriginCopies(t *testing.T) {
	e := newTestEditor()
	e.BeginDrag(CatalogOrigin{BlockID: "kv1", Code: "KV1"})
	require.NoError(t, e.Drop(plan.Sunday))

	blocks := e.Week()[plan.Sunday].Blocks
	require.Len(t, blocks, 1)
	assert.Equal(t, plan.PlacedBlock{BlockID: "kv1", Code: "KV1", RPE: 1, Duration: 10}, blocks[0])
	assert.Nil(t, e.Dragging())
}

func TestDrop_PlacedOriginMoves(t *testing.T) {
	e := newTestEditor()
	require.NoError(t, e.PlaceBlock(plan.Monday, "ukk"))
	e.BeginDrag(PlacedOrigin{Day: plan.Monday, Index: 0})
	require.NoError(t, e.Drop(plan.Friday))

	w := e.Week()
	assert.Empty(t, w[plan.Monday].Blocks)
	assert.Len(t, w[plan.Friday].Blocks, 1)
}

func TestDrop_WithoutOriginIsNoop(t *testing.T) {
	e := newTestEditor()
	before := e.Week()
	require.NoError(t, e.Drop(plan.Monday))
	assert.Equal(t, before, e.Week())

	e.BeginDrag(PlacedOrigin{Day: plan.Monday, Index: 0})
	e.CancelDrag()
	require.NoError(t, e.Drop(plan.Friday))
	assert.Equal(t, before, e.Week())
}

func TestClearWeek_NeedsConfirmationWhenBlocksExist(t *testing.T) {
	e := newTestEditor()
	require.NoError(t, e.ClearWeek(false), "an empty week clears without confirmation")

	require.NoError(t, e.PlaceBlock(plan.Monday, "ukk"))
	assert.ErrorIs(t, e.ClearWeek(false), ErrConfirmRequired)
	assert.Equal(t, 1, e.Week().BlockCount())

	require.NoError(t, e.ClearWeek(true))
	assert.Equal(t, plan.NewWeek(), e.Week())
}
