package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func day(blocks ...PlacedBlock) Day {
	d := Day{Blocks: blocks}
	d.Normalize()
	return d
}

func TestDayLoad_IsRPETimesDuration(t *testing.T) {
	d := day(
		PlacedBlock{BlockID: "wu-spr", RPE: 5, Duration: 30},
		PlacedBlock{BlockID: "ukk", RPE: 6, Duration: 20},
	)
	assert.Equal(t, 5*30+6*20, DayLoad(d))
	assert.Equal(t, 50, DayDuration(d))
}

func TestDayLoad_DoubleDurationCountsDouble(t *testing.T) {
	short := day(PlacedBlock{BlockID: "ukk", RPE: 6, Duration: 10})
	long := day(PlacedBlock{BlockID: "ukk", RPE: 6, Duration: 20})
	assert.Equal(t, 2*DayLoad(short), DayLoad(long))
}

func TestDayLoad_ZeroForEmptyAndMissingFields(t *testing.T) {
	assert.Zero(t, DayLoad(Day{}))
	assert.Zero(t, DayDuration(Day{}))
	assert.Zero(t, DayLoad(day(PlacedBlock{BlockID: "x", RPE: 7})))
	assert.Zero(t, DayLoad(day(PlacedBlock{BlockID: "x", Duration: 15})))
}

func TestDayLoad_SpecialDayIgnoresStoredNumbers(t *testing.T) {
	for _, typ := range SpecialTypes {
		d := Day{
			Type:   typ,
			Blocks: []PlacedBlock{{BlockID: string(typ), Code: typ.Label(), RPE: 9, Duration: 90}},
		}
		assert.Zero(t, DayLoad(d), typ)
		assert.Zero(t, DayDuration(d), typ)
	}
}

func TestWeekLoad_SumsDays(t *testing.T) {
	w := NewWeek()
	w[Saturday] = day(PlacedBlock{BlockID: "ukk", RPE: 6, Duration: 20})
	w[Monday] = day(PlacedBlock{BlockID: "okk", RPE: 6, Duration: 20}, PlacedBlock{BlockID: "kv1", RPE: 1, Duration: 10})
	w[Friday] = day(SpecialBlock(DayMatch))

	want := 0
	for _, d := range Days {
		want += DayLoad(w[d])
	}
	assert.Equal(t, want, WeekLoad(w))
	assert.Equal(t, 120+120+10, WeekLoad(w))

	s := Summarize(w)
	assert.Equal(t, WeekLoad(w), s.WeekLoad)
	assert.Len(t, s.Days, 7)
	assert.Equal(t, Saturday, s.Days[0].Day)
	assert.Equal(t, 30, s.Days[2].Duration)
}

func TestWeekLoad_ToleratesMissingDays(t *testing.T) {
	w := Week{Monday: day(PlacedBlock{BlockID: "ukk", RPE: 2, Duration: 5})}
	assert.Equal(t, 10, WeekLoad(w))
}
