package plan

// DayLoad is the RPE-weighted load of a day: the sum of rpe*duration over its
// blocks. Special days carry no load regardless of stored values.
func DayLoad(d Day) int {
	if d.IsSpecial() {
		return 0
	}
	total := 0
	for _, b := range d.Blocks {
		total += b.RPE * b.Duration
	}
	return total
}

// DayDuration is the sum of block durations in minutes. Zero for special days.
func DayDuration(d Day) int {
	if d.IsSpecial() {
		return 0
	}
	total := 0
	for _, b := range d.Blocks {
		total += b.Duration
	}
	return total
}

// WeekLoad sums DayLoad over the seven fixed days. Days missing from w count as zero.
func WeekLoad(w Week) int {
	total := 0
	for _, name := range Days {
		total += DayLoad(w[name])
	}
	return total
}

// DaySummary is the per-day aggregate shown under each day column.
type DaySummary struct {
	Day      DayName `json:"day"`
	Duration int     `json:"duration"`
	Load     int     `json:"load"`
}

// Summary holds the per-day and whole-week aggregates of a week.
type Summary struct {
	Days     []DaySummary `json:"days"`
	WeekLoad int          `json:"weekLoad"`
}

// Summarize computes all aggregates of w in display order.
func Summarize(w Week) Summary {
	s := Summary{Days: make([]DaySummary, 0, len(Days))}
	for _, name := range Days {
		d := w[name]
		load := DayLoad(d)
		s.Days = append(s.Days, DaySummary{Day: name, Duration: DayDuration(d), Load: load})
		s.WeekLoad += load
	}
	return s
}
