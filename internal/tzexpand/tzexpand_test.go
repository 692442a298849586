package tzexpand

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tzcore/tzcore/tzdata"
)

func dayNum(n int) tzdata.Day                         { return tzdata.Day{Form: tzdata.DayFormDayNum, Num: n} }
func dayLast(wd time.Weekday) tzdata.Day              { return tzdata.Day{Form: tzdata.DayFormLast, Day: wd} }
func dayAfter(n int, wd time.Weekday) tzdata.Day      { return tzdata.Day{Form: tzdata.DayFormAfter, Num: n, Day: wd} }
func dayBefore(n int, wd time.Weekday) tzdata.Day     { return tzdata.Day{Form: tzdata.DayFormBefore, Num: n, Day: wd} }
func wallClock(d time.Duration) tzdata.Time           { return tzdata.Time{Duration: d, Form: tzdata.WallClock} }
func daylightSaving(d time.Duration) tzdata.Time      { return tzdata.Time{Duration: d, Form: tzdata.DaylightSavingTime} }

func TestDayOfMonth(t *testing.T) {
	type in struct {
		Year  int
		Month time.Month
		Day   tzdata.Day
	}
	type want struct {
		Year  int
		Month time.Month
		Day   int
	}
	cases := []struct {
		in   in
		want want
	}{
		{in{2021, time.March, dayNum(23)}, want{2021, time.March, 23}},
		{in{2021, time.March, dayLast(time.Sunday)}, want{2021, time.March, 28}},

		// Leap day
		{in{2020, time.February, dayAfter(28, time.Saturday)}, want{2020, time.February, 29}},
		{in{2020, time.February, dayLast(time.Saturday)}, want{2020, time.February, 29}},
		// Leap day in a non-leap year
		{in{2021, time.February, dayAfter(28, time.Saturday)}, want{2021, time.March, 6}},

		// Day of week is on the exact day of month
		{in{2021, time.March, dayAfter(28, time.Sunday)}, want{2021, time.March, 28}},
		// Day of week is later in the same month
		{in{2021, time.March, dayAfter(15, time.Sunday)}, want{2021, time.March, 21}},
		// Day of week is next month
		{in{2021, time.March, dayAfter(30, time.Sunday)}, want{2021, time.April, 4}},
		// Day of week is next year
		{in{2021, time.December, dayAfter(30, time.Sunday)}, want{2022, time.January, 2}},

		// Day of week is on the exact day of month
		{in{2021, time.March, dayBefore(28, time.Sunday)}, want{2021, time.March, 28}},
		// Day of week is earlier in the same month
		{in{2021, time.March, dayBefore(15, time.Sunday)}, want{2021, time.March, 14}},
		// Day of week is last month
		{in{2021, time.March, dayBefore(5, time.Sunday)}, want{2021, time.February, 28}},
		// Day of week is last year
		{in{2021, time.January, dayBefore(2, time.Sunday)}, want{2020, time.December, 27}},
	}

	for _, c := range cases {
		y, m, d := DayOfMonth(c.in.Year, c.in.Month, c.in.Day)
		got := want{y, m, d}
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Errorf("DayOfMonth(%+v) mismatch (-want +got):\n%s", c.in, diff)
		}
	}
}

func TestExpandRule(t *testing.T) {
	eu := func(from, to tzdata.Year) tzdata.RuleLine {
		return tzdata.RuleLine{
			Name:   "EU",
			From:   from,
			To:     to,
			In:     time.March,
			On:     dayLast(time.Sunday),
			At:     wallClock(11 * time.Hour),
			Save:   daylightSaving(1 * time.Hour),
			Letter: "S",
		}
	}
	occ := func(year int, day int) Occurrence {
		return Occurrence{Year: year, In: time.March, On: day}
	}

	cases := []struct {
		name string
		from Moment
		to   Moment
		in   tzdata.RuleLine
		want []Occurrence
	}{
		{
			name: "Single year, not limited by from and to",
			from: Moment{Year: 1980},
			to:   Moment{Year: 1990},
			in:   eu(1981, 1981),
			want: []Occurrence{occ(1981, 29)},
		},
		{
			name: "Multiple years, not limited by from and to",
			from: Moment{Year: 1980},
			to:   Moment{Year: 1990},
			in:   eu(1981, 1983),
			want: []Occurrence{occ(1981, 29), occ(1982, 28), occ(1983, 27)},
		},
		{
			name: "Single year, excluded by from and to",
			from: Moment{Year: 1990},
			to:   Moment{Year: 1993},
			in:   eu(1981, 1981),
			want: nil,
		},
		{
			name: "Multiple years, limited by from and to",
			from: Moment{Year: 1982},
			to:   Moment{Year: 1982, Month: time.March, Day: 28},
			in:   eu(1981, 1983),
			want: []Occurrence{occ(1982, 28)},
		},
		{
			name: "Starts at MinYear",
			from: Moment{Year: 1982},
			to:   Moment{Year: 1983, Month: time.May},
			in:   eu(tzdata.MinYear, 1983),
			want: []Occurrence{occ(1982, 28), occ(1983, 27)},
		},
		{
			name: "Ends at MaxYear",
			from: Moment{Year: 1982},
			to:   Moment{Year: 1983, Month: time.May},
			in:   eu(1982, tzdata.MaxYear),
			want: []Occurrence{occ(1982, 28), occ(1983, 27)},
		},
		{
			name: "Starts at MinYear, ends at MaxYear",
			from: Moment{Year: 1982},
			to:   Moment{Year: 1983, Month: time.May},
			in:   eu(tzdata.MinYear, tzdata.MaxYear),
			want: []Occurrence{occ(1982, 28), occ(1983, 27)},
		},
	}

	ignoreRule := cmp.Comparer(func(a, b tzdata.RuleLine) bool { return true })
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := expandRule(c.from, c.to, c.in)
			if diff := cmp.Diff(c.want, got, ignoreRule); diff != "" {
				t.Errorf("expandRule(%v) mismatch (-want +got):\n%s", c.in, diff)
			}
		})
	}
}
