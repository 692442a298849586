package tzexpand

import (
	"fmt"
	"time"

	"github.com/tzcore/tzcore/internal/unixtime"
	"github.com/tzcore/tzcore/tzdata"
)

// Earliest returns the Unix timestamp of the earliest instant covered by u,
// defaulting any trailing UNTIL fields to their earliest possible value as
// the tzdata format requires.
func Earliest(u tzdata.Until) int64 {
	e := earliest(u)

	hours := int(e.Time.Duration / time.Hour)
	minutes := int(e.Time.Duration/time.Minute) % 60
	seconds := int(e.Time.Duration/time.Second) % 60

	return unixtime.FromDateTime(e.Year, int(e.Month), e.Day.Num, hours, minutes, seconds)
}

func earliest(u tzdata.Until) tzdata.Until {
	// If the UNTIL column is not defined, return the zero value.
	if !u.Defined {
		return u
	}

	// If a part is not defined, set it to the earliest possible value.
	if !u.Parts.Has(tzdata.UntilMonth) {
		u.Month = time.January
		u.Parts = u.Parts.Set(tzdata.UntilMonth)
	}

	// If the day is defined, set it to the earliest possible value for the month.
	if u.Parts.Has(tzdata.UntilDay) {
		if u.Day.Form != tzdata.DayFormDayNum {
			// Calculate the real day of the month.
			var num int
			u.Year, u.Month, num = DayOfMonth(u.Year, u.Month, u.Day)
			u.Day = tzdata.Day{Form: tzdata.DayFormDayNum, Num: num}
		}
	} else {
		u.Day = tzdata.Day{Form: tzdata.DayFormDayNum, Num: 1}
		u.Parts = u.Parts.Set(tzdata.UntilDay)
	}

	if !u.Parts.Has(tzdata.UntilTime) {
		u.Time = tzdata.Time{Duration: 0, Form: tzdata.WallClock}
		u.Parts = u.Parts.Set(tzdata.UntilTime)
	}

	return u
}

// DayOfMonth resolves a rule/zone ON-column day expression (a literal day
// number, "last<Weekday>", "<Weekday>>=N" or "<Weekday><=N") to a concrete
// calendar day, possibly spilling into a neighboring month as the >=/<=
// forms allow.
func DayOfMonth(year int, month time.Month, d tzdata.Day) (y int, m time.Month, day int) {
	switch d.Form {
	case tzdata.DayFormDayNum:
		return year, month, d.Num
	case tzdata.DayFormLast:
		num := lastWeekdayOfMonth(year, int(month), int(d.Day))
		return year, month, num
	case tzdata.DayFormAfter:
		y, m, day := nextWeekday(year, int(month), d.Num, int(d.Day))
		return y, time.Month(m), day
	case tzdata.DayFormBefore:
		y, m, day := lastWeekday(year, int(month), d.Num, int(d.Day))
		return y, time.Month(m), day
	}
	panic(fmt.Errorf("invalid DayForm: %v", d.Form))
}

var (
	// EpochMin is the earliest moment the compiler needs to consider when a
	// rule's FROM is "minimum": the IANA database itself never describes
	// transitions earlier than the mid-19th century LMT era.
	EpochMin = Moment{Year: 1847, Month: time.January, Day: 1}
	// DefaultEndMoment is the moment a rule's TO of "maximum" expands to
	// unless the caller requests a different horizon.
	DefaultEndMoment = Moment{Year: 2099, Month: time.December, Day: 31}
)

// Moment is a calendar instant with its year, month, and day already
// expanded, used to bound rule expansion to the window a compiled zone
// actually needs.
type Moment struct {
	Year  int
	Month time.Month
	Day   int
}

// UntilMoment returns the earliest calendar day covered by u, with any
// trailing fields defaulted the way the tzdata format requires, and
// reports whether u is defined at all (an undefined UNTIL means the zone
// continuation never ends).
func UntilMoment(u tzdata.Until) (Moment, bool) {
	if !u.Defined {
		return Moment{}, false
	}
	e := earliest(u)
	return Moment{Year: e.Year, Month: e.Month, Day: e.Day.Num}, true
}

// ToUTC converts a local calendar moment plus a rule/zone AT-style time
// field into a Unix timestamp in UTC. standardOffsetSeconds is the zone's
// STDOFF; activeSaveSeconds is the DST save in effect immediately before
// this instant, needed to interpret a wall-clock AT field (w suffix,
// the default) correctly, since "wall clock" means local time including
// whatever save was already in effect.
func ToUTC(year int, month time.Month, day int, at tzdata.Time, standardOffsetSeconds, activeSaveSeconds int32) int64 {
	h := int(at.Duration / time.Hour)
	m := int(at.Duration/time.Minute) % 60
	s := int(at.Duration/time.Second) % 60
	local := unixtime.FromDateTime(year, int(month), day, h, m, s)

	switch at.Form {
	case tzdata.UniversalTime:
		return local
	case tzdata.StandardTime:
		return local - int64(standardOffsetSeconds)
	default: // WallClock
		return local - int64(standardOffsetSeconds) - int64(activeSaveSeconds)
	}
}

// Occurrence is a single concrete (year, month, day) application of a named
// rule, after FROM/TO and ON have been resolved to a specific calendar date.
type Occurrence struct {
	Rule tzdata.RuleLine
	Year int
	In   time.Month
	On   int
}

// ExpandRules resolves every rule in r into its concrete yearly occurrences
// within [min, max], clamping indefinite FROM/TO bounds (tzdata's
// "minimum"/"maximum") to that window, and returns them ordered by the date
// they take effect.
func ExpandRules(min, max Moment, r []tzdata.RuleLine) []Occurrence {
	var occ []Occurrence
	for _, rule := range r {
		occ = append(occ, expandRule(min, max, rule)...)
	}
	sortOccurrences(occ)
	return occ
}

func sortOccurrences(occ []Occurrence) {
	for i := 1; i < len(occ); i++ {
		for j := i; j > 0 && less(occ[j], occ[j-1]); j-- {
			occ[j], occ[j-1] = occ[j-1], occ[j]
		}
	}
}

func less(a, b Occurrence) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.In != b.In {
		return a.In < b.In
	}
	return a.On < b.On
}

func expandRule(min, max Moment, rl tzdata.RuleLine) []Occurrence {
	from, to := rl.From, rl.To
	if from == tzdata.MinYear {
		from = tzdata.Year(min.Year)
	}
	if to == tzdata.MaxYear {
		to = tzdata.Year(max.Year)
	}
	if int(from) < min.Year {
		from = tzdata.Year(min.Year)
	}
	if int(to) > max.Year {
		to = tzdata.Year(max.Year)
	}

	var out []Occurrence
	for year := from; year <= to; year++ {
		y, m, d := DayOfMonth(int(year), rl.In, rl.On)
		if y < min.Year || y > max.Year {
			continue
		}
		if y == max.Year && m > max.Month {
			continue
		}
		if y == min.Year && m < min.Month {
			continue
		}
		if y == max.Year && m == max.Month && d > max.Day {
			continue
		}
		if y == min.Year && m == min.Month && d < min.Day {
			continue
		}
		out = append(out, Occurrence{Rule: rl, Year: y, In: m, On: d})
	}
	return out
}
