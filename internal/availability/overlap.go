package availability

import "time"

// day strips the time-of-day component so ranges compare at date granularity.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether two inclusive date ranges share at least one day:
// A.start <= B.end && A.end >= B.start.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	as, ae := day(aStart), day(aEnd)
	bs, be := day(bStart), day(bEnd)
	return !as.After(be) && !ae.Before(bs)
}
