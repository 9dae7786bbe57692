package utils

import "time"

// DefaultDayCutoffHour is the local hour before which a sale still counts
// towards the previous business day. Bars operate past midnight, so a beer
// sold at 02:30 belongs to yesterday's tab sheet.
const DefaultDayCutoffHour = 8

// BusinessDay maps a wall-clock instant to the business day it belongs to.
// Sales before cutoffHour local time are attributed to the previous calendar
// date. The result is a date-only value (midnight UTC) suitable for DATE
// columns and day bucketing.
//
// Every place that stamps or buckets by day must go through this function so
// that order stamps, purchase stamps and report buckets always agree.
func BusinessDay(t time.Time, loc *time.Location, cutoffHour int) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	if local.Hour() < cutoffHour {
		local = local.AddDate(0, 0, -1)
	}
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
