package classify

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// LongRunningThreshold is the minimum known duration for an alarm to be
// kept by the reminder filter.
const LongRunningThreshold = time.Hour

// reasonData is the structured portion of an alarm's state reason. Only
// one of the two fields is usually populated; both are optional.
type reasonData struct {
	StartDate           string `json:"startDate"`
	EvaluatedDatapoints []struct {
		Timestamp string `json:"timestamp"`
	} `json:"evaluatedDatapoints"`
}

// CloudWatch emits reason-data timestamps in a couple of layouts depending
// on the alarm type.
var reasonTimeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	time.RFC3339,
	"2006-01-02T15:04:05.000+0000",
}

func parseReasonTime(s string) (time.Time, bool) {
	for _, layout := range reasonTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StateDuration estimates how long the alarm has been in its current state
// as of now. An explicit startDate wins; otherwise the most recent
// evaluated datapoint is used. Returns ok=false when neither is available.
func StateDuration(now time.Time, rawReasonData string) (time.Duration, bool) {
	if rawReasonData == "" {
		return 0, false
	}

	var rd reasonData
	if err := json.Unmarshal([]byte(rawReasonData), &rd); err != nil {
		return 0, false
	}

	if rd.StartDate != "" {
		if start, ok := parseReasonTime(rd.StartDate); ok {
			return now.Sub(start), true
		}
	}

	var latest time.Time
	for _, dp := range rd.EvaluatedDatapoints {
		if t, ok := parseReasonTime(dp.Timestamp); ok && t.After(latest) {
			latest = t
		}
	}
	if latest.IsZero() {
		return 0, false
	}
	return now.Sub(latest), true
}

// FormatDuration renders a duration in the largest whole unit that is at
// least one (days, hours, minutes, seconds), rounded to the nearest
// integer in that unit. Negative durations, possible when a backend
// startDate is ahead of the local clock, clamp to zero.
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0 {
		secs = 0
	}

	switch {
	case secs >= 86400:
		return fmt.Sprintf("%d days", int64(math.Round(secs/86400)))
	case secs >= 3600:
		return fmt.Sprintf("%d hours", int64(math.Round(secs/3600)))
	case secs >= 60:
		return fmt.Sprintf("%d minutes", int64(math.Round(secs/60)))
	default:
		return fmt.Sprintf("%d seconds", int64(math.Round(secs)))
	}
}

// LongRunning keeps alarms whose state duration exceeds
// LongRunningThreshold. Alarms without an estimable duration are retained
// (fail-open), so a broken reason payload never hides an active alarm.
func LongRunning[T any](alarms []T, now time.Time, rawReasonData func(T) string) []T {
	kept := make([]T, 0, len(alarms))
	for _, a := range alarms {
		d, ok := StateDuration(now, rawReasonData(a))
		if !ok || d > LongRunningThreshold {
			kept = append(kept, a)
		}
	}
	return kept
}

// SortByDuration orders alarms by state duration, longest first. Alarms
// without an estimable duration sort before any alarm with one. This is a
// deliberately different policy from the LongRunning fail-open filter.
func SortByDuration[T any](alarms []T, now time.Time, rawReasonData func(T) string) {
	sort.SliceStable(alarms, func(i, j int) bool {
		di, oki := StateDuration(now, rawReasonData(alarms[i]))
		dj, okj := StateDuration(now, rawReasonData(alarms[j]))

		switch {
		case !oki && !okj:
			return false
		case !oki:
			return true
		case !okj:
			return false
		default:
			return di > dj
		}
	})
}
