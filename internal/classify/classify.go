// Package classify filters alarms by name heuristics, routes them by
// severity prefix, and estimates how long an alarm has been active.
package classify

import (
	"strings"
)

// Severity is the routing severity encoded in an alarm name's first token.
type Severity string

const (
	SeverityFatal    Severity = "FATAL"
	SeverityError    Severity = "ERROR"
	SeverityWarn     Severity = "WARN"
	SeverityInfo     Severity = "INFO"
	SeverityCritical Severity = "CRITICAL"
	// SeverityUnknown routes to the default (sandbox) destination.
	SeverityUnknown Severity = ""
)

// severityOrder fixes the priority in which prefixes are checked.
var severityOrder = []Severity{
	SeverityFatal,
	SeverityError,
	SeverityWarn,
	SeverityInfo,
	SeverityCritical,
}

// DefaultDenylist excludes autoscaling-internal and other non-actionable
// alarms from every pipeline. Deployments may override it via configuration.
var DefaultDenylist = []string{
	"TargetTracking",
	"ScaleInAlarm",
	"ScaleOutAlarm",
	"Production Pollers Low Capacity Alarm",
}

// Excluded reports whether the alarm name matches any denylist substring.
func Excluded(name string, denylist []string) bool {
	for _, marker := range denylist {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// SeverityOf classifies an alarm name by its first whitespace-delimited
// token. Matching is case-sensitive and follows a fixed priority order;
// names without a matching prefix return SeverityUnknown.
func SeverityOf(name string) Severity {
	token, _, _ := strings.Cut(strings.TrimSpace(name), " ")
	for _, sev := range severityOrder {
		if strings.HasPrefix(token, string(sev)) {
			return sev
		}
	}
	return SeverityUnknown
}
