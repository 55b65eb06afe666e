// Package render assembles notification messages as ordered block lists
// and enforces the per-block character budget.
package render

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PRX/cloudwatch-toolkit/internal/classify"
)

// MaxSectionLength is the hard character budget for a details section.
const MaxSectionLength = 3000

// AnnotationsMarker opens the annotations subsection at the tail of a
// details text. It is the first thing dropped when the text is over budget.
const AnnotationsMarker = "*Annotations*"

// Message is one rendered notification, ready for the Message Relay.
type Message struct {
	Channel  string
	Fallback string
	Color    string
	Blocks   []Block
}

// Accent colors per alarm state.
const (
	ColorAlarm            = "#a30200"
	ColorOK               = "#2eb886"
	ColorInsufficientData = "#daa038"
)

// StateColor returns the accent color for an alarm state value.
func StateColor(state string) string {
	switch state {
	case "ALARM":
		return ColorAlarm
	case "OK":
		return ColorOK
	default:
		return ColorInsufficientData
	}
}

var trailingParenthetical = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// CleanName prepares an alarm name for display: HTML-unsafe angle brackets
// are removed, a trailing parenthetical suffix is dropped, and a leading
// severity token is stripped.
func CleanName(name string) string {
	name = strings.NewReplacer("<", "", ">", "").Replace(name)
	name = trailingParenthetical.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)

	if classify.SeverityOf(name) != classify.SeverityUnknown {
		if _, rest, found := strings.Cut(name, " "); found {
			name = strings.TrimSpace(rest)
		}
	}
	return name
}

// Title renders the notification title line for one alarm.
func Title(state, region, alarmName string) string {
	return fmt.Sprintf("%s | %s » %s", state, RegionLabel(region), CleanName(alarmName))
}

// AlarmURL deep-links to the alarm in the CloudWatch console.
func AlarmURL(region, alarmName string) string {
	return fmt.Sprintf(
		"https://console.aws.amazon.com/cloudwatch/home?region=%s#alarmsV2:alarm/%s",
		region, url.PathEscape(alarmName))
}

// EnforceBudget bounds a details text to MaxSectionLength characters via
// staged degradation: the annotations subsection is removed first; if the
// text is still over budget it is hard-truncated. Early content survives
// at the expense of later content. The budget counts characters, not
// bytes, and truncation never splits a UTF-8 sequence.
func EnforceBudget(text string) string {
	if utf8.RuneCountInString(text) <= MaxSectionLength {
		return text
	}

	if i := strings.LastIndex(text, AnnotationsMarker); i >= 0 {
		text = strings.TrimRight(text[:i], "\n ")
	}

	if utf8.RuneCountInString(text) > MaxSectionLength {
		runes := []rune(text)
		text = string(runes[:MaxSectionLength])
	}
	return text
}

// AlarmMessage builds the event-driven notification for one alarm: a
// linked title, a budget-bounded details section, and (for ALARM only) the
// alarm's verbatim configuration description.
func AlarmMessage(channel, state, region, alarmName string, detailLines []string, description string) *Message {
	title := Title(state, region, alarmName)

	blocks := []Block{
		Section(fmt.Sprintf("*<%s|%s>*", AlarmURL(region, alarmName), title)),
		Section(EnforceBudget(strings.Join(detailLines, "\n"))),
	}

	if state == "ALARM" && description != "" {
		blocks = append(blocks, Section(description))
	}

	return &Message{
		Channel:  channel,
		Fallback: title,
		Color:    StateColor(state),
		Blocks:   blocks,
	}
}
