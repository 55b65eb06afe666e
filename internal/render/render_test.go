package render

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"WARN high latency (prod)", "high latency"},
		{"FATAL api is down", "api is down"},
		{"plain-alarm-name", "plain-alarm-name"},
		{"ERROR bad <value> seen", "bad value seen"},
		{"no severity (staging)", "no severity"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, CleanName(tt.name), "name: %q", tt.name)
	}
}

func TestTitle(t *testing.T) {
	title := Title("ALARM", "us-east-1", "WARN high latency (prod)")
	assert.Equal(t, "ALARM | N. Virginia » high latency", title)
}

func TestTitle_UnknownRegionFallsBack(t *testing.T) {
	title := Title("OK", "xx-test-9", "some alarm")
	assert.Equal(t, "OK | xx-test-9 » some alarm", title)
}

func TestEnforceBudget_UnderBudgetUnmodified(t *testing.T) {
	text := strings.Repeat("a", MaxSectionLength)
	assert.Equal(t, text, EnforceBudget(text))

	short := "short details"
	assert.Equal(t, short, EnforceBudget(short))
}

func TestEnforceBudget_CountsCharactersNotBytes(t *testing.T) {
	// 2999 characters but ~9000 bytes; must come back untouched.
	text := strings.Repeat("›", MaxSectionLength-1)
	assert.Equal(t, text, EnforceBudget(text))

	exact := strings.Repeat("›", MaxSectionLength)
	assert.Equal(t, exact, EnforceBudget(exact))
}

func TestEnforceBudget_TruncationKeepsValidUTF8(t *testing.T) {
	text := strings.Repeat("a", MaxSectionLength-1) + strings.Repeat("›", 200)

	bounded := EnforceBudget(text)
	assert.Equal(t, MaxSectionLength, utf8.RuneCountInString(bounded))
	assert.True(t, utf8.ValidString(bounded))
	assert.True(t, strings.HasSuffix(bounded, "›"))
}

func TestEnforceBudget_HardTruncation(t *testing.T) {
	text := strings.Repeat("a", MaxSectionLength+1)

	bounded := EnforceBudget(text)
	assert.Len(t, bounded, MaxSectionLength)
	assert.Equal(t, text[:MaxSectionLength], bounded)
}

func TestEnforceBudget_AnnotationsStrippedFirst(t *testing.T) {
	body := strings.Repeat("b", 2990)
	text := body + "\n\n" + AnnotationsMarker + "\n• runbook: wiki/runbooks"
	require.Greater(t, len(text), MaxSectionLength)

	bounded := EnforceBudget(text)
	assert.Equal(t, body, bounded)
	assert.NotContains(t, bounded, AnnotationsMarker)
}

func TestEnforceBudget_TruncatesAfterAnnotationsStrip(t *testing.T) {
	body := strings.Repeat("c", MaxSectionLength+100)
	text := body + "\n\n" + AnnotationsMarker + "\nignored"

	bounded := EnforceBudget(text)
	assert.Len(t, bounded, MaxSectionLength)
}

func TestStateColor(t *testing.T) {
	assert.Equal(t, ColorAlarm, StateColor("ALARM"))
	assert.Equal(t, ColorOK, StateColor("OK"))
	assert.Equal(t, ColorInsufficientData, StateColor("INSUFFICIENT_DATA"))
}

func TestAlarmMessage_AlarmStateIncludesDescription(t *testing.T) {
	msg := AlarmMessage("#ops-warn", "ALARM", "us-east-1", "WARN high latency (prod)",
		[]string{"*Cause:* threshold crossed"}, "See the latency runbook.")

	assert.Equal(t, "#ops-warn", msg.Channel)
	assert.Equal(t, ColorAlarm, msg.Color)
	assert.Equal(t, "ALARM | N. Virginia » high latency", msg.Fallback)

	require.Len(t, msg.Blocks, 3)
	assert.Contains(t, msg.Blocks[0].Text.Text, "ALARM | N. Virginia » high latency")
	assert.Contains(t, msg.Blocks[0].Text.Text, "console.aws.amazon.com")
	assert.Equal(t, "*Cause:* threshold crossed", msg.Blocks[1].Text.Text)
	assert.Equal(t, "See the latency runbook.", msg.Blocks[2].Text.Text)
}

func TestAlarmMessage_OKStateOmitsDescription(t *testing.T) {
	msg := AlarmMessage("#ops-warn", "OK", "us-east-1", "WARN high latency (prod)",
		[]string{"*Recovered:* back below threshold"}, "See the latency runbook.")

	require.Len(t, msg.Blocks, 2)
	assert.Equal(t, ColorOK, msg.Color)
}
