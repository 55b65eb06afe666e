package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PRX/cloudwatch-toolkit/internal/classify"
)

func TestLoad_SNSRelayDefault(t *testing.T) {
	t.Setenv("CROSS_ACCOUNT_ROLE_NAME", "cloudwatch-toolkit-role")
	t.Setenv("RELAY_TOPIC_ARN", "arn:aws:sns:us-east-1:123456789012:relay")
	t.Setenv("SEARCH_ACCOUNTS", "123456789012, 210987654321")
	t.Setenv("SEARCH_REGIONS", "us-east-1,eu-west-1")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "cloudwatch-toolkit-role", cfg.RoleName)
	assert.Equal(t, TargetSNS, cfg.RelayTarget)
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:relay", cfg.RelayTopicARN)
	assert.Empty(t, cfg.RelayEventBusARN)

	// Comma-delimited lists keep their configured order.
	assert.Equal(t, []string{"123456789012", "210987654321"}, cfg.SearchAccounts)
	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, cfg.SearchRegions)

	assert.Equal(t, classify.DefaultDenylist, cfg.Denylist)
}

func TestLoad_EventBridgeRelay(t *testing.T) {
	t.Setenv("CROSS_ACCOUNT_ROLE_NAME", "cloudwatch-toolkit-role")
	t.Setenv("RELAY_TARGET", "eventbridge")
	t.Setenv("RELAY_EVENT_BUS_ARN", "arn:aws:events:us-east-1:123456789012:event-bus/relay")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, TargetEventBridge, cfg.RelayTarget)
	assert.Equal(t, "arn:aws:events:us-east-1:123456789012:event-bus/relay", cfg.RelayEventBusARN)
	assert.Empty(t, cfg.RelayTopicARN)
}

func TestLoad_MissingRoleName(t *testing.T) {
	t.Setenv("RELAY_TOPIC_ARN", "arn:aws:sns:us-east-1:123456789012:relay")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CROSS_ACCOUNT_ROLE_NAME")
}

func TestLoad_InvalidRelayTarget(t *testing.T) {
	t.Setenv("CROSS_ACCOUNT_ROLE_NAME", "cloudwatch-toolkit-role")
	t.Setenv("RELAY_TARGET", "carrier-pigeon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid relay target")
}

func TestLoad_DenylistOverride(t *testing.T) {
	t.Setenv("CROSS_ACCOUNT_ROLE_NAME", "cloudwatch-toolkit-role")
	t.Setenv("RELAY_TOPIC_ARN", "arn:aws:sns:us-east-1:123456789012:relay")
	t.Setenv("ALARM_NAME_DENYLIST", "Canary,Synthetic")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Canary", "Synthetic"}, cfg.Denylist)
}

func TestChannelFor(t *testing.T) {
	cfg := &Config{
		Channels: Channels{
			Fatal:    "#ops-fatal",
			Error:    "#ops-error",
			Warn:     "#ops-warn",
			Info:     "#ops-info",
			Critical: "#ops-critical",
			Default:  "#sandbox",
		},
	}

	assert.Equal(t, "#ops-fatal", cfg.ChannelFor(classify.SeverityFatal))
	assert.Equal(t, "#ops-error", cfg.ChannelFor(classify.SeverityError))
	assert.Equal(t, "#ops-warn", cfg.ChannelFor(classify.SeverityWarn))
	assert.Equal(t, "#ops-info", cfg.ChannelFor(classify.SeverityInfo))
	assert.Equal(t, "#ops-critical", cfg.ChannelFor(classify.SeverityCritical))
	assert.Equal(t, "#sandbox", cfg.ChannelFor(classify.SeverityUnknown))
}
