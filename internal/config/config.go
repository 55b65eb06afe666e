// Package config loads process-wide configuration from the environment.
package config

import (
	"fmt"

	"github.com/PRX/cloudwatch-toolkit/internal/classify"
	"github.com/PRX/cloudwatch-toolkit/internal/env"
)

// RelayTarget selects the Message Relay transport.
type RelayTarget string

const (
	TargetSNS         RelayTarget = "sns"
	TargetEventBridge RelayTarget = "eventbridge"
)

// Channels maps routing severities to chat destinations.
type Channels struct {
	Fatal    string
	Error    string
	Warn     string
	Info     string
	Critical string
	// Default receives anything without a recognized severity prefix.
	Default string
}

type Config struct {
	// RoleName is the well-known cross-account role assumed in every
	// monitored account.
	RoleName string

	// SearchAccounts and SearchRegions define the scan cross product,
	// iterated in configured order.
	SearchAccounts []string
	SearchRegions  []string

	RelayTarget      RelayTarget
	RelayTopicARN    string
	RelayEventBusARN string

	Channels Channels
	Denylist []string
}

func Load() (*Config, error) {
	cfg := &Config{}

	roleName, err := env.GetRequired("CROSS_ACCOUNT_ROLE_NAME", env.ParseNonEmptyString)
	if err != nil {
		return nil, err
	}
	cfg.RoleName = roleName

	cfg.SearchAccounts = env.Get("SEARCH_ACCOUNTS", nil, env.ParseCommaSeparated)
	cfg.SearchRegions = env.Get("SEARCH_REGIONS", nil, env.ParseCommaSeparated)
	cfg.Denylist = env.Get("ALARM_NAME_DENYLIST", classify.DefaultDenylist, env.ParseCommaSeparated)

	target := env.Get("RELAY_TARGET", string(TargetSNS), env.ParseNonEmptyString)

	switch RelayTarget(target) {
	case TargetSNS:
		topicARN, err := env.GetRequired("RELAY_TOPIC_ARN", env.ParseNonEmptyString)
		if err != nil {
			return nil, err
		}
		cfg.RelayTarget = TargetSNS
		cfg.RelayTopicARN = topicARN
	case TargetEventBridge:
		busARN, err := env.GetRequired("RELAY_EVENT_BUS_ARN", env.ParseNonEmptyString)
		if err != nil {
			return nil, err
		}
		cfg.RelayTarget = TargetEventBridge
		cfg.RelayEventBusARN = busARN
	default:
		return nil, fmt.Errorf("invalid relay target: %s", target)
	}

	cfg.Channels = Channels{
		Fatal:    env.Get("FATAL_CHANNEL", "#ops-fatal", env.ParseNonEmptyString),
		Error:    env.Get("ERROR_CHANNEL", "#ops-error", env.ParseNonEmptyString),
		Warn:     env.Get("WARN_CHANNEL", "#ops-warn", env.ParseNonEmptyString),
		Info:     env.Get("INFO_CHANNEL", "#ops-info", env.ParseNonEmptyString),
		Critical: env.Get("CRITICAL_CHANNEL", "#ops-fatal", env.ParseNonEmptyString),
		Default:  env.Get("DEFAULT_CHANNEL", "#sandbox", env.ParseNonEmptyString),
	}

	return cfg, nil
}

// ChannelFor resolves the destination for a routing severity.
func (c *Config) ChannelFor(sev classify.Severity) string {
	switch sev {
	case classify.SeverityFatal:
		return c.Channels.Fatal
	case classify.SeverityError:
		return c.Channels.Error
	case classify.SeverityWarn:
		return c.Channels.Warn
	case classify.SeverityInfo:
		return c.Channels.Info
	case classify.SeverityCritical:
		return c.Channels.Critical
	default:
		return c.Channels.Default
	}
}
