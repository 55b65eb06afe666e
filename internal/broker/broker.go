// Package broker exchanges an account id and region for a CloudWatch
// client backed by short-lived assumed-role credentials.
package broker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"github.com/PRX/cloudwatch-toolkit/internal/directory"
)

const sessionName = "cloudwatch-toolkit"

// CredentialError indicates the cross-account role could not be assumed.
// It is never retried and aborts only the affected (account, region) pair.
type CredentialError struct {
	AccountID string
	Region    string
	Err       error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("cannot assume role in account %s (%s): %v", e.AccountID, e.Region, e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// Broker builds region-scoped CloudWatch clients by assuming a well-known
// role in the target account. Every call requests a fresh session; nothing
// is cached across calls.
type Broker struct {
	sts      stscreds.AssumeRoleAPIClient
	base     aws.Config
	roleName string
	logger   *slog.Logger
}

func New(stsClient stscreds.AssumeRoleAPIClient, base aws.Config, roleName string, logger *slog.Logger) *Broker {
	return &Broker{
		sts:      stsClient,
		base:     base,
		roleName: roleName,
		logger:   logger,
	}
}

// ScopedCloudWatch assumes the broker's role in the given account and
// returns a CloudWatch client bound to the given region.
func (b *Broker) ScopedCloudWatch(ctx context.Context, accountID, region string) (directory.CloudWatchAPI, error) {
	roleARN := fmt.Sprintf("arn:aws:iam::%s:role/%s", accountID, b.roleName)

	provider := stscreds.NewAssumeRoleProvider(b.sts, roleARN, func(o *stscreds.AssumeRoleOptions) {
		o.RoleSessionName = sessionName
	})

	// Retrieve eagerly so a trust-policy denial surfaces here, as a
	// CredentialError, instead of at the first alarm-backend call.
	creds, err := provider.Retrieve(ctx)
	if err != nil {
		return nil, &CredentialError{AccountID: accountID, Region: region, Err: err}
	}

	cfg := b.base.Copy()
	cfg.Region = region
	cfg.Credentials = credentials.NewStaticCredentialsProvider(
		creds.AccessKeyID,
		creds.SecretAccessKey,
		creds.SessionToken,
	)

	b.logger.DebugContext(ctx, "assumed cross-account role",
		slog.String("accountId", accountID),
		slog.String("region", region))

	return cloudwatch.NewFromConfig(cfg), nil
}
