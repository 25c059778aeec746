// Package aws builds the SES and SNS clients that deliver offers to applicants.
package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Clients share one loaded AWS configuration.
type Clients struct {
	SES *ses.Client
	SNS *sns.Client
}

// NewClients loads credentials from the default chain. A non-empty endpoint
// replaces the regional endpoint for both services.
func NewClients(ctx context.Context, region, endpoint string) (*Clients, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var base *string
	if endpoint != "" {
		base = awssdk.String(endpoint)
	}

	return &Clients{
		SES: ses.NewFromConfig(cfg, func(o *ses.Options) { o.BaseEndpoint = base }),
		SNS: sns.NewFromConfig(cfg, func(o *sns.Options) { o.BaseEndpoint = base }),
	}, nil
}
