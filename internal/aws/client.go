package aws

import (
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/ratelimit"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

type Client struct {
	ec2Client         *ec2.Client
	elasticacheClient *elasticache.Client
	lambdaClient      *lambda.Client
	iamClient         *iam.Client
	accountID         string
	region            string
	cache             *ttlCache
}

func newRetryer() aws.Retryer {
	return retry.NewStandard(func(o *retry.StandardOptions) {
		o.MaxAttempts = 5
		o.MaxBackoff = 30 * time.Second
		o.Backoff = retry.NewExponentialJitterBackoff(o.MaxBackoff)
		o.RateLimiter = ratelimit.None
	})
}

func NewClient(cfg aws.Config, accountID, region string) *Client {
	retryer := newRetryer()
	return &Client{
		ec2Client:         ec2.NewFromConfig(cfg, func(o *ec2.Options) { o.Retryer = retryer }),
		elasticacheClient: elasticache.NewFromConfig(cfg, func(o *elasticache.Options) { o.Retryer = retryer }),
		lambdaClient:      lambda.NewFromConfig(cfg, func(o *lambda.Options) { o.Retryer = retryer }),
		iamClient:         iam.NewFromConfig(cfg, func(o *iam.Options) { o.Retryer = retryer }),
		accountID:         accountID,
		region:            region,
		cache:             newTTLCache(5*time.Minute, 500),
	}
}

func (c *Client) cacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}
