package awsclients

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Clients holds the AWS service clients used by the data lake setup
type Clients struct {
	S3     *s3.Client
	Glue   *glue.Client
	Athena *athena.Client
}

// LoadAWSConfig resolves credentials through the default chain (env, shared config, IMDS/task role)
func LoadAWSConfig(ctx context.Context, region string, httpClient aws.HTTPClient) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if httpClient != nil {
		opts = append(opts, awsconfig.WithHTTPClient(httpClient))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cfg, nil
}

func NewClients(cfg aws.Config) Clients {
	return Clients{
		S3:     s3.NewFromConfig(cfg),
		Glue:   glue.NewFromConfig(cfg),
		Athena: athena.NewFromConfig(cfg),
	}
}
