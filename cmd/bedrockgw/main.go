package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/sirupsen/logrus"

	"github.com/nubelab/bedrockgw/internal/agent"
	"github.com/nubelab/bedrockgw/internal/config"
	"github.com/nubelab/bedrockgw/internal/gateway"
	"github.com/nubelab/bedrockgw/internal/limiter"
	"github.com/nubelab/bedrockgw/internal/store"
	"github.com/nubelab/bedrockgw/internal/usage"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid environment")
	}

	ctx := context.Background()

	client := store.NewClient(cfg.RedisAddr())
	if err := store.Ping(ctx, client); err != nil {
		// Serve 503s until the store comes back rather than failing init.
		log.WithError(err).Warn("store unreachable at startup")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.BedrockRegion))
	if err != nil {
		log.WithError(err).Fatal("aws configuration failed")
	}

	handler := gateway.NewHandler(
		limiter.New(client, cfg.RPMLimit, cfg.TPMLimit),
		usage.NewRecorder(client),
		agent.NewClient(awsCfg),
		log,
	)

	log.WithFields(logrus.Fields{
		"redis_addr": cfg.RedisAddr(),
		"rpm_limit":  cfg.RPMLimit,
		"tpm_limit":  cfg.TPMLimit,
		"region":     cfg.BedrockRegion,
	}).Info("gateway ready")

	lambda.Start(handler.Handle)
}
