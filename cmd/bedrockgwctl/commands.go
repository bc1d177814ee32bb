package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	internalaws "github.com/nubelab/bedrockgw/internal/aws"
	"github.com/nubelab/bedrockgw/internal/domain"
	"github.com/nubelab/bedrockgw/internal/store"
	"github.com/nubelab/bedrockgw/internal/usage"
	"github.com/nubelab/bedrockgw/internal/verify"
)

type rootArgs struct {
	region         string
	accountID      string
	roleARNPattern string
	timeout        time.Duration

	function         string
	replicationGroup string
	serviceName      string
	expectedTimeout  int

	apiKey    string
	agentID   string
	inputText string

	redisAddr string
}

func newRootCommand() *cobra.Command {
	args := &rootArgs{}

	rootCmd := &cobra.Command{
		Use:           "bedrockgwctl",
		Short:         "bedrockgwctl verifies and probes a deployed bedrock gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&args.region, "region", "us-east-1", "AWS region of the deployment")
	rootCmd.PersistentFlags().StringVar(&args.accountID, "account", "", "account ID to assume into (empty for the caller's account)")
	rootCmd.PersistentFlags().StringVar(&args.roleARNPattern, "role-arn-pattern", "", "cross-account role ARN pattern with %s for the account ID")
	rootCmd.PersistentFlags().DurationVar(&args.timeout, "timeout", 2*time.Minute, "overall command timeout")

	rootCmd.AddCommand(newVerifyCommand(args))
	rootCmd.AddCommand(newSmokeCommand(args))
	rootCmd.AddCommand(newUsageCommand(args))

	return rootCmd
}

func newVerifyCommand(args *rootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the deployed topology against the gateway's wiring contract",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), args.timeout)
			defer cancel()

			verifier, err := newVerifier(ctx, args)
			if err != nil {
				return err
			}

			report, err := verifier.Run(ctx, args.target())
			if err != nil {
				return err
			}

			logFindings(report.Findings)
			if !report.Passed() {
				return fmt.Errorf("%d check(s) failed", len(report.Failures()))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&args.function, "function", "", "gateway function name")
	cmd.Flags().StringVar(&args.replicationGroup, "replication-group", "", "replication group ID backing the rate limiter")
	cmd.Flags().StringVar(&args.serviceName, "service-name", "", "Bedrock interface endpoint service name")
	cmd.Flags().IntVar(&args.expectedTimeout, "expected-timeout", 30, "expected function timeout in seconds")
	_ = cmd.MarkFlagRequired("function")
	_ = cmd.MarkFlagRequired("replication-group")
	_ = cmd.MarkFlagRequired("service-name")

	return cmd
}

func newSmokeCommand(args *rootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Invoke the deployed function with a sample payload and expect a success status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), args.timeout)
			defer cancel()

			verifier, err := newVerifier(ctx, args)
			if err != nil {
				return err
			}

			finding, err := verifier.Smoke(ctx, args.target(), verify.SmokeParams{
				APIKey:    args.apiKey,
				AgentID:   args.agentID,
				InputText: args.inputText,
			})
			if err != nil {
				return err
			}

			logFindings([]domain.Finding{finding})
			if finding.Status == domain.CheckFail {
				return fmt.Errorf("smoke test failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&args.function, "function", "", "gateway function name")
	cmd.Flags().StringVar(&args.apiKey, "api-key", "", "API key to authenticate the sample request")
	cmd.Flags().StringVar(&args.agentID, "agent-id", "", "Bedrock agent ID for the sample request")
	cmd.Flags().StringVar(&args.inputText, "text", "hello", "prompt for the sample request")
	_ = cmd.MarkFlagRequired("function")
	_ = cmd.MarkFlagRequired("api-key")
	_ = cmd.MarkFlagRequired("agent-id")

	return cmd
}

func newUsageCommand(args *rootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage <api-key>",
		Short: "Read the usage counters for an API key from the shared store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), args.timeout)
			defer cancel()

			client, err := store.Connect(ctx, args.redisAddr)
			if err != nil {
				return err
			}
			defer client.Close()

			report, err := usage.NewRecorder(client).Report(ctx, posArgs[0])
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&args.redisAddr, "redis-addr", "", "host:port of the replication group primary")
	_ = cmd.MarkFlagRequired("redis-addr")

	return cmd
}

func newVerifier(ctx context.Context, args *rootArgs) (*verify.Verifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(args.region))
	if err != nil {
		return nil, fmt.Errorf("load aws configuration: %w", err)
	}
	return verify.New(internalaws.NewAccountContext(awsCfg, args.roleARNPattern)), nil
}

func (a *rootArgs) target() verify.Target {
	return verify.Target{
		AccountID:          a.accountID,
		FunctionName:       a.function,
		ReplicationGroupID: a.replicationGroup,
		ServiceName:        a.serviceName,
		ExpectedTimeout:    a.expectedTimeout,
	}
}

func logFindings(findings []domain.Finding) {
	for _, f := range findings {
		entry := logrus.WithFields(logrus.Fields{
			"check":  f.Check,
			"status": f.Status,
		})
		switch f.Status {
		case domain.CheckFail:
			entry.Error(f.Reason)
		case domain.CheckWarn:
			entry.Warn(f.Reason)
		default:
			entry.Info("ok")
		}
	}
}
