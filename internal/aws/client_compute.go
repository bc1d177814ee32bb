package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/nubelab/bedrockgw/internal/domain"
)

func (c *Client) GetFunctionConfig(ctx context.Context, functionName string) (*domain.FunctionConfigData, error) {
	out, err := c.lambdaClient.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(functionName),
	})
	if err != nil {
		return nil, fmt.Errorf("get function %s: %w", functionName, err)
	}

	data := toFunctionConfigData(out)

	if len(data.SubnetIDs) > 0 {
		subnetOut, err := c.ec2Client.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
			SubnetIds: data.SubnetIDs,
		})
		if err == nil {
			for _, subnet := range subnetOut.Subnets {
				if subnet.CidrBlock != nil {
					data.SubnetCIDRs = append(data.SubnetCIDRs, *subnet.CidrBlock)
				}
			}
		}
	}

	return data, nil
}

// InvokeFunction runs a synchronous invocation and returns the raw
// response payload. A function-side error (unhandled exception, etc.)
// is surfaced as an error rather than a payload.
func (c *Client) InvokeFunction(ctx context.Context, functionName string, payload []byte) ([]byte, error) {
	out, err := c.lambdaClient.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(functionName),
		Payload:      payload,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke function %s: %w", functionName, err)
	}
	if out.FunctionError != nil {
		return nil, fmt.Errorf("function %s returned error %s: %s", functionName, *out.FunctionError, string(out.Payload))
	}
	return out.Payload, nil
}
