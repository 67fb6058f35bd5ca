// Package lambdainvoke schedules continuation of an import by asynchronously
// re-invoking the hosting Lambda function with an updated resume offset
package lambdainvoke

import (
	"context"
	"encoding/json/v2"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	perr "brazebulk/internal/platform/errors"
	"brazebulk/internal/platform/logger"
	"brazebulk/internal/services/importer/domain"
)

// Invoker implements domain.Continuer via Lambda async self-invoke
type Invoker struct {
	client       *lambdasvc.Client
	functionName string
}

// New wraps an existing Lambda client
func New(client *lambdasvc.Client, functionName string) *Invoker {
	return &Invoker{client: client, functionName: functionName}
}

// NewFromEnv builds an Invoker from the ambient AWS configuration
func NewFromEnv(ctx context.Context, functionName string) (*Invoker, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "load aws config")
	}
	return New(lambdasvc.NewFromConfig(cfg), functionName), nil
}

// Continue fires an Event-type (async) invoke carrying the trigger payload
// with the new byte offset. It returns once the invoke is accepted; the
// continuation itself runs in its own invocation
func (i *Invoker) Continue(ctx context.Context, in domain.Input) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "marshal continuation payload")
	}

	logger.C(ctx).Info().
		Int64("byte_offset", in.ByteOffset).
		Msg("invoking lambda to continue processing the file")

	_, err = i.client.Invoke(ctx, &lambdasvc.InvokeInput{
		FunctionName:   &i.functionName,
		InvocationType: lambdatypes.InvocationTypeEvent,
		Payload:        payload,
	})
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "continuation invoke failed")
	}
	return nil
}
