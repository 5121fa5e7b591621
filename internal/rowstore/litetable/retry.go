package litetable

import (
	"context"
	"github.com/cenkalti/backoff/v4"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"time"
)

var retryInitialInterval = 100 * time.Millisecond

func grpcBackOff(ctx context.Context, retries uint64) backoff.BackOff {
	ret := backoff.NewExponentialBackOff()
	ret.InitialInterval = retryInitialInterval
	return backoff.WithContext(backoff.WithMaxRetries(ret, retries), ctx)
}

// retryingUnaryClientInterceptor retries transient failures with exponential backoff. Errors
// the server will answer the same way again are returned at once.
func retryingUnaryClientInterceptor(retries uint64) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		doit := func() error {
			return processGrpcErr(invoker(ctx, method, req, reply, cc, opts...))
		}
		return backoff.Retry(doit, grpcBackOff(ctx, retries))
	}
}

func processGrpcErr(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.Aborted, codes.Internal:
		return err
	default:
		return backoff.Permanent(err)
	}
}
