package connect

import (
	"context"

	"connectrpc.com/connect"

	"github.com/hifigo/hifigo/internal/app/protocol"
)

const (
	// TokenHeader is the header name for the API token.
	TokenHeader = "X-Api-Token"
)

// NewAuthInterceptor creates an interceptor that validates the API token on
// mutating dispatches. Query actions and snapshot reads pass through. With
// an empty configured token, everything passes through.
func NewAuthInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token == "" {
				return next(ctx, req)
			}

			if action, ok := req.Any().(*protocol.Action); ok && !action.IsMutation() {
				return next(ctx, req)
			}
			if req.Spec().Procedure != DispatchProcedure {
				return next(ctx, req)
			}

			if req.Header().Get(TokenHeader) != token {
				return nil, connect.NewError(connect.CodeUnauthenticated, nil)
			}
			return next(ctx, req)
		}
	}
}
