package connect

import (
	"context"
	"crypto/subtle"

	"connectrpc.com/connect"

	"github.com/osa030/podcastr/internal/api/podcastr/v1/podcastrv1connect"
	"github.com/osa030/podcastr/internal/infra/config"
)

const (
	// ControlTokenHeader is the header name for the player control token.
	ControlTokenHeader = "X-Control-Token"
)

// NewControlTokenInterceptor creates an interceptor that validates the control
// token on PlayerService methods that change state. Reads stay open. With no
// token configured every request passes.
func NewControlTokenInterceptor(cfg *config.Config) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			expected := cfg.Server.ControlToken
			if expected == "" || !podcastrv1connect.IsPlayerMutation(req.Spec().Procedure) {
				return next(ctx, req)
			}

			token := req.Header().Get(ControlTokenHeader)
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
				return nil, connect.NewError(connect.CodeUnauthenticated, nil)
			}

			return next(ctx, req)
		}
	}
}
