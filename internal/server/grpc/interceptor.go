package grpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/puffkeeper/internal/api"
	"github.com/dmitrijs2005/puffkeeper/internal/common"
	"github.com/dmitrijs2005/puffkeeper/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const roleKey ctxKey = "role"

// RoleFromContext returns the role of the api key that authorized the call.
func RoleFromContext(ctx context.Context) (auth.Role, bool) {
	r, ok := ctx.Value(roleKey).(auth.Role)
	return r, ok
}

var publicMethods = map[string]bool{
	api.FullMethod(api.MethodPing): true,
}

// serviceMethods write arbitrary state and need a service key.
var serviceMethods = map[string]bool{
	api.FullMethod(api.MethodUpdateState): true,
}

func (s *GRPCServer) authorize(ctx context.Context, fullMethod string) (context.Context, error) {
	if publicMethods[fullMethod] {
		return ctx, nil
	}

	var apiKey string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.APIKeyHeaderName)
		if len(values) > 0 {
			apiKey = values[0]
		}
	}
	if len(apiKey) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing api key")
	}

	role, err := auth.ParseAPIKey(apiKey, s.apiSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		s.logger.Warn(ctx, "rejected api key", "method", fullMethod, "error", err)
		return nil, status.Error(codes.Unauthenticated, "invalid api key")
	}

	if serviceMethods[fullMethod] && role != auth.RoleService {
		s.logger.Warn(ctx, "role not allowed", "method", fullMethod, "role", role)
		return nil, toStatus(fmt.Errorf("%w: %s requires the %s role", common.ErrorUnauthorized, fullMethod, auth.RoleService))
	}

	return context.WithValue(ctx, roleKey, role), nil
}

func (s *GRPCServer) apiKeyInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	ctx, err := s.authorize(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

type authorizedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (a *authorizedStream) Context() context.Context {
	return a.ctx
}

func (s *GRPCServer) apiKeyStreamInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := s.authorize(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &authorizedStream{ServerStream: ss, ctx: ctx})
}
