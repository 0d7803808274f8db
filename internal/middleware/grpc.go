package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/auth"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type requestIDCtxKey struct{}

// RequestIDFromContext returns the id assigned by ContextInterceptor.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}

// ContextInterceptor propagates x-request-id metadata (or assigns one),
// attaches the claims of an optional bearer token and logs every unary call.
// A call without a token stays anonymous; a call with a bad one is rejected.
func ContextInterceptor(log logger.ZapLogger, tokens *auth.TokenIssuer) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		requestID := ""
		bearer := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if val := md.Get("x-request-id"); len(val) > 0 {
				requestID = val[0]
			}
			if val := md.Get("authorization"); len(val) > 0 {
				parts := strings.SplitN(val[0], " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					bearer = strings.TrimSpace(parts[1])
				}
			}
		}
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx = context.WithValue(ctx, requestIDCtxKey{}, requestID)
		_ = grpc.SetHeader(ctx, metadata.Pairs("x-request-id", requestID))

		start := time.Now()
		var (
			resp interface{}
			err  error
		)
		if bearer != "" && tokens != nil {
			claims, perr := tokens.Parse(bearer)
			if perr != nil {
				err = status.Error(codes.Unauthenticated, auth.ErrInvalidToken.Error())
			} else {
				ctx = auth.WithClaims(ctx, claims)
			}
		}
		if err == nil {
			resp, err = handler(ctx, req)
		}

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestID),
		}
		if userID := auth.GetUserID(ctx); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if err != nil {
			log.Warn("gRPC call failed", append(fields, zap.Error(err))...)
		} else {
			log.Info("gRPC call", fields...)
		}
		return resp, err
	}
}
