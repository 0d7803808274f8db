package handler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/middleware"
	"github.com/fekuna/omnipos-trace-service/internal/tracecode"
	"github.com/fekuna/omnipos-trace-service/internal/verification"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	VerificationServiceName = "omnipos.trace.v1.VerificationService"
	VerifyFullMethod        = "/" + VerificationServiceName + "/Verify"
)

// VerificationServiceServer is the server API of the verification gRPC
// service. Requests and responses are well-known protobuf types, so the
// service needs no generated code.
type VerificationServiceServer interface {
	Verify(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

func RegisterVerificationServiceServer(s grpc.ServiceRegistrar, srv VerificationServiceServer) {
	s.RegisterService(&VerificationServiceDesc, srv)
}

var VerificationServiceDesc = grpc.ServiceDesc{
	ServiceName: VerificationServiceName,
	HandlerType: (*VerificationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Verify", Handler: verifyHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/trace/v1/verification.proto",
}

func verifyHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VerificationServiceServer).Verify(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: VerifyFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(VerificationServiceServer).Verify(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

type VerificationGRPCHandler struct {
	uc     verification.UseCase
	logger logger.ZapLogger
	now    func() time.Time
}

func NewVerificationGRPCHandler(uc verification.UseCase, log logger.ZapLogger) *VerificationGRPCHandler {
	return &VerificationGRPCHandler{uc: uc, logger: log, now: time.Now}
}

// Verify returns the verification document as a Struct. Unknown codes are a
// normal negative result, not an RPC error.
func (h *VerificationGRPCHandler) Verify(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	res, err := h.uc.Verify(ctx, req.GetValue(), h.now())
	if err != nil {
		var formatErr *tracecode.FormatError
		switch {
		case errors.As(err, &formatErr):
			return nil, status.Errorf(codes.InvalidArgument, "invalid code format: %s", formatErr.Hint())
		case errors.Is(err, verification.ErrStoreUnavailable):
			return nil, status.Error(codes.Unavailable, "verification is temporarily unavailable")
		default:
			h.logger.Error("verification failed",
				zap.String("code", req.GetValue()),
				zap.String("request_id", middleware.RequestIDFromContext(ctx)),
				zap.Error(err))
			return nil, status.Error(codes.Internal, "internal error")
		}
	}

	data, err := json.Marshal(res)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
