package user

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MikeMC777/vnb-store/internal/logx"
)

const (
	IdentityServiceName = "vnb.account.v1.Identity"
	validateUserMethod  = "/" + IdentityServiceName + "/ValidateUser"
)

// IdentityServer answers identity questions for other services.
type IdentityServer interface {
	ValidateUser(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
}

// IdentityClient is the caller side of IdentityServer.
type IdentityClient interface {
	ValidateUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
}

var IdentityServiceDesc = grpc.ServiceDesc{
	ServiceName: IdentityServiceName,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ValidateUser", Handler: validateUserHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vnb/account/v1/identity.proto",
}

func RegisterIdentityServer(s grpc.ServiceRegistrar, srv IdentityServer) {
	s.RegisterService(&IdentityServiceDesc, srv)
}

func validateUserHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServer).ValidateUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: validateUserMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IdentityServer).ValidateUser(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

type identityClient struct{ cc grpc.ClientConnInterface }

func NewIdentityClient(cc grpc.ClientConnInterface) IdentityClient {
	return &identityClient{cc: cc}
}

func (c *identityClient) ValidateUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, validateUserMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Identity serves IdentityServer from the account service.
type Identity struct {
	svc *Service
	log *logx.Logger
}

func NewIdentity(svc *Service, log *logx.Logger) *Identity {
	return &Identity{svc: svc, log: log.With("component", "identity")}
}

func (i *Identity) ValidateUser(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	ok, err := i.svc.Exists(ctx, in.GetValue())
	if err != nil {
		i.log.Error("validate user", "user_id", in.GetValue(), "error", err)
		return nil, status.Errorf(codes.Internal, "validate error: %v", err)
	}
	return wrapperspb.Bool(ok), nil
}

// RemoteValidator checks users against a remote account service.
type RemoteValidator struct{ client IdentityClient }

func NewRemoteValidator(client IdentityClient) *RemoteValidator {
	return &RemoteValidator{client: client}
}

func (v *RemoteValidator) ValidateUser(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	out, err := v.client.ValidateUser(ctx, wrapperspb.String(id))
	if err != nil {
		return false, err
	}
	return out.GetValue(), nil
}
