package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/dynamicpb"

	"user-registry-service/api"
)

// UserRegistryServer is the server API for the UserRegistry service.
type UserRegistryServer interface {
	ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error)
	GetUser(context.Context, *GetUserRequest) (*User, error)
	CreateUser(context.Context, *CreateUserRequest) (*User, error)
	UpdateUser(context.Context, *UpdateUserRequest) (*User, error)
	DeleteUser(context.Context, *DeleteUserRequest) (*DeleteUserResponse, error)
}

// RegisterUserRegistryServer registers srv on s.
func RegisterUserRegistryServer(s grpc.ServiceRegistrar, srv UserRegistryServer) {
	s.RegisterService(&userRegistryServiceDesc, srv)
}

// unary decodes the request into a dynamic message built from the method's
// input descriptor, so the default proto codec handles the wire format.
func unary[Req, Resp any, PReq interface {
	*Req
	wireMessage
}, PResp interface {
	*Resp
	wireMessage
}](method string, call func(UserRegistryServer, context.Context, PReq) (PResp, error)) grpc.MethodDesc {
	desc := methodDescriptor(method)
	fullMethod := "/" + serviceName + "/" + method

	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			wire := dynamicpb.NewMessage(desc.Input())
			if err := dec(wire); err != nil {
				return nil, err
			}
			in := PReq(new(Req))
			in.readProto(wire)

			handler := func(ctx context.Context, req any) (any, error) {
				out, err := call(srv.(UserRegistryServer), ctx, req.(PReq))
				if err != nil {
					return nil, err
				}
				resp := dynamicpb.NewMessage(desc.Output())
				out.writeProto(resp)
				return resp, nil
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var userRegistryServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*UserRegistryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListUsers", UserRegistryServer.ListUsers),
		unary("GetUser", UserRegistryServer.GetUser),
		unary("CreateUser", UserRegistryServer.CreateUser),
		unary("UpdateUser", UserRegistryServer.UpdateUser),
		unary("DeleteUser", UserRegistryServer.DeleteUser),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: api.UserRegistryProtoPath,
}

// UserRegistryClient calls the UserRegistry service over the proto codec.
type UserRegistryClient struct {
	cc grpc.ClientConnInterface
}

// NewUserRegistryClient creates a client on cc.
func NewUserRegistryClient(cc grpc.ClientConnInterface) *UserRegistryClient {
	return &UserRegistryClient{cc: cc}
}

func invoke[Resp any, PResp interface {
	*Resp
	wireMessage
}](ctx context.Context, c *UserRegistryClient, method string, in wireMessage, opts []grpc.CallOption) (PResp, error) {
	desc := methodDescriptor(method)

	req := dynamicpb.NewMessage(desc.Input())
	in.writeProto(req)
	resp := dynamicpb.NewMessage(desc.Output())

	if err := c.cc.Invoke(ctx, "/"+serviceName+"/"+method, req, resp, opts...); err != nil {
		return nil, err
	}

	out := PResp(new(Resp))
	out.readProto(resp)
	return out, nil
}

func (c *UserRegistryClient) ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*ListUsersResponse, error) {
	return invoke[ListUsersResponse](ctx, c, "ListUsers", in, opts)
}

func (c *UserRegistryClient) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c, "GetUser", in, opts)
}

func (c *UserRegistryClient) CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c, "CreateUser", in, opts)
}

func (c *UserRegistryClient) UpdateUser(ctx context.Context, in *UpdateUserRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c, "UpdateUser", in, opts)
}

func (c *UserRegistryClient) DeleteUser(ctx context.Context, in *DeleteUserRequest, opts ...grpc.CallOption) (*DeleteUserResponse, error) {
	return invoke[DeleteUserResponse](ctx, c, "DeleteUser", in, opts)
}
