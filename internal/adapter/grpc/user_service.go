package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"user-registry-service/internal/usecase/user"
	pkgerrors "user-registry-service/pkg/errors"
)

// UserServiceServer implements the gRPC UserRegistry service
type UserServiceServer struct {
	uc user.UserUsecase
}

var _ UserRegistryServer = (*UserServiceServer)(nil)

// NewUserServiceServer creates a new gRPC user service server
func NewUserServiceServer(uc user.UserUsecase) *UserServiceServer {
	return &UserServiceServer{uc: uc}
}

// toStatus keeps typed application errors and hides anything else behind Internal.
func toStatus(err error) error {
	if _, ok := err.(pkgerrors.GRPCStatuser); ok {
		return err
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codes.Internal, "internal server error")
}

func fromDTO(u *user.User) *User {
	return &User{ID: u.ID, Name: u.Name, Email: u.Email}
}

// ListUsers handles gRPC ListUsers request
func (s *UserServiceServer) ListUsers(ctx context.Context, _ *ListUsersRequest) (*ListUsersResponse, error) {
	resp, err := s.uc.ListUsers(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	users := make([]User, len(resp.Users))
	for i := range resp.Users {
		users[i] = *fromDTO(&resp.Users[i])
	}
	return &ListUsersResponse{Users: users, Total: resp.Total}, nil
}

// GetUser handles gRPC GetUser request
func (s *UserServiceServer) GetUser(ctx context.Context, req *GetUserRequest) (*User, error) {
	u, err := s.uc.GetUser(ctx, user.GetUserRequest{ID: req.ID})
	if err != nil {
		return nil, toStatus(err)
	}
	return fromDTO(u), nil
}

// CreateUser handles gRPC CreateUser request
func (s *UserServiceServer) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	u, err := s.uc.CreateUser(ctx, user.CreateUserRequest{Name: req.Name, Email: req.Email})
	if err != nil {
		return nil, toStatus(err)
	}
	return fromDTO(u), nil
}

// UpdateUser handles gRPC UpdateUser request
func (s *UserServiceServer) UpdateUser(ctx context.Context, req *UpdateUserRequest) (*User, error) {
	u, err := s.uc.UpdateUser(ctx, user.UpdateUserRequest{ID: req.ID, Name: req.Name, Email: req.Email})
	if err != nil {
		return nil, toStatus(err)
	}
	return fromDTO(u), nil
}

// DeleteUser handles gRPC DeleteUser request
func (s *UserServiceServer) DeleteUser(ctx context.Context, req *DeleteUserRequest) (*DeleteUserResponse, error) {
	if _, err := s.uc.DeleteUser(ctx, user.DeleteUserRequest{ID: req.ID}); err != nil {
		return nil, toStatus(err)
	}
	return &DeleteUserResponse{Message: "User deleted successfully"}, nil
}
