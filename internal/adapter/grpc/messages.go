package grpc

import (
	"google.golang.org/protobuf/reflect/protoreflect"
)

// wireMessage copies a Go message to and from its dynamic protobuf form.
type wireMessage interface {
	readProto(m protoreflect.Message)
	writeProto(m protoreflect.Message)
}

func fieldOf(m protoreflect.Message, name protoreflect.Name) protoreflect.FieldDescriptor {
	return m.Descriptor().Fields().ByName(name)
}

// optionalString returns nil when the proto3 optional field is unset.
func optionalString(m protoreflect.Message, name protoreflect.Name) *string {
	fd := fieldOf(m, name)
	if !m.Has(fd) {
		return nil
	}
	s := m.Get(fd).String()
	return &s
}

func setOptionalString(m protoreflect.Message, name protoreflect.Name, s *string) {
	if s != nil {
		m.Set(fieldOf(m, name), protoreflect.ValueOfString(*s))
	}
}

// User is the wire form of a registry record.
type User struct {
	ID    int64
	Name  string
	Email string
}

func (u *User) readProto(m protoreflect.Message) {
	u.ID = m.Get(fieldOf(m, "id")).Int()
	u.Name = m.Get(fieldOf(m, "name")).String()
	u.Email = m.Get(fieldOf(m, "email")).String()
}

func (u *User) writeProto(m protoreflect.Message) {
	m.Set(fieldOf(m, "id"), protoreflect.ValueOfInt64(u.ID))
	m.Set(fieldOf(m, "name"), protoreflect.ValueOfString(u.Name))
	m.Set(fieldOf(m, "email"), protoreflect.ValueOfString(u.Email))
}

type ListUsersRequest struct{}

func (*ListUsersRequest) readProto(protoreflect.Message)  {}
func (*ListUsersRequest) writeProto(protoreflect.Message) {}

type ListUsersResponse struct {
	Users []User
	Total int
}

func (r *ListUsersResponse) readProto(m protoreflect.Message) {
	list := m.Get(fieldOf(m, "users")).List()
	r.Users = make([]User, list.Len())
	for i := range r.Users {
		r.Users[i].readProto(list.Get(i).Message())
	}
	r.Total = int(m.Get(fieldOf(m, "total")).Int())
}

func (r *ListUsersResponse) writeProto(m protoreflect.Message) {
	list := m.Mutable(fieldOf(m, "users")).List()
	for i := range r.Users {
		elem := list.NewElement()
		r.Users[i].writeProto(elem.Message())
		list.Append(elem)
	}
	m.Set(fieldOf(m, "total"), protoreflect.ValueOfInt32(int32(r.Total)))
}

type GetUserRequest struct {
	ID int64
}

func (r *GetUserRequest) readProto(m protoreflect.Message) {
	r.ID = m.Get(fieldOf(m, "id")).Int()
}

func (r *GetUserRequest) writeProto(m protoreflect.Message) {
	m.Set(fieldOf(m, "id"), protoreflect.ValueOfInt64(r.ID))
}

type CreateUserRequest struct {
	Name  string
	Email string
}

func (r *CreateUserRequest) readProto(m protoreflect.Message) {
	r.Name = m.Get(fieldOf(m, "name")).String()
	r.Email = m.Get(fieldOf(m, "email")).String()
}

func (r *CreateUserRequest) writeProto(m protoreflect.Message) {
	m.Set(fieldOf(m, "name"), protoreflect.ValueOfString(r.Name))
	m.Set(fieldOf(m, "email"), protoreflect.ValueOfString(r.Email))
}

// UpdateUserRequest leaves absent fields unchanged.
type UpdateUserRequest struct {
	ID    int64
	Name  *string
	Email *string
}

func (r *UpdateUserRequest) readProto(m protoreflect.Message) {
	r.ID = m.Get(fieldOf(m, "id")).Int()
	r.Name = optionalString(m, "name")
	r.Email = optionalString(m, "email")
}

func (r *UpdateUserRequest) writeProto(m protoreflect.Message) {
	m.Set(fieldOf(m, "id"), protoreflect.ValueOfInt64(r.ID))
	setOptionalString(m, "name", r.Name)
	setOptionalString(m, "email", r.Email)
}

type DeleteUserRequest struct {
	ID int64
}

func (r *DeleteUserRequest) readProto(m protoreflect.Message) {
	r.ID = m.Get(fieldOf(m, "id")).Int()
}

func (r *DeleteUserRequest) writeProto(m protoreflect.Message) {
	m.Set(fieldOf(m, "id"), protoreflect.ValueOfInt64(r.ID))
}

type DeleteUserResponse struct {
	Message string
}

func (r *DeleteUserResponse) readProto(m protoreflect.Message) {
	r.Message = m.Get(fieldOf(m, "message")).String()
}

func (r *DeleteUserResponse) writeProto(m protoreflect.Message) {
	m.Set(fieldOf(m, "message"), protoreflect.ValueOfString(r.Message))
}
