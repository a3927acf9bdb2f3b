package models

// UserType is the session mode a token was issued for.
type UserType string

const (
	UserTypeParent UserType = "parent"
	UserTypeChild  UserType = "child"
)

func (t UserType) Valid() bool {
	return t == UserTypeParent || t == UserTypeChild
}

// Caller is the resolved identity of an authenticated request. Child-mode sessions
// carry the parent's id: the shared parent credential is what children log in with.
type Caller struct {
	ParentID uint
	UserType UserType
	Role     Role
}

func (c Caller) IsParent() bool {
	return c.UserType == UserTypeParent
}

func (c Caller) IsChild() bool {
	return c.UserType == UserTypeChild
}

func (c Caller) IsAdmin() bool {
	return c.UserType == UserTypeParent && c.Role == RoleAdmin
}
