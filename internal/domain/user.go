package domain

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// User is a backend account. Password is write-only: set on register,
// never returned by the API.
type User struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
	Role        Role   `json:"role,omitempty"`
	MemberID    string `json:"memberID,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Address     string `json:"address,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
