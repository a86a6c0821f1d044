package model

// Role is the closed set of account roles.
type Role string

const (
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// AdminBadgeNumber is the fixed badge value carried by every admin row.
const AdminBadgeNumber = "ADMIN"

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	return r == RoleModerator || r == RoleAdmin
}

// IsAdmin reports whether the role grants administrative capability.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is the sole account entity. Password holds the scrypt record,
// never plaintext, and is excluded from every JSON response.
type User struct {
	Id           int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	Password     string `json:"-" gorm:"not null"`
	FullName     string `json:"fullName" gorm:"not null"`
	Role         Role   `json:"role" gorm:"not null;default:moderator"`
	BadgeNumber  string `json:"badgeNumber" gorm:"uniqueIndex;not null"`
	ProfileImage string `json:"profileImage,omitempty"`
	Designation  string `json:"designation,omitempty"`
	Department   string `json:"department,omitempty"`
	JoinDate     string `json:"joinDate,omitempty"`
	ContactInfo  string `json:"contactInfo,omitempty"`
}

// IsAdmin reports whether the user is an administrator.
func (u *User) IsAdmin() bool {
	return u.Role.IsAdmin()
}
