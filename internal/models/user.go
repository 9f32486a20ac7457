package models

// User roles.
const (
	RoleVisitor = "visitor"
	RoleAuthor  = "author"
	RoleAdmin   = "admin"
)

// UserModel represents an account that can author posts.
type UserModel struct {
	Base
	Username     string `json:"username"  gorm:"uniqueIndex;not null"`
	Email        string `json:"email"     gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-"         gorm:"not null"`
	Avatar       string `json:"avatar"`
	Bio          string `json:"bio"`
	Role         string `json:"role"      gorm:"default:author"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`
}

func (UserModel) TableName() string { return "users" }
