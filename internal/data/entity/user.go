package entity

type UserRole string

const (
	RolePlayer UserRole = "player"
	RoleAdmin  UserRole = "admin"
)

type User struct {
	Base
	Username     string      `db:"username"`
	Email        string      `db:"email"`
	PasswordHash string      `db:"password"`
	DisplayName  string      `db:"display_name"`
	SkillLevel   *SkillLevel `db:"skill_level"`
	HomeCity     *string     `db:"home_city"`
	Role         UserRole    `db:"role"`
	IsActive     bool        `db:"is_active"`
}
