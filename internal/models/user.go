package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the platform roles relevant to the scheduler.
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleClient    UserRole = "CLIENT"
	RoleDeveloper UserRole = "DEVELOPER"
)

// JWTClaims is the access-token payload issued by the main platform. This
// service only validates tokens; it never issues them.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
