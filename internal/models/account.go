package models

import "time"

// Role определяет роль аккаунта в системе
type Role string

const (
	// RoleUser обычный пользователь
	RoleUser Role = "user"
	// RoleAdmin администратор
	RoleAdmin Role = "admin"
)

// Valid проверяет, что роль одна из перечисленных
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account представляет зарегистрированный аккаунт
type Account struct {
	ID           string    `json:"id"`         // UUID аккаунта
	Email        string    `json:"email"`      // уникальный email (нормализованный, lower-case)
	PasswordHash string    `json:"-"`          // bcrypt хеш пароля, никогда не сериализуется
	FirstName    string    `json:"first_name"` // имя
	LastName     string    `json:"last_name"`  // фамилия
	Role         Role      `json:"role"`       // роль: user или admin
	CreatedAt    time.Time `json:"created_at"` // время создания
}

// RevokedToken представляет отозванный refresh token (denylist)
type RevokedToken struct {
	JTI       string    `json:"jti"`        // JWT ID отозванного токена
	UserID    string    `json:"user_id"`    // ID аккаунта
	ExpiresAt time.Time `json:"expires_at"` // время истечения токена
	RevokedAt time.Time `json:"revoked_at"` // время отзыва
}
