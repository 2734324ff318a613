// Package policy решает, какую роль получает аккаунт при регистрации.
// Проверка выполняется один раз, до создания аккаунта; после создания
// роль через этот сервис не меняется.
package policy

import (
	"crypto/subtle"
	"errors"

	"github.com/iudanet/authd/internal/models"
)

var (
	// ErrAdminSecretMismatch запрошена роль admin с неверным секретом
	ErrAdminSecretMismatch = errors.New("admin secret mismatch")
	// ErrUnknownRole запрошена роль вне перечисления user/admin
	ErrUnknownRole = errors.New("unknown role")
)

// Policy проверяет запрошенную роль при регистрации
type Policy struct {
	adminSecret string
}

// New создает новую политику
// adminSecret — секрет, дающий право на роль admin;
// пустой секрет отключает регистрацию админов полностью
func New(adminSecret string) *Policy {
	return &Policy{adminSecret: adminSecret}
}

// ResolveRole возвращает роль, которую получит новый аккаунт
// Пустая роль трактуется как user; admin требует совпадения секрета;
// любая другая строка отклоняется как невалидный ввод
func (p *Policy) ResolveRole(requested, providedSecret string) (models.Role, error) {
	switch models.Role(requested) {
	case "", models.RoleUser:
		return models.RoleUser, nil
	case models.RoleAdmin:
		// Пустой adminSecret означает, что admin-регистрация выключена:
		// сравнение с пустой строкой пропускало бы adminSecret:""
		if p.adminSecret == "" {
			return "", ErrAdminSecretMismatch
		}
		if subtle.ConstantTimeCompare([]byte(providedSecret), []byte(p.adminSecret)) != 1 {
			return "", ErrAdminSecretMismatch
		}
		return models.RoleAdmin, nil
	default:
		return "", ErrUnknownRole
	}
}
