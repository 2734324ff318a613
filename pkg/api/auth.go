package api

// SignupRequest представляет запрос на регистрацию нового аккаунта
type SignupRequest struct {
	Email       string `json:"email"`                 // email аккаунта
	Password    string `json:"password"`              // пароль в открытом виде (только в запросе)
	FirstName   string `json:"firstName"`             // имя
	LastName    string `json:"lastName"`              // фамилия
	Role        string `json:"role"`                  // запрашиваемая роль: user или admin
	AdminSecret string `json:"adminSecret,omitempty"` // секрет для роли admin
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`    // email аккаунта
	Password string `json:"password"` // пароль в открытом виде
}

// UserPayload представляет публичные поля аккаунта
// Хеш пароля в ответ не попадает никогда
type UserPayload struct {
	ID        string `json:"id"`        // UUID аккаунта
	Email     string `json:"email"`     // email
	FirstName string `json:"firstName"` // имя
	LastName  string `json:"lastName"`  // фамилия
	Role      string `json:"role"`      // роль
}

// TokenPayload представляет выданные токены
// Refresh token передается только в cookie и в теле не появляется
type TokenPayload struct {
	AccessToken string `json:"accessToken"` // JWT access token
}

// AuthData объединяет данные успешного ответа
type AuthData struct {
	User   *UserPayload `json:"user,omitempty"` // публичные поля аккаунта
	Tokens TokenPayload `json:"tokens"`         // выданные токены
}

// AuthResponse представляет конверт успешного ответа
type AuthResponse struct {
	Message string   `json:"message"` // человекочитаемое сообщение
	Data    AuthData `json:"data"`    // полезная нагрузка
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
