package domain

import "errors"

// Ошибки уровня домена, проверяются через errors.Is на границах слоёв.
var (
	// ErrUserNotFound возвращается, когда пользователь с указанным ID или username отсутствует в БД.
	ErrUserNotFound = errors.New("пользователь не найден")

	// ErrInvalidPassword возвращается при несовпадении пароля на логине.
	ErrInvalidPassword = errors.New("неверный пароль")
)

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password"`
}

// PublicUser — публичная проекция пользователя {id, username}.
// Только эта форма возвращается клиентам и кэшируется; хэш пароля
// никогда не попадает ни в ответ, ни в кэш.
type PublicUser struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
}

// Public возвращает публичную проекцию пользователя.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}
