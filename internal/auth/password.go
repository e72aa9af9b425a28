package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// стоимость bcrypt как в исходном развертывании
const bcryptCost = 10

// HashPassword возвращает bcrypt-хэш пароля.
// Хэширование выполняется на записи; исходный пароль нигде не сохраняется.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("ошибка хэширования пароля: %w", err)
	}
	return string(hash), nil
}

// CheckPassword сравнивает пароль с хэшем; возвращает false при несовпадении
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
