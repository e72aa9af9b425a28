package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/sergiomanvel/HiveAutomation/internal/auth"
	"github.com/sergiomanvel/HiveAutomation/internal/domain"
	"github.com/sergiomanvel/HiveAutomation/internal/usecase"
)

// UserHandler — обработчик HTTP-запросов для работы с пользователями.
type UserHandler struct {
	userUseCase usecase.UserUseCase
	tokens      *auth.TokenManager
	logger      *slog.Logger
}

// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(uc usecase.UserUseCase, tokens *auth.TokenManager, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: uc,
		tokens:      tokens,
		logger:      logger,
	}
}

// credentialsRequest — тело запроса регистрации/создания/обновления пользователя.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate проверяет имя пользователя (алфавитно-цифровое) и длину пароля (минимум 6)
func (r credentialsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, is.Alphanumeric),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 0)),
	)
}

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithMessage — отправляет JSON-ответ вида {"message": ...}.
func respondWithMessage(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"message": message}, logger)
}

// respondServerError — единый ответ на ошибку БД/сервера, без утечки деталей.
func respondServerError(w http.ResponseWriter) {
	http.Error(w, "Error en el servidor", http.StatusInternalServerError)
}

// userIDFromRequest извлекает и разбирает параметр {id} маршрута.
func userIDFromRequest(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// Register — регистрирует нового пользователя (с валидацией входных данных).
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid register request body", "error", err)
		respondWithMessage(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido", h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		h.logger.Warn("register validation failed", "username", req.Username, "error", err)
		respondWithJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": err}, h.logger)
		return
	}

	user, err := h.userUseCase.CreateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Error("failed to register user", "username", req.Username, "error", err)
		respondServerError(w)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	respondWithJSON(w, http.StatusCreated, user, h.logger)
}

// Login — проверяет учетные данные и выдает JWT.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid login request body", "error", err)
		respondWithMessage(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido", h.logger)
		return
	}

	user, err := h.userUseCase.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		respondWithMessage(w, http.StatusNotFound, "Usuario no encontrado", h.logger)
		return
	case errors.Is(err, domain.ErrInvalidPassword):
		respondWithMessage(w, http.StatusUnauthorized, "Contraseña incorrecta", h.logger)
		return
	case err != nil:
		h.logger.Error("failed to login user", "username", req.Username, "error", err)
		respondServerError(w)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.logger.Error("failed to issue token", "user_id", user.ID, "error", err)
		respondServerError(w)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"token": token}, h.logger)
}

// ListUsers — возвращает всех пользователей (без паролей).
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userUseCase.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		respondServerError(w)
		return
	}
	respondWithJSON(w, http.StatusOK, users, h.logger)
}

// GetUserByID — возвращает пользователя по ID (чтение через кэш).
func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := userIDFromRequest(r)
	if err != nil {
		respondWithMessage(w, http.StatusBadRequest, "ID de usuario inválido", h.logger)
		return
	}

	user, err := h.userUseCase.GetUserByID(r.Context(), id)
	if errors.Is(err, domain.ErrUserNotFound) {
		respondWithMessage(w, http.StatusNotFound, "Usuario no encontrado", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("failed to get user by id", "user_id", id, "error", err)
		respondServerError(w)
		return
	}

	respondWithJSON(w, http.StatusOK, user, h.logger)
}

// CreateUser — создает нового пользователя (защищенный маршрут).
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid create request body", "error", err)
		respondWithMessage(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido", h.logger)
		return
	}

	user, err := h.userUseCase.CreateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Error("failed to create user", "username", req.Username, "error", err)
		respondServerError(w)
		return
	}

	h.logger.Info("user created", "user_id", user.ID)
	respondWithJSON(w, http.StatusCreated, user, h.logger)
}

// UpdateUser — обновляет пользователя по ID.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := userIDFromRequest(r)
	if err != nil {
		respondWithMessage(w, http.StatusBadRequest, "ID de usuario inválido", h.logger)
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid update request body", "error", err)
		respondWithMessage(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido", h.logger)
		return
	}

	user, err := h.userUseCase.UpdateUser(r.Context(), id, req.Username, req.Password)
	if errors.Is(err, domain.ErrUserNotFound) {
		respondWithMessage(w, http.StatusNotFound, "Usuario no encontrado", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("failed to update user", "user_id", id, "error", err)
		respondServerError(w)
		return
	}

	h.logger.Info("user updated", "user_id", id)
	respondWithJSON(w, http.StatusOK, user, h.logger)
}

// DeleteUser — удаляет пользователя по ID.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := userIDFromRequest(r)
	if err != nil {
		respondWithMessage(w, http.StatusBadRequest, "ID de usuario inválido", h.logger)
		return
	}

	err = h.userUseCase.DeleteUser(r.Context(), id)
	if errors.Is(err, domain.ErrUserNotFound) {
		respondWithMessage(w, http.StatusNotFound, "Usuario no encontrado", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("failed to delete user", "user_id", id, "error", err)
		respondServerError(w)
		return
	}

	h.logger.Info("user deleted", "user_id", id)
	respondWithMessage(w, http.StatusOK, "Usuario eliminado", h.logger)
}

// Health — проверка работоспособности сервиса.
func (h *UserHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("API is working"))
}

// Root — приветственный баннер.
func (h *UserHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Bienvenido a HiveAutomation API"))
}
