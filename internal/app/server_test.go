package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergiomanvel/HiveAutomation/internal/auth"
	"github.com/sergiomanvel/HiveAutomation/internal/cache"
	"github.com/sergiomanvel/HiveAutomation/internal/config"
	"github.com/sergiomanvel/HiveAutomation/internal/domain"
	"github.com/sergiomanvel/HiveAutomation/internal/handler"
	"github.com/sergiomanvel/HiveAutomation/internal/usecase"
)

// fakeStorage — in-memory реализация ports.UserStorage для HTTP-тестов.
type fakeStorage struct {
	mu     sync.Mutex
	users  map[int64]domain.User
	nextID int64
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{users: make(map[int64]domain.User), nextID: 1}
}

func (s *fakeStorage) ListUsers(_ context.Context) ([]domain.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.PublicUser{}
	for _, u := range s.users {
		out = append(out, u.Public())
	}
	return out, nil
}

func (s *fakeStorage) GetUserByID(_ context.Context, id int64) (*domain.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	public := u.Public()
	return &public, nil
}

func (s *fakeStorage) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *fakeStorage) CreateUser(_ context.Context, username, passwordHash string) (*domain.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return nil, fmt.Errorf("нарушение уникальности username: %s", username)
		}
	}
	id := s.nextID
	s.nextID++
	s.users[id] = domain.User{ID: id, Username: username, PasswordHash: passwordHash}
	public := domain.PublicUser{ID: id, Username: username}
	return &public, nil
}

func (s *fakeStorage) UpdateUser(_ context.Context, id int64, username, passwordHash string) (*domain.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return nil, domain.ErrUserNotFound
	}
	s.users[id] = domain.User{ID: id, Username: username, PasswordHash: passwordHash}
	public := domain.PublicUser{ID: id, Username: username}
	return &public, nil
}

func (s *fakeStorage) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

type testEnv struct {
	router  http.Handler
	storage *fakeStorage
	cache   *cache.MemoryCache
	tokens  *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		ServerPort:         "8080",
		JWTSecret:          "testsecret",
		TokenTTL:           time.Hour,
		CacheTTL:           time.Hour,
		CacheFlushOnCreate: true,
		RequestTimeout:     60 * time.Second,
		RateLimitWindow:    time.Minute,
		RateLimitMax:       1000,
	}

	storage := newFakeStorage()
	memCache := cache.NewMemoryCache()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	uc := usecase.NewUserUseCase(storage, memCache, nil, logger, cfg.CacheTTL, cfg.CacheFlushOnCreate)
	userHandler := handler.NewUserHandler(uc, tokens, logger)

	return &testEnv{
		router:  NewRouter(cfg, userHandler, tokens, logger),
		storage: storage,
		cache:   memCache,
		tokens:  tokens,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) validToken(t *testing.T) string {
	t.Helper()
	token, err := e.tokens.Issue(3, "admin")
	require.NoError(t, err)
	return token
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestHealthAndRoot(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "API is working", rec.Body.String())

	rec = env.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bienvenido a HiveAutomation API", rec.Body.String())
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"non-alphanumeric username", map[string]string{"username": "bad user!", "password": "testpassword"}},
		{"short password", map[string]string{"username": "testuser", "password": "12345"}},
		{"empty body", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]interface{}
			decodeJSON(t, rec, &resp)
			assert.Contains(t, resp, "errors")
		})
	}
}

func TestRegisterAndLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "testuser",
		"password": "testpassword",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.PublicUser
	decodeJSON(t, rec, &created)
	assert.Equal(t, "testuser", created.Username)
	assert.NotZero(t, created.ID)

	// логин с верным паролем выдает токен
	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "testuser",
		"password": "testpassword",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var loginResp map[string]string
	decodeJSON(t, rec, &loginResp)
	assert.NotEmpty(t, loginResp["token"])

	// выданный токен проходит проверку на защищенном маршруте
	rec = env.do(t, http.MethodGet, "/api/users", loginResp["token"], nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "testuser",
		"password": "testpassword",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "ghost",
		"password": "testpassword",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "testuser",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Contraseña incorrecta", resp["message"])
}

func TestAuthGate(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name        string
		header      string
		wantCode    int
		wantMessage string
	}{
		{"missing header", "", http.StatusForbidden, "Acceso denegado"},
		{"bearer without token", "Bearer", http.StatusForbidden, "Acceso denegado, token no proporcionado"},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized, "Token inválido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			var resp map[string]string
			decodeJSON(t, rec, &resp)
			assert.Equal(t, tt.wantMessage, resp["message"])
		})
	}
}

func TestGetUserByID(t *testing.T) {
	env := newTestEnv(t)
	token := env.validToken(t)

	rec := env.do(t, http.MethodPost, "/api/users", token, map[string]string{
		"username": "testuser",
		"password": "testpassword",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.PublicUser
	decodeJSON(t, rec, &created)

	// немедленное чтение возвращает ту же проекцию
	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched domain.PublicUser
	decodeJSON(t, rec, &fetched)
	assert.Equal(t, created, fetched)

	// несуществующий ID — 404
	rec = env.do(t, http.MethodGet, "/api/users/999", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// нечисловой ID — 400
	rec = env.do(t, http.MethodGet, "/api/users/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateUserNeverServesStaleCache(t *testing.T) {
	env := newTestEnv(t)
	token := env.validToken(t)

	rec := env.do(t, http.MethodPost, "/api/users", token, map[string]string{
		"username": "admin",
		"password": "testpassword",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.PublicUser
	decodeJSON(t, rec, &created)

	// прогреваем кэш чтением
	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", created.ID), token, map[string]string{
		"username": "updateduser",
		"password": "updatedpassword",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated domain.PublicUser
	decodeJSON(t, rec, &updated)
	assert.Equal(t, "updateduser", updated.Username)

	// чтение после update обязано вернуть новое имя, а не закэшированное старое
	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched domain.PublicUser
	decodeJSON(t, rec, &fetched)
	assert.Equal(t, "updateduser", fetched.Username)

	// update несуществующего — 404
	rec = env.do(t, http.MethodPut, "/api/users/999", token, map[string]string{
		"username": "x",
		"password": "password",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	token := env.validToken(t)

	rec := env.do(t, http.MethodPost, "/api/users", token, map[string]string{
		"username": "testuser",
		"password": "testpassword",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.PublicUser
	decodeJSON(t, rec, &created)

	// прогреваем кэш, чтобы проверить инвалидацию
	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Usuario eliminado", resp["message"])

	// последующее чтение — 404
	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// кэш-запись удалена
	_, found, err := env.cache.Get(context.Background(), fmt.Sprintf("%d", created.ID))
	require.NoError(t, err)
	assert.False(t, found)

	// повторное удаление — снова 404
	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	token := env.validToken(t)

	for _, username := range []string{"alice", "bob"} {
		rec := env.do(t, http.MethodPost, "/api/users", token, map[string]string{
			"username": username,
			"password": "testpassword",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []domain.PublicUser
	decodeJSON(t, rec, &users)
	assert.Len(t, users, 2)
}
