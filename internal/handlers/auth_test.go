package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ch4uTR/TarimKocum/internal/auth"
	"github.com/ch4uTR/TarimKocum/internal/services"
	"github.com/ch4uTR/TarimKocum/internal/store"
	"github.com/ch4uTR/TarimKocum/types"
)

// fakeUserRepo is an in-memory services.UserRepository.
type fakeUserRepo struct {
	users  map[string]types.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]types.User{}, nextID: 1}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	user, ok := f.users[username]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	for _, user := range f.users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	user.ID = f.nextID
	f.nextID++
	f.users[user.Username] = user
	return user, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthRouter(t *testing.T) (*chi.Mux, *auth.Signer) {
	t.Helper()
	signer, err := auth.NewSigner("test-secret", "HS256")
	require.NoError(t, err)

	userService := services.NewUserService(newFakeUserRepo())

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, signer, testLogger())
	})
	return router, signer
}

func signupBody(username, email string) string {
	return `{"username":"` + username + `","email":"` + email + `","password":"pw1",` +
		`"first_name":"Alice","last_name":"Smith","phone_number":"5550001"}`
}

func doSignup(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doLogin(t *testing.T, router http.Handler, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSignup(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := doSignup(t, router, signupBody("alice", "a@x.com"))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"User created successfully"`)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestSignupDuplicate(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := doSignup(t, router, signupBody("alice", "a@x.com"))
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name string
		body string
	}{
		{name: "same username", body: signupBody("alice", "new@x.com")},
		{name: "same email", body: signupBody("bob", "a@x.com")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doSignup(t, router, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Username or email already registered.")
		})
	}
}

func TestSignupMissingFields(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := doSignup(t, router, `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	router, signer := newAuthRouter(t)

	require.Equal(t, http.StatusCreated, doSignup(t, router, signupBody("alice", "a@x.com")).Code)

	rec := doLogin(t, router, "alice", "pw1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token_type":"bearer"`)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	claims, err := signer.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, 1, claims.UserID)
	assert.Equal(t, "user", claims.Role)
}

func TestLoginInvalidCredentials(t *testing.T) {
	router, _ := newAuthRouter(t)

	require.Equal(t, http.StatusCreated, doSignup(t, router, signupBody("alice", "a@x.com")).Code)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "alice", password: "pw2"},
		{name: "unknown user", username: "mallory", password: "pw1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doLogin(t, router, tt.username, tt.password)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "Incorrect username or password")
		})
	}
}

// Authentication must not reveal how the stored hash relates to the input;
// a password differing by one character verifies as invalid.
func TestStoredPasswordIsHashed(t *testing.T) {
	repo := newFakeUserRepo()
	userService := services.NewUserService(repo)
	router := chi.NewRouter()
	signer, err := auth.NewSigner("test-secret", "HS256")
	require.NoError(t, err)
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, signer, testLogger())
	})

	require.Equal(t, http.StatusCreated, doSignup(t, router, signupBody("alice", "a@x.com")).Code)

	stored := repo.users["alice"]
	assert.NotContains(t, stored.PasswordHash, "pw1")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw1")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw2")))
}
