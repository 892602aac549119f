package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/backoffice/internal/auth"
	"github.com/geocoder89/backoffice/internal/config"
	"github.com/geocoder89/backoffice/internal/domain/user"
	"github.com/geocoder89/backoffice/internal/http/handlers"
	"github.com/geocoder89/backoffice/internal/repo/postgres"
	"github.com/geocoder89/backoffice/internal/security"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserReader struct {
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
}

func (f *fakeUserReader) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, postgres.ErrUserNotFound
}

type fakeSessions struct {
	createFn func(ctx context.Context, userID int64) (string, time.Time, error)
	getFn    func(ctx context.Context, raw string) (*user.CurrentUser, error)
	clearFn  func(ctx context.Context, raw string) error

	cleared []string
}

func (f *fakeSessions) CreateSession(ctx context.Context, userID int64) (string, time.Time, error) {
	if f.createFn != nil {
		return f.createFn(ctx, userID)
	}
	return "raw-token", time.Now().Add(8 * time.Hour), nil
}

func (f *fakeSessions) GetCurrentUser(ctx context.Context, raw string) (*user.CurrentUser, error) {
	if f.getFn != nil {
		return f.getFn(ctx, raw)
	}
	return nil, nil
}

func (f *fakeSessions) ClearSession(ctx context.Context, raw string) error {
	f.cleared = append(f.cleared, raw)
	if f.clearFn != nil {
		return f.clearFn(ctx, raw)
	}
	return nil
}

func authRouter(t *testing.T, users *fakeUserReader, sessions *fakeSessions) *gin.Engine {
	t.Helper()

	h := handlers.NewAuthHandler(users, sessions, nil, config.Config{Env: "dev"})

	r := gin.New()
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/logout", h.Logout)
	r.GET("/api/auth/me", h.Me)

	return r
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	return doJSON(r, http.MethodPost, path, body)
}

func putJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	return doJSON(r, http.MethodPut, path, body)
}

func TestLogin(t *testing.T) {
	hash, err := security.HashPassword("correct-horse")

	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	alice := user.User{
		ID:           1,
		Email:        "alice@example.com",
		Name:         "Alice",
		PasswordHash: hash,
		RoleKey:      "ADMIN",
	}

	users := &fakeUserReader{getByEmailFn: func(_ context.Context, email string) (user.User, error) {
		if email == alice.Email {
			return alice, nil
		}
		return user.User{}, postgres.ErrUserNotFound
	}}

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCookie bool
	}{
		{
			name:       "valid credentials",
			body:       gin.H{"email": "alice@example.com", "password": "correct-horse"},
			wantStatus: http.StatusOK,
			wantCookie: true,
		},
		{
			name:       "email is case insensitive",
			body:       gin.H{"email": "ALICE@Example.COM", "password": "correct-horse"},
			wantStatus: http.StatusOK,
			wantCookie: true,
		},
		{
			name:       "wrong password",
			body:       gin.H{"email": "alice@example.com", "password": "nope"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown email",
			body:       gin.H{"email": "bob@example.com", "password": "correct-horse"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing password",
			body:       gin.H{"email": "alice@example.com"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := authRouter(t, users, &fakeSessions{})

			w := postJSON(r, "/api/auth/login", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}

			gotCookie := false

			for _, c := range w.Result().Cookies() {
				if c.Name == auth.SessionCookie && c.Value != "" {
					gotCookie = true

					if !c.HttpOnly {
						t.Error("session cookie must be HttpOnly")
					}
					if c.Path != "/" {
						t.Errorf("cookie path = %q, want /", c.Path)
					}
				}
			}

			if gotCookie != tt.wantCookie {
				t.Errorf("cookie set = %v, want %v", gotCookie, tt.wantCookie)
			}
		})
	}
}

func TestLoginIdenticalResponseForUnknownEmailAndWrongPassword(t *testing.T) {
	hash, _ := security.HashPassword("correct-horse")

	users := &fakeUserReader{getByEmailFn: func(_ context.Context, email string) (user.User, error) {
		if email == "alice@example.com" {
			return user.User{ID: 1, Email: email, PasswordHash: hash}, nil
		}
		return user.User{}, postgres.ErrUserNotFound
	}}

	r := authRouter(t, users, &fakeSessions{})

	wrongPass := postJSON(r, "/api/auth/login", gin.H{"email": "alice@example.com", "password": "bad"})
	unknown := postJSON(r, "/api/auth/login", gin.H{"email": "ghost@example.com", "password": "bad"})

	if wrongPass.Code != unknown.Code {
		t.Fatalf("status differs: %d vs %d", wrongPass.Code, unknown.Code)
	}
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Errorf("bodies differ:\n%s\n%s", wrongPass.Body.String(), unknown.Body.String())
	}
}

func TestLogout(t *testing.T) {
	t.Run("with cookie deletes session and expires cookie", func(t *testing.T) {
		sessions := &fakeSessions{}
		r := authRouter(t, &fakeUserReader{}, sessions)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "raw-token"})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if len(sessions.cleared) != 1 || sessions.cleared[0] != "raw-token" {
			t.Errorf("cleared = %v, want [raw-token]", sessions.cleared)
		}

		expired := false

		for _, c := range w.Result().Cookies() {
			if c.Name == auth.SessionCookie && c.MaxAge < 0 {
				expired = true
			}
		}

		if !expired {
			t.Error("session cookie not expired")
		}
	})

	t.Run("without cookie still succeeds", func(t *testing.T) {
		sessions := &fakeSessions{}
		r := authRouter(t, &fakeUserReader{}, sessions)

		w := postJSON(r, "/api/auth/logout", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if len(sessions.cleared) != 0 {
			t.Errorf("cleared sessions without a cookie: %v", sessions.cleared)
		}
	})

	t.Run("store failure still returns ok", func(t *testing.T) {
		sessions := &fakeSessions{clearFn: func(context.Context, string) error {
			return errors.New("pg down")
		}}
		r := authRouter(t, &fakeUserReader{}, sessions)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "raw-token"})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})
}

func TestMe(t *testing.T) {
	current := &user.CurrentUser{
		ID:          7,
		Email:       "staff@example.com",
		RoleKey:     "STAFF",
		Permissions: []string{"VENDOR_READ", "PRODUCT_READ"},
	}

	tests := []struct {
		name       string
		sessions   *fakeSessions
		withCookie bool
		wantStatus int
	}{
		{
			name: "valid session",
			sessions: &fakeSessions{getFn: func(context.Context, string) (*user.CurrentUser, error) {
				return current, nil
			}},
			withCookie: true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "no cookie",
			sessions:   &fakeSessions{},
			withCookie: false,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired or unknown session",
			sessions:   &fakeSessions{},
			withCookie: true,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := authRouter(t, &fakeUserReader{}, tt.sessions)

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)

			if tt.withCookie {
				req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "raw-token"})
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus == http.StatusOK && !strings.Contains(w.Body.String(), "VENDOR_READ") {
				t.Errorf("response missing permissions: %s", w.Body.String())
			}
		})
	}
}
