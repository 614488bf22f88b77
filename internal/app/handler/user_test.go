package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"artgen/internal/app/apperr"
	"artgen/internal/app/model"
	"artgen/internal/app/session"
	storagemock "artgen/internal/app/storage/mock"
)

func postJSON(t *testing.T, h http.HandlerFunc, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("request marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestUserHandler_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := storagemock.NewMockUserRepository(ctrl)
	users.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *model.User) (*model.User, error) {
			if m.Name != "alice" || m.Email != "alice@example.com" {
				t.Errorf("stored user: got %q %q", m.Name, m.Email)
			}
			if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte("hunter2hunter2")); err != nil {
				t.Errorf("stored password hash does not match: %v", err)
			}
			out := *m
			out.ID = uuid.New()
			return &out, nil
		})

	h := NewUserHandler(users, session.NewJWT("test-secret"))

	rec := postJSON(t, h.Register, "/register", map[string]string{
		"name":     "alice",
		"email":    "alice@example.com",
		"password": "hunter2hunter2",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: want 201, got %d, body %s", rec.Code, rec.Body.String())
	}

	var res authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("response decode: %v", err)
	}
	if !res.Success {
		t.Error("success flag not set")
	}
	if res.Token == "" {
		t.Error("no token issued")
	}
	if res.User.CreditBalance != 0 {
		t.Errorf("new account balance: want 0, got %d", res.User.CreditBalance)
	}
}

func TestUserHandler_Register_Duplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := storagemock.NewMockUserRepository(ctrl)
	users.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(nil, apperr.ErrConflict)

	h := NewUserHandler(users, session.NewJWT("test-secret"))

	rec := postJSON(t, h.Register, "/register", map[string]string{
		"name":     "alice",
		"email":    "alice@example.com",
		"password": "hunter2hunter2",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want 400, got %d", rec.Code)
	}

	var res jsonError
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("response decode: %v", err)
	}
	if res.Success {
		t.Error("success flag set on failure")
	}
	if res.Message != "user already exists" {
		t.Errorf("message: got %q", res.Message)
	}
}

func TestUserHandler_Register_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No Create expectation: invalid input never reaches the store.
	users := storagemock.NewMockUserRepository(ctrl)
	h := NewUserHandler(users, session.NewJWT("test-secret"))

	tt := []struct {
		name string
		body map[string]string
	}{
		{name: "short password", body: map[string]string{"name": "alice", "email": "alice@example.com", "password": "short"}},
		{name: "bad email", body: map[string]string{"name": "alice", "email": "not-an-email", "password": "hunter2hunter2"}},
		{name: "missing name", body: map[string]string{"email": "alice@example.com", "password": "hunter2hunter2"}},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, h.Register, "/register", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: want 400, got %d", rec.Code)
			}
		})
	}
}

func TestUserHandler_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	stored := &model.User{
		ID:            uuid.New(),
		Name:          "alice",
		Email:         "alice@example.com",
		PasswordHash:  string(hash),
		CreditBalance: 42,
	}

	tt := []struct {
		name       string
		email      string
		password   string
		storeErr   error
		wantStatus int
	}{
		{name: "ok", email: "alice@example.com", password: "hunter2hunter2", wantStatus: http.StatusOK},
		{name: "wrong password", email: "alice@example.com", password: "wrongwrongwrong", wantStatus: http.StatusUnauthorized},
		{name: "unknown email", email: "bob@example.com", password: "hunter2hunter2", storeErr: apperr.ErrNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			users := storagemock.NewMockUserRepository(ctrl)
			if tc.storeErr != nil {
				users.EXPECT().ReadByEmail(gomock.Any(), tc.email).Return(nil, tc.storeErr)
			} else {
				users.EXPECT().ReadByEmail(gomock.Any(), tc.email).Return(stored, nil)
			}

			h := NewUserHandler(users, session.NewJWT("test-secret"))

			rec := postJSON(t, h.Login, "/login", map[string]string{
				"email":    tc.email,
				"password": tc.password,
			})

			if rec.Code != tc.wantStatus {
				t.Fatalf("status: want %d, got %d, body %s", tc.wantStatus, rec.Code, rec.Body.String())
			}

			if tc.wantStatus == http.StatusOK {
				var res authResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
					t.Fatalf("response decode: %v", err)
				}
				if res.Token == "" {
					t.Error("no token issued")
				}
				if res.User.CreditBalance != 42 {
					t.Errorf("balance: want 42, got %d", res.User.CreditBalance)
				}
			}
		})
	}
}
