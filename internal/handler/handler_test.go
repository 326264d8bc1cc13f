package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sentra-ppob/api/internal/auth"
	"github.com/sentra-ppob/api/internal/config"
	"github.com/sentra-ppob/api/internal/domain"
	"github.com/sentra-ppob/api/internal/enum"
	"github.com/sentra-ppob/api/internal/router"
	"github.com/sentra-ppob/api/internal/store/memory"
)

const (
	testSecret   = "test-secret"
	testPassword = "rahasia123"
)

// newEnv builds the full HTTP stack over an empty in-memory store.
func newEnv(t *testing.T) (chi.Router, *memory.Store) {
	t.Helper()
	repo := memory.New()
	cfg := &config.Config{Port: "0", JWTSecret: testSecret}
	return router.New(cfg, repo), repo
}

// addUser creates a user with the shared test password and returns it.
func addUser(t *testing.T, repo *memory.Store, username, role string, outletID uuid.UUID) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := domain.User{
		ID:             uuid.New(),
		Username:       username,
		FullName:       "Test " + username,
		HashedPassword: string(hash),
		Role:           role,
		OutletID:       outletID,
	}
	if err := repo.CreateUser(t.Context(), user); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func tokenFor(t *testing.T, user domain.User) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, user.ID, user.FullName, user.OutletID, user.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// do performs one request against the router. A non-nil body is JSON encoded;
// a non-empty token goes into the Authorization header.
func do(t *testing.T, r chi.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// seedOutletUsers creates the usual cast: a loket bound to one outlet, a
// kasir, a finance user, and the owner.
func seedOutletUsers(t *testing.T, repo *memory.Store) (loket, kasir, finance, owner domain.User, outletID uuid.UUID) {
	t.Helper()
	outletID = uuid.New()
	loket = addUser(t, repo, "loket1", enum.UserRoleLoket, outletID)
	kasir = addUser(t, repo, "kasir1", enum.UserRoleKasir, uuid.Nil)
	finance = addUser(t, repo, "finance1", enum.UserRoleFinance, uuid.Nil)
	owner = addUser(t, repo, "owner", enum.UserRoleOwner, uuid.Nil)
	return
}
