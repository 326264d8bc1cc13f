package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/sentra-ppob/api/internal/enum"
)

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID       uuid.UUID `json:"id"`
		Username string    `json:"username"`
		Role     string    `json:"role"`
		OutletID uuid.UUID `json:"outlet_id"`
	} `json:"user"`
}

func TestLogin(t *testing.T) {
	r, repo := newEnv(t)
	outletID := uuid.New()
	addUser(t, repo, "loket1", enum.UserRoleLoket, outletID)

	rr := do(t, r, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "loket1",
		"password": testPassword,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body)
	}

	var resp tokenPair
	decode(t, rr, &resp)
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("token pair incomplete")
	}
	if resp.User.Username != "loket1" || resp.User.Role != enum.UserRoleLoket {
		t.Errorf("user = %+v", resp.User)
	}
	if resp.User.OutletID != outletID {
		t.Errorf("outlet = %s, want %s", resp.User.OutletID, outletID)
	}

	// the access token must open a protected route
	rr = do(t, r, http.MethodGet, "/outlets/"+outletID.String()+"/reports", resp.AccessToken, nil)
	if rr.Code != http.StatusOK {
		t.Errorf("protected route status = %d, want 200: %s", rr.Code, rr.Body)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	r, repo := newEnv(t)
	addUser(t, repo, "loket1", enum.UserRoleLoket, uuid.New())

	cases := []struct {
		name string
		body map[string]string
		want int
	}{
		{"wrong password", map[string]string{"username": "loket1", "password": "salah"}, http.StatusUnauthorized},
		{"unknown user", map[string]string{"username": "ghost", "password": testPassword}, http.StatusUnauthorized},
		{"missing password", map[string]string{"username": "loket1"}, http.StatusBadRequest},
		{"missing username", map[string]string{"password": testPassword}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, r, http.MethodPost, "/auth/login", "", tc.body)
			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	r, repo := newEnv(t)
	addUser(t, repo, "finance1", enum.UserRoleFinance, uuid.Nil)

	rr := do(t, r, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "finance1",
		"password": testPassword,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d", rr.Code)
	}
	var first tokenPair
	decode(t, rr, &first)

	rr = do(t, r, http.MethodPost, "/auth/refresh", "", map[string]string{
		"refresh_token": first.RefreshToken,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("refresh status = %d: %s", rr.Code, rr.Body)
	}
	var second tokenPair
	decode(t, rr, &second)
	if second.AccessToken == "" {
		t.Error("no access token after refresh")
	}
	if second.User.Username != "finance1" {
		t.Errorf("user = %q, want finance1", second.User.Username)
	}
}

func TestRefreshRejectsGarbage(t *testing.T) {
	r, _ := newEnv(t)

	rr := do(t, r, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": "not-a-token"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
	rr = do(t, r, http.MethodPost, "/auth/refresh", "", map[string]string{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	r, _ := newEnv(t)
	rr := do(t, r, http.MethodGet, "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}
