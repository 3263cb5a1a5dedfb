package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/user"
)

func TestUserAPI_login(t *testing.T) {
	app := setup(t)

	tests := []struct {
		name     string
		body     LoginRequest
		wantCode int
		wantErr  string
	}{
		{"by username", LoginRequest{Username: "admin1", Password: testPassword}, http.StatusOK, ""},
		{"by email, mixed case", LoginRequest{Username: "Teacher1@Darasa.test", Password: testPassword}, http.StatusOK, ""},
		{"wrong password", LoginRequest{Username: "admin1", Password: "nope"}, http.StatusBadRequest, "authentication failed"},
		{"unknown user", LoginRequest{Username: "ghost", Password: testPassword}, http.StatusBadRequest, "authentication failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(http.MethodPost, "/v1/users/login", "", tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantErr != "" {
				var got httpErr
				decode(t, rec, &got)
				assert.Equal(t, tt.wantErr, got.Error)
				return
			}
			var got LoginResponse
			decode(t, rec, &got)
			assert.NotEmpty(t, got.Token)
		})
	}

	t.Run("missing fields", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/users/login", "", LoginRequest{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var got map[string]string
		decode(t, rec, &got)
		assert.Equal(t, map[string]string{
			"username": "this field is required",
			"password": "this field is required",
		}, got)
	})

	t.Run("lockout", func(t *testing.T) {
		app.addUser(t, "locked1", user.RoleTeacher)
		for i := 0; i < 2; i++ {
			rec := app.do(http.MethodPost, "/v1/users/login", "", LoginRequest{Username: "locked1", Password: "bad"})
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		}
		rec := app.do(http.MethodPost, "/v1/users/login", "", LoginRequest{Username: "locked1", Password: "bad"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		rec = app.do(http.MethodPost, "/v1/users/login", "", LoginRequest{Username: "locked1", Password: testPassword})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestUserAPI_permissions(t *testing.T) {
	app := setup(t)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		wantCode int
	}{
		{"list without token", http.MethodGet, "/v1/users", "", http.StatusUnauthorized},
		{"list with bad token", http.MethodGet, "/v1/users", "not-a-jwt", http.StatusUnauthorized},
		{"list as teacher", http.MethodGet, "/v1/users", app.token(t, app.teacher), http.StatusForbidden},
		{"list as admin", http.MethodGet, "/v1/users", app.token(t, app.admin), http.StatusOK},
		{"roles as admin", http.MethodGet, "/v1/users/roles", app.token(t, app.admin), http.StatusOK},
		{"own profile", http.MethodGet, "/v1/users/" + app.teacher.ID, app.token(t, app.teacher), http.StatusOK},
		{"other profile", http.MethodGet, "/v1/users/" + app.admin.ID, app.token(t, app.teacher), http.StatusNotFound},
		{"delete self", http.MethodDelete, "/v1/users/" + app.admin.ID, app.token(t, app.admin), http.StatusForbidden},
		{"token refresh", http.MethodPost, "/v1/users/token-refresh", app.token(t, app.student), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestUserAPI_register(t *testing.T) {
	app := setup(t)

	t.Run("admin registers a teacher", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/users/register", app.token(t, app.admin), user.NewUser{
			Name:            "Kwame Asante",
			Username:        "kasante",
			Email:           "kasante@darasa.test",
			Password:        "Zq9#mWx!4pLr",
			PasswordConfirm: "Zq9#mWx!4pLr",
			Roles:           []string{user.RoleTeacher},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var got user.User
		decode(t, rec, &got)
		assert.Equal(t, "kasante", got.Username)
		assert.True(t, got.IsActive)
	})

	t.Run("duplicate username", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/users/register", app.token(t, app.admin), user.NewUser{
			Name:            "Teacher Again",
			Username:        "teacher1",
			Password:        "Zq9#mWx!4pLr",
			PasswordConfirm: "Zq9#mWx!4pLr",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var got map[string]string
		decode(t, rec, &got)
		assert.Contains(t, got, "username")
	})

	t.Run("role above own", func(t *testing.T) {
		principal := app.addUser(t, "principal1", user.RoleAdminPrincipal)
		rec := app.do(http.MethodPost, "/v1/users/register", app.token(t, principal), user.NewUser{
			Name:            "New Owner",
			Username:        "owner2",
			Password:        "Zq9#mWx!4pLr",
			PasswordConfirm: "Zq9#mWx!4pLr",
			Roles:           []string{user.RoleAdminOwner},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var got map[string]string
		decode(t, rec, &got)
		assert.Equal(t, errNoPermsToSetRoles, got["roles"])
	})
}
