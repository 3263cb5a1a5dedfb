package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

const pwd = "Sup3r$ecret"

func setup(t *testing.T) (user.Service, user.Repository, user.User) {
	t.Helper()
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	svc := user.NewService(repo, core.AuthConfig{MaxLoginAttempts: 3, LockoutDuration: time.Hour})
	usr, err := svc.Create(context.Background(), user.NewUser{
		Name:     "Kofi Boateng",
		Username: "kofi",
		Email:    "kofi@example.com",
		Password: pwd,
		Roles:    []string{user.RoleTeacher},
	})
	require.NoError(t, err)
	return svc, repo, usr
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("success resets failures and stamps last login", func(t *testing.T) {
		svc, _, _ := setup(t)
		_, err := svc.Authenticate(ctx, "kofi", "wrong")
		assert.Equal(t, user.ErrAuthenticationFailed, err)

		usr, err := svc.Authenticate(ctx, "KOFI@example.com ", pwd)
		require.NoError(t, err)
		assert.True(t, usr.LastLogin.Valid)
		assert.Zero(t, usr.FailedLoginAttempts)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _, _ := setup(t)
		_, err := svc.Authenticate(ctx, "nobody", pwd)
		assert.Equal(t, user.ErrAuthenticationFailed, err)
	})

	t.Run("locks after max attempts", func(t *testing.T) {
		svc, repo, usr := setup(t)
		for i := 0; i < 2; i++ {
			_, err := svc.Authenticate(ctx, "kofi", "wrong")
			assert.Equal(t, user.ErrAuthenticationFailed, err)
		}
		_, err := svc.Authenticate(ctx, "kofi", "wrong")
		assert.Equal(t, user.ErrAccountLocked, err)

		// even the right password is refused while locked
		_, err = svc.Authenticate(ctx, "kofi", pwd)
		assert.Equal(t, user.ErrAccountLocked, err)

		// lock expired
		usr, err = repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
		require.NoError(t, err)
		usr.LockedUntil = null.TimeFrom(time.Now().Add(-time.Minute))
		_, err = repo.UpdateUser(ctx, usr)
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, "kofi", pwd)
		assert.NoError(t, err)
	})

	t.Run("set password lifts the lock", func(t *testing.T) {
		svc, repo, usr := setup(t)
		for i := 0; i < 3; i++ {
			_, _ = svc.Authenticate(ctx, "kofi", "wrong")
		}
		usr, err := repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
		require.NoError(t, err)
		assert.True(t, usr.IsLocked(time.Now()))

		_, err = svc.SetPassword(ctx, usr, "N3w#passw0rd")
		require.NoError(t, err)
		_, err = svc.Authenticate(ctx, "kofi", "N3w#passw0rd")
		assert.NoError(t, err)
	})

	t.Run("deactivated", func(t *testing.T) {
		svc, _, usr := setup(t)
		inactive := false
		_, err := svc.Update(ctx, usr, user.UpdateUser{Name: usr.Name, Username: usr.Username, Email: usr.Email, IsActive: &inactive})
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, "kofi", pwd)
		assert.Equal(t, user.ErrAccountDeactivated, err)
	})
}

func TestCheckUniqueness(t *testing.T) {
	svc, _, usr := setup(t)
	ctx := context.Background()

	err := svc.CheckUniqueness(ctx, "kofi", "")
	if assert.Error(t, err) {
		verr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok)
		assert.Equal(t, []core.FieldError{{Field: "username", Error: user.ErrUsernameExists.Error()}}, verr.Fields)
	}

	err = svc.CheckUniqueness(ctx, "other", "kofi@example.com")
	if assert.Error(t, err) {
		verr := errors.Cause(err).(*core.ValidationError)
		assert.Equal(t, "email", verr.Fields[0].Field)
	}

	assert.NoError(t, svc.CheckUniqueness(ctx, "kofi", "kofi@example.com", usr))
}

func newValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

func TestNewUser_Validate(t *testing.T) {
	svc, _, _ := setup(t)
	validate := newValidator()

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{"valid", "G00d#Enough", ""},
		{"too short", "Sh0rt#", "pwdminlen"},
		{"whitespace", "Has Sp4ce#", "pwdnospace"},
		{"all numeric", "1234567890", "pwdnotallnum"},
		{"not complex", "alllowercase1", "pwdcplx"},
		{"similar to username", "Ama_Ntim1", "pwdtoosim"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := user.NewUser{
				Name:            "  Ama Ntim ",
				Username:        "Ama_Ntim",
				Email:           "AMA@example.com",
				Password:        tt.pwd,
				PasswordConfirm: tt.pwd,
				Roles:           []string{user.RoleStudent},
			}
			err := nu.Validate(context.Background(), validate, svc)
			if tt.wantTag == "" {
				require.NoError(t, err)
				assert.Equal(t, "Ama Ntim", nu.Name)
				assert.Equal(t, "ama_ntim", nu.Username)
				assert.Equal(t, "ama@example.com", nu.Email)
				return
			}
			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs), "unexpected error: %v", err)
			assert.Equal(t, "password", verrs[0].Field())
			assert.Equal(t, tt.wantTag, verrs[0].Tag())
		})
	}
}

func TestNewUser_ValidateRolesAndIdentity(t *testing.T) {
	svc, _, _ := setup(t)
	validate := newValidator()

	nu := user.NewUser{Name: "Yaw", Password: "G00d#Enough", PasswordConfirm: "G00d#Enough", Roles: []string{"janitor:"}}
	err := nu.Validate(context.Background(), validate, svc)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	tags := make(map[string]string)
	for _, fe := range verrs {
		tags[fe.Field()] = fe.Tag()
	}
	assert.Equal(t, "allroles", tags["roles"])
	assert.Equal(t, "username_or_email", tags["username"])
	assert.Equal(t, "username_or_email", tags["email"])
}
