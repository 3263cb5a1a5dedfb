package di

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/storage"
)

func testConfig() *core.Config {
	return &core.Config{
		Env:       "TEST",
		AppName:   "Darasa",
		TestMode:  true,
		SecretKey: "test-secret",
		Storage:   core.StorageMemory,
		Auth:      core.AuthConfig{MaxLoginAttempts: 5},
		Promotion: core.PromotionConfig{BatchWorkers: 2, NotifyGuardians: true},
	}
}

func TestNew(t *testing.T) {
	c := New(testConfig)

	err := c.Invoke(func(server *echoapi.Server, stores *storage.Stores) {
		defer func() { _ = server.Close() }()
		assert.Equal(t, core.StorageMemory, stores.Backend)

		for path, want := range map[string]int{
			"/":         http.StatusOK,
			"/metrics":  http.StatusOK,
			"/v1/users": http.StatusUnauthorized,
		} {
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, want, rec.Code, path)
		}
	})
	require.NoError(t, err)
}
