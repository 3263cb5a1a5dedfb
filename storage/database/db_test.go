package database

import (
	"io/fs"
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
)

func TestDSN(t *testing.T) {
	conf := &core.Config{Database: core.DatabaseConfig{
		Host:          "db",
		Port:          "5432",
		Name:          "darasa",
		User:          "app",
		Password:      "p@ss",
		AdminUser:     "postgres",
		AdminPassword: "root",
	}}

	tests := []struct {
		name     string
		admin    bool
		tls      bool
		wantUser string
		wantSSL  string
	}{
		{"app user", false, true, "app", "require"},
		{"admin user", true, true, "postgres", "require"},
		{"tls disabled", false, false, "app", "disable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf.Database.DisableTLS = !tt.tls
			u, err := url.Parse(dsn("darasa", tt.admin, conf))
			require.NoError(t, err)
			assert.Equal(t, "postgres", u.Scheme)
			assert.Equal(t, "db:5432", u.Host)
			assert.Equal(t, "/darasa", u.Path)
			assert.Equal(t, tt.wantUser, u.User.Username())
			assert.Equal(t, tt.wantSSL, u.Query().Get("sslmode"))
			assert.Equal(t, "utc", u.Query().Get("timezone"))
		})
	}
}

func TestMigrationsAreEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestMigrations_promotionAuditIsKept(t *testing.T) {
	sql, err := fs.ReadFile(migrations, "migrations/00003_grades_and_promotions.sql")
	require.NoError(t, err)

	table := regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS promotion_record \((.*?)\);`).FindSubmatch(sql)
	require.Len(t, table, 2)
	assert.Contains(t, string(table[1]), "REFERENCES student (id) ON DELETE RESTRICT")
	assert.NotContains(t, string(table[1]), "CASCADE")
}
