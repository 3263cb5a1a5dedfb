package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/academic"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/promotion"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage"
)

const year = "2024/2025"

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()
	conf := &core.Config{Storage: core.StorageMemory, Auth: core.AuthConfig{MaxLoginAttempts: 5}}
	stores, err := storage.Open(context.Background(), conf, true)
	require.NoError(t, err)

	out := new(bytes.Buffer)
	return &commandLine{
		stores:   stores,
		usrSvc:   user.NewService(stores.Users, conf.Auth),
		students: student.NewService(stores.Students),
		promoSvc: promotion.NewService(promotion.Options{
			Students:   stores.Students,
			Grades:     stores.Grades,
			Records:    stores.Promotions,
			Transactor: stores.Transactor,
			Logger:     logsvc.NewNopLogger(),
		}),
		out: out,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	password   string
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		assert.EqualError(t, err, tt.wantErrStr)
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	t.Run("memory backend", func(t *testing.T) {
		assert.Equal(t, errNoSQLDatabase, cli.run([]string{"admin", "migrate", "up"}))
	})

	cli.stores.SQLDB = new(sql.DB) // never used by the fake below
	origRun := gooseRunFunc
	defer func() { gooseRunFunc = origRun }()
	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, _ := setup(t)
	ctx := context.Background()

	usr, err := cli.usrSvc.Create(ctx, user.NewUser{Name: "User", Username: "awe", Email: "awe@test.cd", Password: "mdr"})
	require.NoError(t, err)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "awe"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, password: "lol", wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, password: "lol"},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, password: "lmao"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd := tt.password
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			tt.check(t, err)
			if err == nil {
				refreshed, err := cli.usrSvc.GetByID(ctx, usr.ID)
				require.NoError(t, err)
				assert.NoError(t, refreshed.CheckPassword(pwd))
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, _ := setup(t)
	ctx := context.Background()

	t.Run("usage", func(t *testing.T) {
		mockPassword("pwd")
		assert.Equal(t, errHelp, cli.run([]string{"admin", "adduser"}))
		mockPassword("")
		assert.Equal(t, errHelp, cli.run([]string{"admin", "adduser", "-username", "kofi"}))
	})

	t.Run("create admin", func(t *testing.T) {
		mockPassword("first-pwd")
		require.NoError(t, cli.run([]string{"admin", "adduser", "-username", "Kofi", "-email", "kofi@darasa.test", "-admin"}))

		usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, "kofi")
		require.NoError(t, err)
		assert.True(t, usr.IsAdmin())
		assert.True(t, usr.IsActive)
		assert.NoError(t, usr.CheckPassword("first-pwd"))
	})

	t.Run("update existing", func(t *testing.T) {
		mockPassword("second-pwd")
		require.NoError(t, cli.run([]string{"admin", "adduser", "-username", "kofi"}))

		usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, "kofi@darasa.test")
		require.NoError(t, err)
		assert.NoError(t, usr.CheckPassword("second-pwd"))
		assert.True(t, usr.IsAdmin())
	})
}

func addStudentWithYear(t *testing.T, cli *commandLine, level int, avg float64) student.Student {
	t.Helper()
	ctx := context.Background()
	st, err := cli.stores.Students.CreateStudent(ctx, student.Student{
		FirstName:       "Ama",
		LastName:        fmt.Sprintf("Level%d", level),
		GradeLevel:      level,
		Department:      academic.DepartmentJHS,
		PromotionStatus: academic.StatusNotPromoted,
	})
	require.NoError(t, err)

	for _, semester := range []int{academic.Semester1, academic.Semester2} {
		rec := grade.Record{StudentID: st.ID, AcademicYear: year, Semester: semester}
		for _, subject := range academic.Subjects(academic.DepartmentJHS)[:8] {
			scores := []float64{avg}
			rec.Subjects = append(rec.Subjects, grade.SubjectScore{Subject: subject, Scores: scores, SemesterAverage: grade.SemesterAverage(scores)})
		}
		_, err = cli.stores.Grades.UpsertGradeRecord(ctx, rec)
		require.NoError(t, err)
	}
	return st
}

func Test_commandLine_promote(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()

	passing := addStudentWithYear(t, cli, 7, 80)
	failing := addStudentWithYear(t, cli, 8, 50)

	t.Run("usage", func(t *testing.T) {
		assert.Equal(t, errHelp, cli.run([]string{"admin", "promote"}))
	})

	t.Run("dry run changes nothing", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "promote", "-year", year, "-dry-run"}))
		assert.Contains(t, out.String(), string(academic.StatusPromoted))
		assert.Contains(t, out.String(), string(academic.StatusNotPromoted))

		st, err := cli.stores.Students.GetStudent(ctx, passing.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, st.GradeLevel)
	})

	t.Run("single student", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "promote", "-year", year, "-student", passing.ID}))
		assert.Contains(t, out.String(), "promoted: 1, conditional: 0, not promoted: 0, graduated: 0, errors: 0")

		st, err := cli.stores.Students.GetStudent(ctx, passing.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, st.GradeLevel)
	})

	t.Run("grade level", func(t *testing.T) {
		out.Reset()
		// both students are now in grade 8
		require.NoError(t, cli.run([]string{"admin", "promote", "-year", year, "-grade", "8"}))
		assert.Contains(t, out.String(), "promoted: 1, conditional: 0, not promoted: 1, graduated: 0, errors: 0")

		st, err := cli.stores.Students.GetStudent(ctx, failing.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, st.GradeLevel)
	})
}
