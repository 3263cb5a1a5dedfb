package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trezcool/darasa/core/user"
)

func TestZapLogger_fields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &ZapLogger{z: zap.New(core)}

	usr := user.User{ID: "u1", Username: "admin"}
	l.Error("promoting student", errors.New("boom"), usr, map[string]interface{}{"student_id": "s1"})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "promoting student", entries[0].Message)
		assert.Equal(t, "boom", ctx["error"])
		assert.Equal(t, "u1", ctx["user_id"])
		assert.Equal(t, "admin", ctx["username"])
		assert.Equal(t, "s1", ctx["student_id"])
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("discarded")
	assert.NoError(t, l.Sync())
}
