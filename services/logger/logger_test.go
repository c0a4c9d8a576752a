package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/user"
)

func observed(level zapcore.Level) (*ZapLogger, *observer.ObservedLogs) {
	zc, logs := observer.New(level)
	return WrapZap(zap.New(zc)), logs
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"loud":    zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestZapLogger(t *testing.T) {
	l, logs := observed(zapcore.InfoLevel)
	usr := user.Profile{ID: 7, Email: "ada@masomo.test"}

	l.Debug("hidden")
	l.Info("hello", map[string]interface{}{"path": "/tasks/"})
	l.Error("boom", errors.New("disk full"), usr, 42)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	assert.Equal(t, "hello", entries[0].Message)
	assert.Equal(t, "/tasks/", entries[0].ContextMap()["path"])

	ctx := entries[1].ContextMap()
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "disk full", ctx["error"])
	assert.Equal(t, int64(7), ctx["user_id"])
	assert.Equal(t, "ada@masomo.test", ctx["user_email"])
	assert.Equal(t, int64(42), ctx["arg2"])
}

func TestNewZapLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		l := NewZapLogger(&core.Config{Debug: debug, LogLevel: "error", AppName: "Masomo", Build: "test"})
		require.NotNil(t, l)
		assert.False(t, l.l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.l.Core().Enabled(zapcore.ErrorLevel))
	}
}

func TestNew(t *testing.T) {
	_, isZap := New(&core.Config{Debug: true}).(*ZapLogger)
	assert.True(t, isZap, "no rollbar token")

	_, isZap = New(&core.Config{Debug: true, TestMode: true, RollbarToken: "tok"}).(*ZapLogger)
	assert.True(t, isZap, "test mode")

	rl, isRollbar := New(&core.Config{Debug: true, RollbarToken: "tok"}).(*RollbarLogger)
	require.True(t, isRollbar)
	rl.Enable(false)
}

func Test_splitPerson(t *testing.T) {
	ada := user.Profile{ID: 1, Name: "Ada"}
	bob := &user.Profile{ID: 2, Name: "Bob"}
	err := errors.New("oops")

	tests := []struct {
		name     string
		args     []interface{}
		wantArgs []interface{}
		wantUser *user.Profile
	}{
		{name: "no user", args: []interface{}{err}, wantArgs: []interface{}{"msg", err}},
		{name: "value", args: []interface{}{ada, err}, wantArgs: []interface{}{"msg", err}, wantUser: &ada},
		{name: "first wins", args: []interface{}{bob, ada}, wantArgs: []interface{}{"msg"}, wantUser: bob},
		{name: "nil pointer", args: []interface{}{(*user.Profile)(nil)}, wantArgs: []interface{}{"msg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, usr := splitPerson("msg", tt.args)
			assert.Equal(t, tt.wantArgs, args)
			assert.Equal(t, tt.wantUser, usr)
		})
	}
}

func TestRollbarLogger_forwards(t *testing.T) {
	zl, logs := observed(zapcore.DebugLevel)
	l := NewRollbarLogger(zl, &core.Config{Debug: true})
	l.Enable(false)

	l.Warn("slow response", map[string]interface{}{"ms": 1200})
	l.Error("request failed", errors.New("timeout"), user.Profile{ID: 3})

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "slow response", entries[0].Message)
	assert.Equal(t, int64(3), entries[1].ContextMap()["user_id"])
}
