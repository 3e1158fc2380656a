package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
		ok   bool
	}{
		{in: "", want: zapcore.WarnLevel, ok: true},
		{in: "DEBUG", want: zapcore.DebugLevel, ok: true},
		{in: " info ", want: zapcore.InfoLevel, ok: true},
		{in: "error", want: zapcore.ErrorLevel, ok: true},
		{in: "loud", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLevel(tc.in)
			if !tc.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	require.NotNil(t, L(context.Background()))

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := NewContext(context.Background(), zap.New(core))
	L(ctx).Debug("hello", zap.Int("n", 1))

	require.Equal(t, 1, logs.Len())
	require.Equal(t, "hello", logs.All()[0].Message)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hlkit.log")
	l, err := New(Config{Level: "info", File: path})
	require.NoError(t, err)

	l.Info("parsed")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "parsed")
}
