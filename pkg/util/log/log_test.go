// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/physopt/pkg/cli/exit"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLogTagsAndSeverity(t *testing.T) {
	sc := Scope(t)
	defer sc.Close(t)

	ctx := WithTag(context.Background(), "memo", nil)
	ctx = WithTag(ctx, "g", 3)
	ctx = WithTag(ctx, "fn", "unnest")
	Infof(ctx, "interned %d operators", 2)
	Warningf(context.Background(), "collision")

	lines := strings.Split(strings.TrimSpace(sc.Output()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "I"), lines[0])
	require.Contains(t, lines[0], "log/log_test.go:")
	require.Contains(t, lines[0], "[memo,g3,fn=unnest] interned 2 operators")
	require.True(t, strings.HasPrefix(lines[1], "W"), lines[1])
	require.True(t, strings.HasSuffix(lines[1], " collision"), lines[1])
}

func TestRedaction(t *testing.T) {
	sc := Scope(t)
	defer sc.Close(t)

	Infof(context.Background(), "column %s, operator %s", "secret", Safe("scan"))
	require.Contains(t, sc.Output(), "column secret, operator scan")

	SetRedactable(true)
	defer SetRedactable(false)
	Infof(context.Background(), "column %s, operator %s", "secret", Safe("scan"))
	require.Contains(t, sc.Output(), "column ‹secret›, operator scan")
}

func TestVerbosity(t *testing.T) {
	sc := Scope(t)
	defer sc.Close(t)

	SetVerbosity(0)
	require.False(t, V(1))
	VEventf(context.Background(), 1, "hidden")
	require.NotContains(t, sc.Output(), "hidden")

	SetVerbosity(2)
	require.True(t, V(1))
	VEventf(context.Background(), 1, "shown")
	require.Contains(t, sc.Output(), "shown")
}

func TestThreshold(t *testing.T) {
	sc := Scope(t)
	defer sc.Close(t)

	SetThreshold(Severity_ERROR)
	Warningf(context.Background(), "dropped")
	Errorf(context.Background(), "kept")
	require.NotContains(t, sc.Output(), "dropped")
	require.Contains(t, sc.Output(), "kept")
}

func TestFatalExitOverride(t *testing.T) {
	sc := Scope(t)
	defer sc.Close(t)

	var code exit.Code
	SetExitFunc(true /* hideStack */, func(c exit.Code) { code = c })
	defer ResetExitFunc()
	Fatalf(context.Background(), "boom")
	require.Equal(t, exit.FatalError(), code)
	require.Contains(t, sc.Output(), "boom")
}

func TestEveryN(t *testing.T) {
	SetVerbosity(0)
	start := time.Now()
	e := Every(time.Minute)
	testCases := []struct {
		t          time.Duration // time since start
		log        bool
		suppressed int
	}{
		{0, true, 0},
		{0, false, 0},
		{time.Second, false, 0},
		{time.Minute - 1, false, 0},
		{time.Minute, true, 3},
		{time.Minute + 30*time.Second, false, 0},
		{10 * time.Minute, true, 1},
		{11 * time.Minute, true, 0},
	}
	for _, tc := range testCases {
		ok, suppressed := e.shouldLog(start.Add(tc.t))
		require.Equal(t, tc.log, ok, "%s", tc.t)
		require.Equal(t, tc.suppressed, suppressed, "%s", tc.t)
	}

	// The zero value and high verbosity never suppress.
	var zero EveryN
	for i := 0; i < 3; i++ {
		ok, _ := zero.shouldLog(start)
		require.True(t, ok)
	}
	SetVerbosity(2)
	defer SetVerbosity(0)
	ok, _ := e.shouldLog(start.Add(11 * time.Minute))
	require.True(t, ok)
}

func TestConfigFlags(t *testing.T) {
	c := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"-v", "3", "--log-level=e", "--no-color"}))
	require.Equal(t, int32(3), c.Verbosity)
	require.Equal(t, Severity_ERROR, c.Threshold)
	require.True(t, c.NoColor)

	_, err := SeverityByName("loud")
	require.Error(t, err)
}

func TestColorProfileForTerm(t *testing.T) {
	require.Equal(t, colorProfile256, colorProfileForTerm("xterm-256color"))
	require.Equal(t, colorProfile8, colorProfileForTerm("screen"))
	require.Nil(t, colorProfileForTerm("dumb"))
}
