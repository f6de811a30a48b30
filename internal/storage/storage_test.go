package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	logx "pewsched/pkg/logx"
)

func openBoth(t *testing.T) map[string]func() Store {
	t.Helper()
	dir := t.TempDir()
	return map[string]func() Store{
		"file": func() Store {
			st, err := Open(Config{Driver: "file", Path: filepath.Join(dir, "journal")}, logx.Nop())
			require.NoError(t, err)
			return st
		},
		"sqlite": func() Store {
			st, err := Open(Config{Driver: "sqlite", Path: filepath.Join(dir, "journal.db"), BusyTimeout: time.Second}, logx.Nop())
			require.NoError(t, err)
			return st
		},
	}
}

func TestStoreRoundTripAndReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	base := time.Date(2022, 5, 13, 8, 0, 0, 0, time.UTC)

	for name, open := range openBoth(t) {
		st := open()
		for i, tr := range []Transition{
			{At: base, Civil: "2022-05-13T08:00:00", Rule: "day", Active: true},
			{At: base.Add(time.Minute), Civil: "2022-05-13T08:01:00", Rule: "night", Active: false},
			{At: base.Add(12 * time.Hour), Civil: "2022-05-13T20:00:00", Rule: "day", Active: false},
		} {
			require.NoError(t, st.AppendTransition(ctx, tr), "%s #%d", name, i)
		}

		last, err := st.LastStates(ctx)
		require.NoError(t, err, name)
		require.Equal(t, map[string]bool{"day": false, "night": false}, last, name)

		recent, err := st.Recent(ctx, 2)
		require.NoError(t, err, name)
		require.Len(t, recent, 2, name)
		require.Equal(t, "2022-05-13T20:00:00", recent[0].Civil, name)
		require.True(t, recent[0].At.Equal(base.Add(12*time.Hour)), name)
		require.Equal(t, "night", recent[1].Rule, name)
		require.NoError(t, st.Close(), name)

		// State survives a restart.
		st = open()
		last, err = st.LastStates(ctx)
		require.NoError(t, err, name)
		require.Equal(t, map[string]bool{"day": false, "night": false}, last, name)
		require.NoError(t, st.AppendTransition(ctx, Transition{At: base, Civil: "x", Rule: "night", Active: true}), name)
		last, err = st.LastStates(ctx)
		require.NoError(t, err, name)
		require.True(t, last["night"], name)
		require.NoError(t, st.Close(), name)
	}
}

func TestOpenDisabledAndUnknown(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Driver: "none"}, logx.Logger{})
	require.NoError(t, err)
	require.Nil(t, st)

	_, err = Open(Config{Driver: "redis"}, logx.Nop())
	require.EqualError(t, err, "unknown storage driver: redis")

	_, err = Open(Config{Driver: "file"}, logx.Nop())
	require.Error(t, err)
}

func TestThrottledDropsExcessWrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner, err := Open(Config{Driver: "file", Path: filepath.Join(t.TempDir(), "j")}, logx.Nop())
	require.NoError(t, err)
	defer inner.Close()

	st := Throttled(inner, 2)
	for i := 0; i < 5; i++ {
		require.NoError(t, st.AppendTransition(ctx, Transition{Rule: "flappy", Active: i%2 == 0}))
	}
	recent, err := st.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, uint64(3), Dropped(st))
	require.Zero(t, Dropped(inner))
	require.Same(t, inner, Throttled(inner, 0))
}
