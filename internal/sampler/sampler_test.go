package sampler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"

	"pewsched/internal/config"
	"pewsched/internal/eventbus"
	"pewsched/internal/rules"
	"pewsched/internal/storage"
	logx "pewsched/pkg/logx"
)

func mustSet(t *testing.T, defs ...config.RuleDef) *rules.Set {
	t.Helper()
	set, err := rules.Compile(defs)
	require.NoError(t, err)
	return set
}

func daily(name, start, end string) config.RuleDef {
	return config.RuleDef{Name: name, Schedule: config.NodeDef{Daily: &config.DailyDef{Start: start, End: end}}}
}

func at(s string) civil.DateTime {
	dt, err := civil.ParseDateTime(s)
	if err != nil {
		panic(err)
	}
	return dt
}

func TestSampleAtReportsTransitions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	bus := eventbus.New()
	events, unsub := bus.Subscribe(16)
	defer unsub()
	store, err := storage.Open(storage.Config{Driver: "file", Path: filepath.Join(t.TempDir(), "j")}, logx.Nop())
	require.NoError(t, err)
	defer store.Close()

	s := New(Config{Enabled: true}, mustSet(t, daily("day", "08:00", "20:00"), daily("night", "20:00", "08:00")), logx.Nop(), bus, store)

	changes := s.SampleAt(ctx, at("2022-05-13T07:30:00"))
	require.Equal(t, []Change{
		{Rule: "day", Active: false, Initial: true},
		{Rule: "night", Active: true, Initial: true},
	}, changes)

	require.Empty(t, s.SampleAt(ctx, at("2022-05-13T07:59:59")), "no change, nothing reported")

	changes = s.SampleAt(ctx, at("2022-05-13T08:00:00"))
	require.Equal(t, []Change{
		{Rule: "day", Active: true},
		{Rule: "night", Active: false},
	}, changes)

	states, sampled := s.Snapshot()
	require.Equal(t, []rules.State{{Rule: "day", Active: true}, {Rule: "night", Active: false}}, states)
	require.Equal(t, at("2022-05-13T08:00:00"), sampled)

	var got []eventbus.Transition
	for len(events) > 0 {
		e := <-events
		require.Equal(t, eventbus.TypeTransition, e.Type)
		got = append(got, e.Data.(eventbus.Transition))
	}
	require.Len(t, got, 4)
	require.Equal(t, eventbus.Transition{Rule: "night", Active: false, At: "2022-05-13T08:00:00"}, got[3])

	recent, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 4)
	require.Equal(t, "day", recent[1].Rule)
	require.True(t, recent[1].Active)
}

func TestSeedSuppressesUnchangedStates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, err := storage.Open(storage.Config{Driver: "file", Path: filepath.Join(t.TempDir(), "j")}, logx.Nop())
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.AppendTransition(ctx, storage.Transition{Rule: "day", Active: true}))
	require.NoError(t, store.AppendTransition(ctx, storage.Transition{Rule: "gone", Active: true}))

	s := New(Config{}, mustSet(t, daily("day", "08:00", "20:00")), logx.Nop(), nil, store)
	require.NoError(t, s.Seed(ctx))

	require.Empty(t, s.SampleAt(ctx, at("2022-05-13T12:00:00")))
	require.Equal(t, []Change{{Rule: "day", Active: false}}, s.SampleAt(ctx, at("2022-05-13T21:00:00")))
}

func TestApplyForgetsRemovedRules(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	bus := eventbus.New()
	events, unsub := bus.Subscribe(8)
	defer unsub()

	s := New(Config{}, mustSet(t, daily("a", "08:00", "20:00"), daily("b", "08:00", "20:00")), logx.Nop(), bus, nil)
	require.Len(t, s.SampleAt(ctx, at("2022-05-13T12:00:00")), 2)
	for range 2 {
		require.Equal(t, eventbus.TypeTransition, (<-events).Type)
	}

	require.NoError(t, s.Apply(Config{}, mustSet(t, daily("b", "08:00", "20:00"), daily("c", "00:00", "00:00"))))
	e := <-events
	require.Equal(t, eventbus.TypeRulesApplied, e.Type)
	require.Equal(t, []string{"b", "c"}, e.Data)

	states, _ := s.Snapshot()
	require.Equal(t, []rules.State{{Rule: "b", Active: true}}, states)

	changes := s.SampleAt(ctx, at("2022-05-13T12:00:01"))
	require.Equal(t, []Change{{Rule: "c", Active: false, Initial: true}}, changes)

	require.Error(t, s.Apply(Config{Spec: "every now and then"}, mustSet(t)))
}

func TestStartSamplesInConfiguredZone(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	s := New(Config{Enabled: true, Spec: "@every 1h", Location: rome}, mustSet(t, daily("day", "08:00", "20:00")), logx.Nop(), nil, nil)
	// 06:30 UTC is 08:30 in Rome during summer time.
	s.now = func() time.Time { return time.Date(2022, 5, 13, 6, 30, 0, 0, time.UTC) }

	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	states, sampled := s.Snapshot()
	require.Equal(t, []rules.State{{Rule: "day", Active: true}}, states)
	require.Equal(t, at("2022-05-13T08:30:00"), sampled)

	// Changing the zone restarts cron; an unchanged spec keeps it running.
	require.NoError(t, s.Apply(Config{Enabled: true, Spec: "@every 1h", Location: time.UTC}, mustSet(t, daily("day", "08:00", "20:00"))))
	s.Tick()
	states, _ = s.Snapshot()
	require.Equal(t, []rules.State{{Rule: "day", Active: false}}, states)
}

func TestValidateSpec(t *testing.T) {
	t.Parallel()
	for _, spec := range []string{"", "@every 30s", "*/5 * * * *", "0 */5 * * * *", "@hourly", "30s", "every:5m"} {
		require.NoError(t, ValidateSpec(spec), spec)
	}
	for _, spec := range []string{"bogus", "61 * * * *", "@every", "-5s", "cron:"} {
		require.Error(t, ValidateSpec(spec), spec)
	}
}

func TestNormalizeSpec(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "  ", want: DefaultSpec},
		{name: "cron", raw: "*/5 * * * *", want: "*/5 * * * *"},
		{name: "descriptor", raw: " @hourly ", want: "@hourly"},
		{name: "prefixed cron", raw: "cron:0 0 * * *", want: "0 0 * * *"},
		{name: "duration", raw: "90s", want: "@every 1m30s"},
		{name: "prefixed every", raw: "Every: 2h", want: "@every 2h0m0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeSpec(tt.raw)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	for _, raw := range []string{"not-a-spec", "every:0s", "every:soon"} {
		_, err := NormalizeSpec(raw)
		require.Error(t, err, raw)
	}
}

func TestStopDuringRestartWins(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	set := mustSet(t, daily("day", "08:00", "20:00"))

	s := New(Config{Enabled: true, Spec: "@every 1h"}, set, logx.Nop(), nil, nil)
	require.NoError(t, s.Start(ctx))
	// Shutdown lands while Apply waits for the old cron to finish.
	s.onRestart = s.Stop

	require.NoError(t, s.Apply(Config{Enabled: true, Spec: "@every 2h"}, set))

	s.mu.Lock()
	defer s.mu.Unlock()
	require.False(t, s.running)
	require.Nil(t, s.c, "no cron may be started after Stop")
}

func TestStartStopCycles(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	set := mustSet(t, daily("day", "08:00", "20:00"))
	s := New(Config{Enabled: true, Spec: "@every 1h"}, set, logx.Nop(), nil, nil)

	for range 3 {
		require.NoError(t, s.Start(ctx))
		s.Stop()
	}
	require.NoError(t, s.Start(ctx))

	cancel()
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return !s.running && s.c == nil
	}, 2*time.Second, 10*time.Millisecond)

	require.ErrorIs(t, s.Start(ctx), context.Canceled)
}
