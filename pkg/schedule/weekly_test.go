package schedule

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"
)

var singleDays = []struct {
	day  time.Weekday
	flag DaysOfWeek
}{
	{time.Monday, Monday},
	{time.Tuesday, Tuesday},
	{time.Wednesday, Wednesday},
	{time.Thursday, Thursday},
	{time.Friday, Friday},
	{time.Saturday, Saturday},
	{time.Sunday, Sunday},
}

func TestIsScheduledDayOfWeekSingleDay(t *testing.T) {
	t.Parallel()
	for _, sd := range singleDays {
		require.True(t, IsScheduledDayOfWeek(sd.day, sd.flag), "%s in %s", sd.day, sd.flag)
		for _, other := range singleDays {
			if other.day == sd.day {
				continue
			}
			require.False(t, IsScheduledDayOfWeek(other.day, sd.flag), "%s in %s", other.day, sd.flag)
		}
		require.False(t, IsScheduledDayOfWeek(time.Weekday(7), sd.flag))
		require.False(t, IsScheduledDayOfWeek(time.Weekday(-1), sd.flag))
	}
}

func TestIsScheduledDayOfWeekPairs(t *testing.T) {
	t.Parallel()
	for _, x := range singleDays {
		for _, y := range singleDays {
			days := x.flag | y.flag
			require.True(t, IsScheduledDayOfWeek(x.day, days))
			require.True(t, IsScheduledDayOfWeek(y.day, days))
			for _, other := range singleDays {
				if other.day == x.day || other.day == y.day {
					continue
				}
				require.False(t, IsScheduledDayOfWeek(other.day, days), "%s in %s", other.day, days)
			}
		}
	}
}

func TestWeeklyStateAt(t *testing.T) {
	t.Parallel()
	// 2022-05-09 is a Monday.
	week := map[time.Weekday]int{
		time.Monday: 9, time.Tuesday: 10, time.Wednesday: 11, time.Thursday: 12,
		time.Friday: 13, time.Saturday: 14, time.Sunday: 15,
	}

	s := NewWeekly(Monday | Wednesday)
	require.True(t, s.StateAt(at(2022, 5, week[time.Monday], 12, 0, 0)))
	require.False(t, s.StateAt(at(2022, 5, week[time.Tuesday], 12, 0, 0)))

	for _, days := range []DaysOfWeek{None, Monday, Weekdays, Weekend, All, Tuesday | Sunday} {
		w := NewWeekly(days)
		for wd, d := range week {
			dt := at(2022, 5, d, 0, 0, 0)
			require.Equal(t, days&FlagOf(wd) != 0, w.StateAt(dt), "%s on %s", days, wd)
		}
	}
}

func TestWeeklyInvalidDate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		date civil.Date
		want bool
	}{
		{"feb 30", civil.Date{Year: 2022, Month: time.February, Day: 30}, false},
		{"feb 29 non leap", civil.Date{Year: 2023, Month: time.February, Day: 29}, false},
		{"month 13", civil.Date{Year: 2022, Month: 13, Day: 1}, false},
		{"zero", civil.Date{}, false},
		{"feb 29 leap", civil.Date{Year: 2024, Month: time.February, Day: 29}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dt := civil.DateTime{Date: tc.date, Time: clock(12, 0, 0)}
			require.Equal(t, tc.want, NewWeekly(All).StateAt(dt))
		})
	}

	// 2024-02-29 is a Thursday.
	leap := civil.DateTime{Date: civil.Date{Year: 2024, Month: time.February, Day: 29}}
	require.True(t, NewWeekly(Thursday).StateAt(leap))
	require.False(t, NewWeekly(Weekend).StateAt(leap))
}

func TestDaysOfWeekSetAlgebra(t *testing.T) {
	t.Parallel()
	require.Equal(t, DaysOfWeek(0x7f), All)
	require.Equal(t, All, Monday.Union(Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday))
	require.Equal(t, Monday|Friday, Friday.Union(Monday))
	require.Equal(t, Monday, Monday.Union(Monday, None))
	require.Equal(t, (Monday.Union(Tuesday)).Union(Sunday), Monday.Union(Tuesday.Union(Sunday)))

	require.True(t, All.Has(Saturday))
	require.True(t, Weekdays.Has(Monday|Friday))
	require.False(t, Weekdays.Has(Friday|Saturday))
	require.False(t, All.Has(None))
	for _, sd := range singleDays {
		require.False(t, None.Has(sd.flag))
	}
}

func TestDaysOfWeekString(t *testing.T) {
	t.Parallel()
	require.Equal(t, "None", None.String())
	require.Equal(t, "All", All.String())
	require.Equal(t, "Mon|Wed", (Wednesday | Monday).String())
	require.Equal(t, "Sat|Sun", Weekend.String())
	require.Equal(t, "weekly Tue", NewWeekly(Tuesday).String())
}

func TestParseDaysOfWeek(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     string
		want    DaysOfWeek
		wantErr bool
	}{
		{raw: "mon,wed", want: Monday | Wednesday},
		{raw: "Monday | Friday", want: Monday | Friday},
		{raw: "weekdays", want: Weekdays},
		{raw: "weekend,mon", want: Weekend | Monday},
		{raw: "all", want: All},
		{raw: "none", want: None},
		{raw: "SUN", want: Sunday},
		{raw: "", wantErr: true},
		{raw: "funday", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDaysOfWeek(tt.raw)
		if tt.wantErr {
			require.Error(t, err, "ParseDaysOfWeek(%q)", tt.raw)
			continue
		}
		require.NoError(t, err, "ParseDaysOfWeek(%q)", tt.raw)
		require.Equal(t, tt.want, got, "ParseDaysOfWeek(%q)", tt.raw)
	}
}
