package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	var payload struct {
		Fecha Date `json:"fecha"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"fecha":"2025-03-10"}`), &payload))
	assert.Equal(t, NewDate(2025, time.March, 10), payload.Fecha)
	assert.Equal(t, time.Monday, payload.Fecha.Weekday())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fecha":"2025-03-10"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"fecha":"10/03/2025"}`), &payload))
}

func TestClock_Parse(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{in: "08:00", want: NewClock(8, 0)},
		{in: "21:30:00", want: NewClock(21, 30)},
		{in: "25:00", wantErr: true},
		{in: "morning", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "09:00:00", NewClock(8, 0).Add(time.Hour).String())
}

func TestMonthBounds(t *testing.T) {
	first, next := MonthBounds(2024, time.December)

	assert.Equal(t, NewDate(2024, time.December, 1), first)
	assert.Equal(t, NewDate(2025, time.January, 1), next)
}

func TestAddBusinessDays(t *testing.T) {
	// Friday + 3 business days skips the weekend.
	friday := NewDate(2025, time.March, 14)

	assert.Equal(t, NewDate(2025, time.March, 19), AddBusinessDays(friday, 3))
	assert.Equal(t, friday, AddBusinessDays(friday, 0))
}

func TestDayOfWeek(t *testing.T) {
	assert.Equal(t, Sunday, DayOf(time.Sunday))
	assert.Equal(t, time.Wednesday, Wednesday.Weekday())
	assert.True(t, Friday.Valid())
	assert.False(t, DayOfWeek("FRIDAY").Valid())
}

func TestUser_DefaultRole(t *testing.T) {
	u := User{Roles: []Role{{Name: RoleTutor}, {Name: RoleStudent}}}
	assert.Equal(t, RoleStudent, u.DefaultRole())

	u = User{Roles: []Role{{Name: RoleAdmin}}}
	assert.Equal(t, RoleAdmin, u.DefaultRole())

	assert.Empty(t, User{}.DefaultRole())
}
