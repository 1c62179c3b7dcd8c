package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09", d.String())
	assert.Equal(t, time.Sunday, d.Weekday())

	_, err = ParseDate("09/03/2025")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	a := MustParseDate("2025-03-08")
	b := MustParseDate("2025-03-31")
	assert.Equal(t, 23, DaysBetween(a, b))
	assert.Equal(t, -23, DaysBetween(b, a))
	assert.Equal(t, 1, DaysBetween(MustParseDate("2024-02-28"), MustParseDate("2024-02-29")))
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Day Date `json:"day"`
	}

	out, err := json.Marshal(payload{Day: MustParseDate("2025-01-02")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2025-01-02"}`, string(out))

	out, err = json.Marshal(payload{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":null}`, string(out))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"day":"2025-12-31"}`), &p))
	assert.True(t, p.Day.Equal(MustParseDate("2025-12-31")))

	require.NoError(t, json.Unmarshal([]byte(`{"day":""}`), &p))
	assert.True(t, p.Day.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"day":"tomorrow"}`), &p))
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want string
	}{
		{"string", "2025-06-01", "2025-06-01"},
		{"bytes", []byte("2025-06-01"), "2025-06-01"},
		{"timestamp text", "2025-06-01T00:00:00Z", "2025-06-01"},
		{"time", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "2025-06-01"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, tt.want, d.String())
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
}

func TestStay_Validate(t *testing.T) {
	tests := []struct {
		name      string
		stay      Stay
		wantParam string
	}{
		{"valid", Stay{MustParseDate("2025-05-01"), MustParseDate("2025-05-04")}, ""},
		{"missing check in", Stay{CheckOut: MustParseDate("2025-05-04")}, "check_in"},
		{"missing check out", Stay{CheckIn: MustParseDate("2025-05-01")}, "check_out"},
		{"same day", Stay{MustParseDate("2025-05-01"), MustParseDate("2025-05-01")}, "check_out"},
		{"reversed", Stay{MustParseDate("2025-05-04"), MustParseDate("2025-05-01")}, "check_out"},
		{"too long", Stay{MustParseDate("2025-01-01"), MustParseDate("2025-06-01")}, "check_out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.stay.Validate()
			if tt.wantParam == "" {
				assert.NoError(t, err)
				return
			}
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, ErrorTypeInvalidRequest, apiErr.Type)
			assert.Equal(t, tt.wantParam, apiErr.Param)
		})
	}
}

func TestStay_Days(t *testing.T) {
	stay := Stay{MustParseDate("2025-12-30"), MustParseDate("2026-01-02")}
	assert.Equal(t, 3, stay.Nights())

	days := stay.Days()
	require.Len(t, days, 3)
	assert.Equal(t, "2025-12-30", days[0].String())
	assert.Equal(t, "2026-01-01", days[2].String())

	assert.True(t, stay.Includes(MustParseDate("2025-12-30")))
	assert.False(t, stay.Includes(MustParseDate("2026-01-02")))
}
