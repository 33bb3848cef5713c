package nepdate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ad(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBSToAD_KnownDates(t *testing.T) {
	cases := []struct {
		bs   Date
		want time.Time
	}{
		{Date{2000, 1, 1}, ad(1943, time.April, 14)},
		{Date{2056, 10, 1}, ad(2000, time.January, 15)},
		{Date{2057, 1, 1}, ad(2000, time.April, 13)},
		{Date{2047, 2, 18}, ad(1990, time.June, 1)},
		{Date{2080, 1, 1}, ad(2023, time.April, 14)},
		{Date{2080, 12, 30}, ad(2024, time.April, 12)},
	}
	for _, tc := range cases {
		got, err := BSToAD(tc.bs)
		require.NoError(t, err, tc.bs.String())
		assert.True(t, got.Equal(tc.want), "%s: want %s got %s", tc.bs, tc.want, got)
	}
}

func TestADToBS_RoundTrip(t *testing.T) {
	for day := ad(1943, time.April, 14); day.Before(ad(2024, time.April, 13)); day = day.AddDate(0, 0, 97) {
		bs, err := ADToBS(day)
		require.NoError(t, err)
		back, err := BSToAD(bs)
		require.NoError(t, err)
		require.True(t, back.Equal(day), "round trip %s -> %s -> %s", day, bs, back)
	}
}

func TestADToBS_IgnoresClockTime(t *testing.T) {
	loc := time.FixedZone("NPT", 5*3600+45*60)
	got, err := ADToBS(time.Date(2000, time.January, 15, 23, 30, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, Date{2056, 10, 1}, got)
}

func TestOutOfRange(t *testing.T) {
	_, err := ADToBS(ad(1943, time.April, 13))
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = ADToBS(ad(2024, time.April, 13))
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = BSToAD(Date{1999, 12, 30})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestBSToAD_RejectsImpossibleDay(t *testing.T) {
	// Baishakh 2000 has 30 days.
	_, err := BSToAD(Date{2000, 1, 31})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParse(t *testing.T) {
	_, err := ParseBS("2056-10-01")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseBS("2056/13/01")
	assert.ErrorIs(t, err, ErrInvalid)

	d, err := ParseBS("2056/10/01")
	require.NoError(t, err)
	assert.Equal(t, Date{2056, 10, 1}, d)

	_, err = ParseAD("2000/02/30")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = ParseAD("2000/1/15")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestConverter(t *testing.T) {
	var c Converter

	bs, err := c.ADToBS("2000/01/15")
	require.NoError(t, err)
	assert.Equal(t, "2056/10/01", bs)

	adStr, err := c.BSToAD("2056/10/01")
	require.NoError(t, err)
	assert.Equal(t, "2000/01/15", adStr)

	_, err = c.BSToAD("garbage")
	assert.Error(t, err)
}
