package calc

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScale_RoundTrip(t *testing.T) {
	for cents := int64(0); cents <= 100000; cents += 37 {
		v := decimal.New(cents, -2)
		raw := Scale(v)
		assert.Equal(t, cents, raw)
		assert.True(t, Descale(raw).Equal(v), "value %s", v)
	}
}

func TestScale_Rounds(t *testing.T) {
	assert.Equal(t, int64(123), Scale(decimal.RequireFromString("1.234")))
	assert.Equal(t, int64(124), Scale(decimal.RequireFromString("1.235")))
	assert.Equal(t, int64(545), Scale(decimal.RequireFromString("5.45")))
}

func TestParseScaled(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"12", 1200},
		{"12.5", 1250},
		{"1.234,56", 123456},
		{"Rp 100,5", 10050},
		{"0.25", 25},
		{"20.000", 2000000},
		{"1.234.567", 123456700},
		{"10.000,00", 1000000},
		{"1.5", 150},
		{"12.34", 1234},
	}
	for _, tc := range tests {
		got, err := ParseScaled(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseScaled("-1")
	assert.ErrorIs(t, err, ErrNegative)
	_, err = ParseScaled("abc")
	assert.ErrorIs(t, err, ErrNotANumber)
	_, err = ParseScaled("  ")
	assert.ErrorIs(t, err, ErrNotANumber)
}

func TestFormatScaled(t *testing.T) {
	assert.Equal(t, "12.5", FormatScaled(1250))
	assert.Equal(t, "0", FormatScaled(0))
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, 510, m)

	m, err = ParseClock("23:59")
	require.NoError(t, err)
	assert.Equal(t, 1439, m)

	m, err = ParseClock("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	for _, bad := range []string{"24:00", "8:30", "12:60", "", "aa:bb", "23:59:00"} {
		_, err := ParseClock(bad)
		assert.ErrorIs(t, err, ErrInvalidClock, bad)
		assert.False(t, IsClock(bad), bad)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "08:30", FormatClock(510))
	assert.Equal(t, "23:59", FormatClock(1439))
	assert.Equal(t, "00:00", FormatClock(1440))
}

func TestSummarize_FuelTaxes(t *testing.T) {
	s := Summarize(decimal.NewFromInt(100000), DefaultTaxRates)

	assert.Equal(t, "11000", s.PPN.String())
	assert.Equal(t, "5450", s.PPBKB.String())
	assert.Equal(t, "250", s.PPh.String())
	assert.Equal(t, "116700", s.Gross.String())
}

func TestNetPrice(t *testing.T) {
	lines := []Line{
		{Quantity: decimal.NewFromInt(8000), UnitPrice: decimal.NewFromInt(10000)},
		{Quantity: decimal.NewFromInt(2000), UnitPrice: decimal.NewFromInt(10000)},
	}
	assert.Equal(t, "100000000", NetPrice(lines).String())
	assert.True(t, NetPrice(nil).IsZero())
}

func TestDeriveRates_Inverse(t *testing.T) {
	nets := []int64{100000, 123457, 99999999, 7}
	for _, n := range nets {
		net := decimal.NewFromInt(n)
		original := Summarize(net, DefaultTaxRates)

		rates := DeriveRates(net, original.PPN, original.PPBKB, original.PPh)
		again := Summarize(net, rates)

		tolerance := decimal.RequireFromString("0.01")
		assert.True(t, again.PPN.Sub(original.PPN).Abs().LessThanOrEqual(tolerance), "ppn net=%d", n)
		assert.True(t, again.PPBKB.Sub(original.PPBKB).Abs().LessThanOrEqual(tolerance), "ppbkb net=%d", n)
		assert.True(t, again.PPh.Sub(original.PPh).Abs().LessThanOrEqual(tolerance), "pph net=%d", n)
	}
}

func TestDeriveRates_ZeroNetFallsBack(t *testing.T) {
	r := DeriveRates(decimal.Zero, decimal.NewFromInt(5), decimal.Zero, decimal.Zero)
	assert.Equal(t, DefaultTaxRates, r)
}

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		total, unit uint64
		want        []uint64
	}{
		{20000, 8000, []uint64{8000, 8000, 4000}},
		{16000, 8000, []uint64{8000, 8000}},
		{500, 8000, []uint64{500}},
		{0, 8000, nil},
		{10, 0, []uint64{10}},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d/%d", tc.total, tc.unit), func(t *testing.T) {
			assert.Equal(t, tc.want, SplitChunks(tc.total, tc.unit))
		})
	}
}

func TestSplitChunks_Properties(t *testing.T) {
	const unit = uint64(TankerUnit)
	for total := uint64(1); total < 5*unit; total += 99_991 {
		chunks := SplitChunks(total, unit)
		assert.Len(t, chunks, int((total+unit-1)/unit))
		assert.Equal(t, total, SumChunks(chunks))

		smaller := 0
		for _, c := range chunks {
			assert.LessOrEqual(t, c, unit)
			if c < unit {
				smaller++
			}
		}
		if total%unit == 0 {
			assert.Zero(t, smaller)
		} else {
			assert.Equal(t, 1, smaller)
		}
	}
}

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp 1.234.567,50", FormatRupiah(123456750))
	assert.Equal(t, "8.000,00 L", FormatLiters(800000))
	assert.Equal(t, "12.345", FormatCount(12345))
}
