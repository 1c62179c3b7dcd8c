package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolio_Totals(t *testing.T) {
	f := &Folio{
		Items: []FolioItem{
			{Kind: ItemRoom, Amount: 30000},
			{Kind: ItemService, Amount: 2550},
			{Kind: ItemDiscount, Amount: -5000},
			{Kind: ItemTax, Amount: 2755},
		},
		Payments: []Payment{{Amount: 10000}, {Amount: 5000}},
	}

	got := f.Totals()
	assert.Equal(t, FolioTotals{
		Charges:   32550,
		Discounts: -5000,
		Tax:       2755,
		Total:     30305,
		Paid:      15000,
		Balance:   15305,
	}, got)
}

func TestTaxOn(t *testing.T) {
	tests := []struct {
		amount int64
		bp     int
		want   int64
	}{
		{10000, 1000, 1000},
		{12345, 825, 1018},
		{5, 1000, 1},
		{4, 1000, 0},
		{-5000, 1000, -500},
		{10000, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TaxOn(tt.amount, tt.bp), "TaxOn(%d, %d)", tt.amount, tt.bp)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "USD 120.50", FormatMoney(12050, "USD"))
	assert.Equal(t, "-EUR 0.05", FormatMoney(-5, "EUR"))
}

func TestStringList(t *testing.T) {
	v, err := StringList{"wifi", "balcony"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["wifi","balcony"]`, v)

	nilValue, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", nilValue)

	var l StringList
	require.NoError(t, l.Scan([]byte(`["minibar"]`)))
	assert.Equal(t, StringList{"minibar"}, l)
	require.NoError(t, l.Scan(nil))
	assert.Nil(t, l)
}

func TestHotel_Location(t *testing.T) {
	h := &Hotel{Timezone: "Europe/Lisbon"}
	assert.Equal(t, "Europe/Lisbon", h.Location().String())

	h.Timezone = "Mars/Olympus"
	assert.Equal(t, "UTC", h.Location().String())
}

func TestReservation_Stay(t *testing.T) {
	r := &Reservation{
		CheckIn:  MustParseDate("2025-07-01"),
		CheckOut: MustParseDate("2025-07-05"),
		Adults:   2,
		Children: 1,
	}
	assert.Equal(t, 4, r.Nights())
	assert.Equal(t, 3, r.Guests())
}
