package calc

import "github.com/shopspring/decimal"

// TaxRates are percentages (11 means 11%).
type TaxRates struct {
	PPN   decimal.Decimal
	PPBKB decimal.Decimal
	PPh   decimal.Decimal
}

// DefaultTaxRates apply to fuel purchases when no stored amounts exist.
var DefaultTaxRates = TaxRates{
	PPN:   decimal.NewFromInt(11),
	PPBKB: decimal.RequireFromString("5.45"),
	PPh:   decimal.RequireFromString("0.25"),
}

// Line is one priced quantity of an order.
type Line struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// TaxSummary holds the nominal amounts derived from a net price.
type TaxSummary struct {
	Net   decimal.Decimal
	PPN   decimal.Decimal
	PPBKB decimal.Decimal
	PPh   decimal.Decimal
	Gross decimal.Decimal
}

// NetPrice is the sum of quantity x unit price over all lines.
func NetPrice(lines []Line) decimal.Decimal {
	net := decimal.Zero
	for _, l := range lines {
		net = net.Add(l.Quantity.Mul(l.UnitPrice))
	}
	return net
}

// Summarize computes every tax amount and the gross price. Amounts are
// rounded to two decimals, the precision the ledger stores.
func Summarize(net decimal.Decimal, r TaxRates) TaxSummary {
	s := TaxSummary{
		Net:   net.Round(2),
		PPN:   percentOf(net, r.PPN),
		PPBKB: percentOf(net, r.PPBKB),
		PPh:   percentOf(net, r.PPh),
	}
	s.Gross = s.Net.Add(s.PPN).Add(s.PPBKB).Add(s.PPh)
	return s
}

// DeriveRates recovers the percentages behind previously stored nominal
// amounts. A zero net falls back to DefaultTaxRates.
func DeriveRates(storedNet, ppn, ppbkb, pph decimal.Decimal) TaxRates {
	if storedNet.IsZero() {
		return DefaultTaxRates
	}
	return TaxRates{
		PPN:   rateOf(ppn, storedNet),
		PPBKB: rateOf(ppbkb, storedNet),
		PPh:   rateOf(pph, storedNet),
	}
}

func percentOf(net, rate decimal.Decimal) decimal.Decimal {
	return net.Mul(rate).Div(hundred).Round(2)
}

func rateOf(amount, net decimal.Decimal) decimal.Decimal {
	return amount.Div(net).Mul(hundred).Round(6)
}
