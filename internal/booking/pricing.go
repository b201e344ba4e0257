package booking

// PriceTable maps seat classes to prices in cents.  Seat classes are an
// open set that grows over time, so the table is data rather than an
// enumeration: unknown classes fall back to the standard rate instead of
// failing the sale.
type PriceTable map[string]uint32

// Default per-class prices: standard at the base rate, premium at 1.5x.
const (
	standardPriceCents = 1000
	premiumPriceCents  = 1500
)

// DefaultPriceTable returns the built-in seat class pricing.
func DefaultPriceTable() PriceTable {
	return PriceTable{
		"standard": standardPriceCents,
		"premium":  premiumPriceCents,
	}
}

// Price returns the cents price for a seat class.  Classes missing from
// the table are charged the standard rate.
func (p PriceTable) Price(seatClass string) uint32 {
	if cents, ok := p[seatClass]; ok {
		return cents
	}
	return standardPriceCents
}
