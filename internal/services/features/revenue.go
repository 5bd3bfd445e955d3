package features

// Prices holds the unit price per livestock category.
type Prices struct {
	Large float64
	Small float64
}

// DefaultPrices are the stock unit prices in rupiah.
var DefaultPrices = Prices{Large: 2000, Small: 1000}

// CurrentRevenue is the revenue implied by today's counts.
func (p Prices) CurrentRevenue(large, small float64) float64 {
	return large*p.Large + small*p.Small
}
