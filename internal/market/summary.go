package market

import "github.com/shopspring/decimal"

// LowStockThreshold marks a product as needing urgent restock.
const LowStockThreshold = 10

type RevenuePoint struct {
	Label string          `json:"label"` // dd/mm
	Total decimal.Decimal `json:"total"`
}

type Summary struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	SalesCount        int             `json:"sales_count"`
	ProductCount      int             `json:"product_count"`
	LowStock          []Product       `json:"low_stock"`
	TopSellingProduct string          `json:"top_selling_product"`
	RevenueBySale     []RevenuePoint  `json:"revenue_by_sale"`
}

// Summary computes the dashboard aggregates from the current catalog
// and sales history.
func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		SalesCount:        len(s.sales),
		ProductCount:      len(s.products),
		TotalRevenue:      decimal.Zero,
		TopSellingProduct: "Nenhum",
	}

	soldQty := map[string]int{}
	for _, sale := range s.sales {
		sum.TotalRevenue = sum.TotalRevenue.Add(sale.Total)
		for _, it := range sale.Items {
			soldQty[it.Name] += it.Quantity
		}
	}
	best := 0
	for name, qty := range soldQty {
		if qty > best || (qty == best && name < sum.TopSellingProduct) {
			best = qty
			sum.TopSellingProduct = name
		}
	}

	for _, p := range s.products {
		if p.Stock < LowStockThreshold {
			sum.LowStock = append(sum.LowStock, p)
		}
	}

	// chart: the most recent sales, oldest first
	n := len(s.sales)
	if n > 7 {
		n = 7
	}
	for i := n - 1; i >= 0; i-- {
		sale := s.sales[i]
		sum.RevenueBySale = append(sum.RevenueBySale, RevenuePoint{
			Label: sale.Timestamp.Format("02/01"),
			Total: sale.Total,
		})
	}
	return sum
}
