package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// One mock user per role. Login is a role pick, there is no credential
// check anywhere in the system.
var mockUsers = map[UserRole]User{
	RoleDeveloper: {ID: "dev1", Name: "Dev System", Role: RoleDeveloper, Avatar: "https://picsum.photos/id/1/100/100"},
	RoleOwner:     {ID: "own1", Name: "Sr. Roberto", Role: RoleOwner, Avatar: "https://picsum.photos/id/2/100/100"},
	RoleManager:   {ID: "mgr1", Name: "Ana Gerente", Role: RoleManager, Avatar: "https://picsum.photos/id/3/100/100"},
	RoleCashier:   {ID: "csh1", Name: "João Caixa", Role: RoleCashier, Avatar: "https://picsum.photos/id/4/100/100"},
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedProducts() []Product {
	return []Product{
		{ID: "7894900011517", Name: "Coca-Cola 2L", Price: price("9.50"), Cost: price("6.00"), Stock: 45, Category: CategoryBeverages, ImageURL: "https://picsum.photos/id/10/200/200"},
		{ID: "7891000053508", Name: "Arroz 5kg", Price: price("24.90"), Cost: price("18.00"), Stock: 20, Category: CategoryFood, ImageURL: "https://picsum.photos/id/11/200/200"},
		{ID: "7891035800236", Name: "Sabão em Pó", Price: price("15.90"), Cost: price("10.50"), Stock: 12, Category: CategoryCleaning, ImageURL: "https://picsum.photos/id/12/200/200"},
		{ID: "7896051111514", Name: "Leite Integral", Price: price("5.20"), Cost: price("3.50"), Stock: 5, Category: CategoryBeverages, ImageURL: "https://picsum.photos/id/13/200/200"},
		// short manual code for scale items
		{ID: "1001", Name: "Banana Prata (kg)", Price: price("6.99"), Cost: price("3.00"), Stock: 15, Category: CategoryProduce, ImageURL: "https://picsum.photos/id/14/200/200"},
		{ID: "7891150044802", Name: "Shampoo Seda", Price: price("12.50"), Cost: price("7.00"), Stock: 8, Category: CategoryHygiene, ImageURL: "https://picsum.photos/id/15/200/200"},
	}
}

// seedSales gives the dashboard and the advisor something to show on a
// fresh start.
func seedSales(now time.Time) []Sale {
	p := seedProducts()
	return []Sale{
		{
			ID:            "s2",
			Timestamp:     now.Add(-12 * time.Hour),
			Items:         []CartItem{{Product: p[1], Quantity: 1, Status: StatusPaid}, {Product: p[3], Quantity: 2, Status: StatusPaid}},
			Total:         price("35.30"),
			PaymentMethod: PaymentPix,
			CashierName:   "João Caixa",
		},
		{
			ID:            "s1",
			Timestamp:     now.Add(-24 * time.Hour),
			Items:         []CartItem{{Product: p[0], Quantity: 2, Status: StatusPaid}},
			Total:         price("19.00"),
			PaymentMethod: PaymentCash,
			CashierName:   "João Caixa",
		},
	}
}
