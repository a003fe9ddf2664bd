package market

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "Dinheiro"
	PaymentCredit PaymentMethod = "Cartão de Crédito"
	PaymentDebit  PaymentMethod = "Cartão de Débito"
	PaymentPix    PaymentMethod = "PIX"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCredit, PaymentDebit, PaymentPix:
		return true
	}
	return false
}

type ItemStatus string

const (
	StatusPending   ItemStatus = "Pendente"
	StatusPaid      ItemStatus = "Pago"
	StatusCancelled ItemStatus = "Cancelado"
)

type Category string

const (
	CategoryBeverages Category = "Bebidas"
	CategoryFood      Category = "Alimentos"
	CategoryCleaning  Category = "Limpeza"
	CategoryHygiene   Category = "Higiene"
	CategoryProduce   Category = "Hortifruti"
	CategoryOther     Category = "Outros"
)

// Categories returns the fixed set, in display order.
func Categories() []Category {
	return []Category{
		CategoryBeverages, CategoryFood, CategoryCleaning,
		CategoryHygiene, CategoryProduce, CategoryOther,
	}
}

func (c Category) Valid() bool {
	for _, v := range Categories() {
		if c == v {
			return true
		}
	}
	return false
}

type UserRole string

const (
	RoleDeveloper UserRole = "Desenvolvedor"
	RoleOwner     UserRole = "Dono"
	RoleManager   UserRole = "Gerente"
	RoleCashier   UserRole = "Caixa"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleDeveloper, RoleOwner, RoleManager, RoleCashier:
		return true
	}
	return false
}

type User struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Role   UserRole `json:"role"`
	Avatar string   `json:"avatar,omitempty"`
}

// Product is a catalog entry. ID doubles as the barcode (EAN-13) or a
// short manual code for scale items.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	Stock       int             `json:"stock"`
	Category    Category        `json:"category"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
}

// CartItem is a Product snapshot, not a live reference: later catalog
// edits never leak into the cart or into recorded sales.
type CartItem struct {
	Product
	Quantity int        `json:"quantity"`
	Status   ItemStatus `json:"status"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Sale is immutable once recorded.
type Sale struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	Items         []CartItem      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CashierName   string          `json:"cashier_name"`
}
