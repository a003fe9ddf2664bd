package market

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyCart signals a checkout with no non-cancelled items; no
	// Sale is produced and the cart is left untouched.
	ErrEmptyCart = errors.New("no valid items in cart")

	// ErrProductExists rejects a catalog insert with a duplicate id.
	ErrProductExists = errors.New("product id already in catalog")
)

// Store owns the catalog, the sales history, the active cart and the
// current session. A single instance is built at startup and injected
// into the HTTP layer; the mutex makes every operation run to
// completion before the next one starts.
type Store struct {
	mu       sync.Mutex
	user     *User
	products []Product
	sales    []Sale
	cart     []CartItem

	now   func() time.Time
	newID func() string
}

func NewStore() *Store {
	now := time.Now
	return &Store{
		products: seedProducts(),
		sales:    seedSales(now()),
		now:      now,
		newID:    uuid.NewString,
	}
}

// Login replaces any existing session with the mock user for role.
func (s *Store) Login(role UserRole) User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := mockUsers[role]
	s.user = &u
	return u
}

// Logout drops the session and empties the cart unconditionally.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.cart = nil
}

func (s *Store) CurrentUser() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Store) Products() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) FindProduct(id string) (Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func (s *Store) Sales() []Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sale, len(s.sales))
	copy(out, s.sales)
	return out
}

func (s *Store) Cart() []CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CartItem, len(s.cart))
	copy(out, s.cart)
	return out
}

// AddToCart inserts a PENDING entry with quantity 1, re-activates a
// cancelled entry back to quantity 1, or bumps the quantity. The cart
// never holds two entries for the same product id. Stock is not
// checked here; oversell is resolved at sale time.
func (s *Store) AddToCart(p Product) CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].ID != p.ID {
			continue
		}
		if s.cart[i].Status == StatusCancelled {
			s.cart[i].Quantity = 1
			s.cart[i].Status = StatusPending
		} else {
			s.cart[i].Quantity++
		}
		return s.cart[i]
	}
	item := CartItem{Product: p, Quantity: 1, Status: StatusPending}
	s.cart = append(s.cart, item)
	return item
}

func (s *Store) RemoveFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeFromCart(productID)
}

func (s *Store) removeFromCart(productID string) {
	for i := range s.cart {
		if s.cart[i].ID == productID {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return
		}
	}
}

// UpdateCartQuantity sets the quantity outright; zero or below removes
// the entry. No-op when the entry is absent.
func (s *Store) UpdateCartQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantity <= 0 {
		s.removeFromCart(productID)
		return
	}
	for i := range s.cart {
		if s.cart[i].ID == productID {
			s.cart[i].Quantity = quantity
			return
		}
	}
}

// ToggleItemStatus is the only path that cancels or restores a line
// item. Quantity survives the toggle.
func (s *Store) ToggleItemStatus(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].ID != productID {
			continue
		}
		if s.cart[i].Status == StatusCancelled {
			s.cart[i].Status = StatusPending
		} else {
			s.cart[i].Status = StatusCancelled
		}
		return
	}
}

func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
}

// CartTotal excludes cancelled items.
func (s *Store) CartTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, it := range s.cart {
		if it.Status == StatusCancelled {
			continue
		}
		total = total.Add(it.LineTotal())
	}
	return total
}

// ActiveItemCount sums quantities over non-cancelled entries.
func (s *Store) ActiveItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.cart {
		if it.Status != StatusCancelled {
			n += it.Quantity
		}
	}
	return n
}

// CompleteSale turns the non-cancelled cart entries into an immutable
// Sale: items re-stamped as paid, stock deducted (floored at zero),
// sale prepended to history, cart cleared. Everything happens under one
// lock hold, so callers see it as atomic. ErrEmptyCart leaves the cart
// untouched.
func (s *Store) CompleteSale(method PaymentMethod) (*Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var valid []CartItem
	for _, it := range s.cart {
		if it.Status != StatusCancelled {
			valid = append(valid, it)
		}
	}
	if len(valid) == 0 {
		return nil, ErrEmptyCart
	}

	total := decimal.Zero
	final := make([]CartItem, len(valid))
	for i, it := range valid {
		total = total.Add(it.LineTotal())
		it.Status = StatusPaid
		final[i] = it
	}

	cashier := "Sistema"
	if s.user != nil {
		cashier = s.user.Name
	}

	sale := Sale{
		ID:            s.newID(),
		Timestamp:     s.now(),
		Items:         final,
		Total:         total,
		PaymentMethod: method,
		CashierName:   cashier,
	}

	for _, it := range valid {
		for i := range s.products {
			if s.products[i].ID != it.ID {
				continue
			}
			s.products[i].Stock -= it.Quantity
			if s.products[i].Stock < 0 {
				s.products[i].Stock = 0
			}
			break
		}
	}

	s.sales = append([]Sale{sale}, s.sales...)
	s.cart = nil
	return &sale, nil
}

// AddProduct appends to the catalog. Ids are the barcode namespace and
// must stay unique.
func (s *Store) AddProduct(p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.products {
		if q.ID == p.ID {
			return ErrProductExists
		}
	}
	s.products = append(s.products, p)
	return nil
}

// UpdateProduct replaces the entry with a matching id, keeping catalog
// order. No-op when absent.
func (s *Store) UpdateProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			return
		}
	}
}

// DeleteProduct removes the catalog entry only; cart snapshots and
// recorded sales keep their copies.
func (s *Store) DeleteProduct(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == productID {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return
		}
	}
}
