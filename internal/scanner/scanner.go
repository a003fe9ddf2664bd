// Package scanner turns raw keyboard events into cart actions. A
// hardware barcode reader behaves like a keyboard that types the whole
// code in a fast burst and finishes with Enter; the interpreter
// accumulates characters and resolves the buffer against the catalog
// when Enter arrives.
package scanner

import (
	"time"
	"unicode/utf8"

	"github.com/gxbrielaramalho/MeuMercado/internal/market"
)

// BurstInterval is the inter-keystroke gap below which input is
// considered scanner-paced rather than human typing. Pacing is tracked
// and reported, but does not gate acceptance: a hand-typed code plus
// Enter resolves the same way.
const BurstInterval = 100 * time.Millisecond

// Register is the slice of the store the interpreter needs.
type Register interface {
	FindProduct(id string) (market.Product, bool)
	AddToCart(p market.Product) market.CartItem
}

// KeyEvent is one key-down. InTextField marks events whose focus target
// is a text input, which must never be captured as scan data.
type KeyEvent struct {
	Key         string    `json:"key"`
	InTextField bool      `json:"in_text_field"`
	At          time.Time `json:"-"`
}

// Scan is a resolved buffer. Found=false means the code matched no
// catalog entry; the buffer is cleared either way.
type Scan struct {
	Code         string
	Product      market.Product
	Found        bool
	ScannerPaced bool
}

// Interpreter holds the accumulation buffer and keystroke timing for
// one active point-of-sale screen. It is not safe for concurrent use;
// the owner feeds it one event at a time.
type Interpreter struct {
	reg     Register
	buf     []rune
	lastKey time.Time
	paced   bool
}

func New(reg Register) *Interpreter {
	return &Interpreter{reg: reg}
}

// HandleKey consumes one event. It returns a Scan when the event
// completed a code (Enter on a non-empty buffer) and nil otherwise.
// A matched scan has already been added to the cart on return.
func (in *Interpreter) HandleKey(ev KeyEvent) *Scan {
	if ev.InTextField {
		return nil
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	fast := !in.lastKey.IsZero() && at.Sub(in.lastKey) < BurstInterval

	if ev.Key == "Enter" {
		in.lastKey = at
		if len(in.buf) == 0 {
			return nil
		}
		code := string(in.buf)
		paced := in.paced && fast
		in.buf = in.buf[:0]
		in.paced = false

		scan := &Scan{Code: code, ScannerPaced: paced}
		if p, ok := in.reg.FindProduct(code); ok {
			in.reg.AddToCart(p)
			scan.Product = p
			scan.Found = true
		}
		return scan
	}

	if utf8.RuneCountInString(ev.Key) == 1 {
		r, _ := utf8.DecodeRuneInString(ev.Key)
		if len(in.buf) == 0 {
			in.paced = true // first char opens the burst
		} else {
			in.paced = in.paced && fast
		}
		in.buf = append(in.buf, r)
	}
	// control keys still refresh the timing reference
	in.lastKey = at
	return nil
}

// Reset drops buffered state; called when the point-of-sale screen is
// left so no keystrokes leak across screens.
func (in *Interpreter) Reset() {
	in.buf = nil
	in.lastKey = time.Time{}
	in.paced = false
}
