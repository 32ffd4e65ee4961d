package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositProduct is the product name given to bottle deposit records split
// out of a receipt line.
const DepositProduct = "Pant"

// PurchaseRecord is one line of a receipt. Fields are only set through
// NewPurchaseRecord so a record never changes after it was parsed.
type PurchaseRecord struct {
	time    time.Time
	product string
	amount  int
	price   decimal.Decimal
}

func NewPurchaseRecord(t time.Time, product string, amount int, price decimal.Decimal) PurchaseRecord {
	return PurchaseRecord{
		time:    t,
		product: product,
		amount:  amount,
		price:   price,
	}
}

// NewDepositRecord returns the "Pant" record that accompanies a product with
// a bottle deposit.
func NewDepositRecord(t time.Time, price decimal.Decimal) PurchaseRecord {
	return NewPurchaseRecord(t, DepositProduct, 1, price)
}

func (r PurchaseRecord) Time() time.Time        { return r.time }
func (r PurchaseRecord) Product() string        { return r.product }
func (r PurchaseRecord) Amount() int            { return r.amount }
func (r PurchaseRecord) Price() decimal.Decimal { return r.price }

// IsDeposit reports whether the record is a split out deposit line.
func (r PurchaseRecord) IsDeposit() bool {
	return r.product == DepositProduct
}

// Date returns the purchase day formatted as YYYY/MM/DD.
func (r PurchaseRecord) Date() string {
	return r.time.Format("2006/01/02")
}

// RawMessage is a receipt email as fetched from the mailbox, body still in
// its transport encoding.
type RawMessage struct {
	SeqNum       uint32
	InternalDate time.Time
	Body         []byte
}
