package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyPaymentReference = errors.New("payment reference must not be empty")
	ErrNoItems               = errors.New("order must contain at least one item")
	ErrInvalidItem           = errors.New("order item must have positive quantity and non-negative price")
	ErrNegativeTotal         = errors.New("order total must not be negative")
)

type Status string

const (
	StatusPaid Status = "PAID"
)

type Contact struct {
	Email string
	Name  string
}

type ShippingAddress struct {
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Country    string
}

// Item is a point-in-time copy of a cart line joined with its SKU. Catalog
// changes after commit must not reach historical orders, hence the
// denormalized product fields.
type Item struct {
	id          uuid.UUID
	skuID       uuid.UUID
	productName string
	variant     string
	size        string
	priceCents  int32
	quantity    int32
}

func NewItem(skuID uuid.UUID, productName, variant, size string, priceCents, quantity int32) (Item, error) {
	if quantity <= 0 || priceCents < 0 {
		return Item{}, ErrInvalidItem
	}
	return Item{
		id:          uuid.New(),
		skuID:       skuID,
		productName: productName,
		variant:     variant,
		size:        size,
		priceCents:  priceCents,
		quantity:    quantity,
	}, nil
}

func (i Item) ID() uuid.UUID       { return i.id }
func (i Item) SKUID() uuid.UUID    { return i.skuID }
func (i Item) ProductName() string { return i.productName }
func (i Item) Variant() string     { return i.variant }
func (i Item) Size() string        { return i.size }
func (i Item) PriceCents() int32   { return i.priceCents }
func (i Item) Quantity() int32     { return i.quantity }

func (i Item) TotalCents() int64 {
	return int64(i.priceCents) * int64(i.quantity)
}

// Order is the permanent record produced by finalization. paymentReference is
// the processor's transaction id and doubles as the idempotency key.
type Order struct {
	id               uuid.UUID
	paymentReference string
	status           Status
	contact          Contact
	shipping         ShippingAddress
	items            []Item
	subtotalCents    int64
	totalCents       int64
	createdAt        time.Time
}

// NewOrder records totalCents as the amount the gateway actually charged,
// which may exceed the item subtotal (shipping, tax). A zero total means the
// confirmation omitted the amount and the subtotal stands in.
func NewOrder(paymentReference string, contact Contact, shipping ShippingAddress, items []Item, totalCents int64, now time.Time) (*Order, error) {
	if paymentReference == "" {
		return nil, ErrEmptyPaymentReference
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if totalCents < 0 {
		return nil, ErrNegativeTotal
	}

	var subtotal int64
	for _, it := range items {
		subtotal += it.TotalCents()
	}
	if totalCents == 0 {
		totalCents = subtotal
	}

	return &Order{
		id:               uuid.New(),
		paymentReference: paymentReference,
		status:           StatusPaid,
		contact:          contact,
		shipping:         shipping,
		items:            items,
		subtotalCents:    subtotal,
		totalCents:       totalCents,
		createdAt:        now,
	}, nil
}

func (o *Order) ID() uuid.UUID             { return o.id }
func (o *Order) PaymentReference() string  { return o.paymentReference }
func (o *Order) Status() Status            { return o.status }
func (o *Order) Contact() Contact          { return o.contact }
func (o *Order) Shipping() ShippingAddress { return o.shipping }
func (o *Order) Items() []Item             { return o.items }
func (o *Order) SubtotalCents() int64      { return o.subtotalCents }
func (o *Order) TotalCents() int64         { return o.totalCents }
func (o *Order) CreatedAt() time.Time      { return o.createdAt }
