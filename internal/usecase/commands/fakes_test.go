//go:build unit

package commands_test

import (
	"context"
	"sort"
	"time"

	"cart-reservation-service/internal/domain/cart"
	"cart-reservation-service/internal/domain/order"
	"cart-reservation-service/internal/infra"
	"cart-reservation-service/internal/infra/db"
	"cart-reservation-service/internal/pkg/clock"
	"cart-reservation-service/internal/pkg/config"
	"cart-reservation-service/internal/usecase/commands"
	"cart-reservation-service/internal/usecase/queries"
	"cart-reservation-service/internal/usecase/shared"

	"github.com/google/uuid"
)

// memStore is a single-goroutine stand-in for Postgres. Repositories mutate it
// directly; memUoW snapshots it before each transaction and restores the
// snapshot when the transaction function fails, so rollback semantics hold.
type memStore struct {
	skus  map[uuid.UUID]shared.SKUSnapshot
	carts map[uuid.UUID]shared.CartSnapshot
	lines map[uuid.UUID]memLine
	order map[uuid.UUID]memOrder

	lineSeq int

	// simulates losing the race between the existing-order check and the
	// unique-violation on insert
	missPaymentLookupOnce bool
}

type memLine struct {
	shared.LineSnapshot
	seq int
}

type memOrder struct {
	id               uuid.UUID
	paymentReference string
	status           string
	email            string
	name             string
	shipping         order.ShippingAddress
	subtotalCents    int64
	totalCents       int64
	items            []memOrderItem
	createdAt        time.Time
}

type memOrderItem struct {
	id          uuid.UUID
	skuID       uuid.UUID
	productName string
	variant     string
	size        string
	priceCents  int32
	quantity    int32
}

func newMemStore() *memStore {
	return &memStore{
		skus:  make(map[uuid.UUID]shared.SKUSnapshot),
		carts: make(map[uuid.UUID]shared.CartSnapshot),
		lines: make(map[uuid.UUID]memLine),
		order: make(map[uuid.UUID]memOrder),
	}
}

func (s *memStore) addSKU(name string, price, available int32) uuid.UUID {
	id := uuid.New()
	s.skus[id] = shared.SKUSnapshot{
		ID:                id,
		ProductName:       name,
		Variant:           "Standard",
		Size:              "M",
		PriceCents:        price,
		AvailableQuantity: available,
	}
	return id
}

// reservedFor sums the line quantities holding stock of one SKU.
func (s *memStore) reservedFor(skuID uuid.UUID) int32 {
	var total int32
	for _, l := range s.lines {
		if l.SKUID == skuID {
			total += l.Quantity
		}
	}
	return total
}

// soldFor sums ordered quantities of one SKU.
func (s *memStore) soldFor(skuID uuid.UUID) int32 {
	var total int32
	for _, o := range s.order {
		for _, it := range o.items {
			if it.skuID == skuID {
				total += it.quantity
			}
		}
	}
	return total
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range s.skus {
		c.skus[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = v
	}
	for k, v := range s.order {
		items := make([]memOrderItem, len(v.items))
		copy(items, v.items)
		v.items = items
		c.order[k] = v
	}
	c.lineSeq = s.lineSeq
	c.missPaymentLookupOnce = s.missPaymentLookupOnce
	return c
}

func (s *memStore) restore(from *memStore) {
	s.skus = from.skus
	s.carts = from.carts
	s.lines = from.lines
	s.order = from.order
	s.lineSeq = from.lineSeq
	s.missPaymentLookupOnce = from.missPaymentLookupOnce
}

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

// ---- StockRepository

type memStockRepo struct{ s *memStore }

func (r memStockRepo) LockSKU(_ context.Context, skuID uuid.UUID) (*shared.SKUSnapshot, error) {
	sku, ok := r.s.skus[skuID]
	if !ok {
		return nil, notFound("sku not found")
	}
	return &sku, nil
}

func (r memStockRepo) Reserve(_ context.Context, skuID uuid.UUID, qty int32) error {
	sku, ok := r.s.skus[skuID]
	if !ok || sku.AvailableQuantity < qty {
		return infra.WrapRepoErr("insufficient stock", nil, infra.KindInsufficientStock)
	}
	sku.AvailableQuantity -= qty
	r.s.skus[skuID] = sku
	return nil
}

func (r memStockRepo) Release(_ context.Context, skuID uuid.UUID, qty int32) error {
	sku, ok := r.s.skus[skuID]
	if !ok {
		return notFound("sku not found")
	}
	sku.AvailableQuantity += qty
	r.s.skus[skuID] = sku
	return nil
}

// ---- CartRepository

type memCartRepo struct{ s *memStore }

func (r memCartRepo) FindBySessionForUpdate(_ context.Context, sessionKey string) (*shared.CartSnapshot, error) {
	for _, c := range r.s.carts {
		if c.SessionKey == sessionKey {
			snap := c
			return &snap, nil
		}
	}
	return nil, notFound("cart not found")
}

func (r memCartRepo) Create(_ context.Context, c *cart.Cart) error {
	r.s.carts[c.ID()] = shared.CartSnapshot{
		ID:         c.ID(),
		SessionKey: c.SessionKey(),
		ExpiresAt:  c.ExpiresAt(),
	}
	return nil
}

func (r memCartRepo) ExtendLease(_ context.Context, cartID uuid.UUID, expiresAt time.Time) error {
	c, ok := r.s.carts[cartID]
	if !ok {
		return notFound("cart not found")
	}
	c.ExpiresAt = expiresAt
	r.s.carts[cartID] = c
	return nil
}

func (r memCartRepo) Lines(_ context.Context, cartID uuid.UUID) ([]shared.LineSnapshot, error) {
	return r.sortedLines(cartID), nil
}

func (r memCartRepo) sortedLines(cartID uuid.UUID) []shared.LineSnapshot {
	var ls []memLine
	for _, l := range r.s.lines {
		if l.CartID == cartID {
			ls = append(ls, l)
		}
	}
	sort.Slice(ls, func(i, j int) bool { return ls[i].seq < ls[j].seq })
	out := make([]shared.LineSnapshot, len(ls))
	for i, l := range ls {
		out[i] = l.LineSnapshot
	}
	return out
}

func (r memCartRepo) FindLineForUpdate(_ context.Context, lineID, cartID uuid.UUID) (*shared.LineSnapshot, error) {
	l, ok := r.s.lines[lineID]
	if !ok || l.CartID != cartID {
		return nil, notFound("cart line not found")
	}
	snap := l.LineSnapshot
	return &snap, nil
}

func (r memCartRepo) AddLineQuantity(_ context.Context, cartID uuid.UUID, line cart.Line) error {
	for id, l := range r.s.lines {
		if l.CartID == cartID && l.SKUID == line.SKUID() {
			l.Quantity += line.Quantity()
			r.s.lines[id] = l
			return nil
		}
	}
	r.s.lineSeq++
	r.s.lines[line.ID()] = memLine{
		LineSnapshot: shared.LineSnapshot{
			ID:       line.ID(),
			CartID:   cartID,
			SKUID:    line.SKUID(),
			Quantity: line.Quantity(),
		},
		seq: r.s.lineSeq,
	}
	return nil
}

func (r memCartRepo) SetLineQuantity(_ context.Context, lineID uuid.UUID, qty int32) error {
	l, ok := r.s.lines[lineID]
	if !ok {
		return notFound("cart line not found")
	}
	l.Quantity = qty
	r.s.lines[lineID] = l
	return nil
}

func (r memCartRepo) DeleteLine(_ context.Context, lineID uuid.UUID) error {
	delete(r.s.lines, lineID)
	return nil
}

func (r memCartRepo) DeleteLines(_ context.Context, cartID uuid.UUID) error {
	for id, l := range r.s.lines {
		if l.CartID == cartID {
			delete(r.s.lines, id)
		}
	}
	return nil
}

func (r memCartRepo) DeleteCart(_ context.Context, cartID uuid.UUID) error {
	delete(r.s.carts, cartID)
	return r.DeleteLines(context.Background(), cartID)
}

func (r memCartRepo) CheckoutLines(_ context.Context, cartID uuid.UUID) ([]shared.CheckoutLine, error) {
	lines := r.sortedLines(cartID)
	out := make([]shared.CheckoutLine, 0, len(lines))
	for _, l := range lines {
		sku, ok := r.s.skus[l.SKUID]
		if !ok {
			return nil, notFound("sku not found")
		}
		out = append(out, shared.CheckoutLine{
			SKUID:       l.SKUID,
			ProductName: sku.ProductName,
			Variant:     sku.Variant,
			Size:        sku.Size,
			PriceCents:  sku.PriceCents,
			Quantity:    l.Quantity,
		})
	}
	return out, nil
}

func (r memCartRepo) FindExpired(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, c := range r.s.carts {
		if !c.ExpiresAt.After(now) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// ---- OrderRepository

type memOrderRepo struct{ s *memStore }

func (r memOrderRepo) FindIDByPaymentReference(_ context.Context, paymentReference string) (uuid.UUID, error) {
	if r.s.missPaymentLookupOnce {
		r.s.missPaymentLookupOnce = false
		return uuid.Nil, notFound("order not found")
	}
	for _, o := range r.s.order {
		if o.paymentReference == paymentReference {
			return o.id, nil
		}
	}
	return uuid.Nil, notFound("order not found")
}

func (r memOrderRepo) Create(_ context.Context, o *order.Order) error {
	for _, existing := range r.s.order {
		if existing.paymentReference == o.PaymentReference() {
			return infra.WrapRepoErr("duplicate payment reference", nil, infra.KindDuplicateKey)
		}
	}
	items := make([]memOrderItem, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, memOrderItem{
			id:          it.ID(),
			skuID:       it.SKUID(),
			productName: it.ProductName(),
			variant:     it.Variant(),
			size:        it.Size(),
			priceCents:  it.PriceCents(),
			quantity:    it.Quantity(),
		})
	}
	r.s.order[o.ID()] = memOrder{
		id:               o.ID(),
		paymentReference: o.PaymentReference(),
		status:           string(o.Status()),
		email:            o.Contact().Email,
		name:             o.Contact().Name,
		shipping:         o.Shipping(),
		subtotalCents:    o.SubtotalCents(),
		totalCents:       o.TotalCents(),
		items:            items,
		createdAt:        o.CreatedAt(),
	}
	return nil
}

// ---- UnitOfWork

type memTx struct{ s *memStore }

func (t memTx) Stock() shared.StockRepository  { return memStockRepo{t.s} }
func (t memTx) Carts() shared.CartRepository   { return memCartRepo{t.s} }
func (t memTx) Orders() shared.OrderRepository { return memOrderRepo{t.s} }
func (t memTx) DB() db.DBTX                    { return nil }

type memUoW struct{ s *memStore }

func (u memUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	before := u.s.clone()
	if err := fn(ctx, memTx{u.s}); err != nil {
		u.s.restore(before)
		return err
	}
	return nil
}

func (u memUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

// ---- Read stores over the same memStore

type memCartReadStore struct{ s *memStore }

func (r memCartReadStore) FindViewBySession(_ context.Context, sessionKey string, now time.Time) (*queries.CartView, error) {
	for _, c := range r.s.carts {
		if c.SessionKey != sessionKey || !c.ExpiresAt.After(now) {
			continue
		}
		view := &queries.CartView{
			ID:         c.ID,
			SessionKey: c.SessionKey,
			ExpiresAt:  c.ExpiresAt,
			Lines:      []queries.CartLineView{},
		}
		for _, l := range (memCartRepo{r.s}).sortedLines(c.ID) {
			sku := r.s.skus[l.SKUID]
			lineTotal := int64(sku.PriceCents) * int64(l.Quantity)
			view.Lines = append(view.Lines, queries.CartLineView{
				ID:             l.ID,
				SKUID:          l.SKUID,
				ProductName:    sku.ProductName,
				Variant:        sku.Variant,
				Size:           sku.Size,
				PriceCents:     sku.PriceCents,
				Quantity:       l.Quantity,
				LineTotalCents: lineTotal,
			})
			view.SubtotalCents += lineTotal
		}
		return view, nil
	}
	return nil, notFound("cart not found")
}

type memOrderReadStore struct{ s *memStore }

func (r memOrderReadStore) FindViewByID(_ context.Context, id uuid.UUID) (*queries.OrderView, error) {
	o, ok := r.s.order[id]
	if !ok {
		return nil, notFound("order not found")
	}
	return r.toView(o), nil
}

func (r memOrderReadStore) FindViewByPaymentReference(_ context.Context, paymentReference string) (*queries.OrderView, error) {
	for _, o := range r.s.order {
		if o.paymentReference == paymentReference {
			return r.toView(o), nil
		}
	}
	return nil, notFound("order not found")
}

func (r memOrderReadStore) toView(o memOrder) *queries.OrderView {
	view := &queries.OrderView{
		ID:               o.id,
		PaymentReference: o.paymentReference,
		Status:           o.status,
		Email:            o.email,
		ShippingName:     o.name,
		ShippingLine1:    o.shipping.Line1,
		ShippingLine2:    o.shipping.Line2,
		ShippingCity:     o.shipping.City,
		ShippingPostal:   o.shipping.PostalCode,
		ShippingCountry:  o.shipping.Country,
		SubtotalCents:    o.subtotalCents,
		TotalCents:       o.totalCents,
		CreatedAt:        o.createdAt,
	}
	for _, it := range o.items {
		view.Items = append(view.Items, queries.OrderItemView{
			ID:          it.id,
			SKUID:       it.skuID,
			ProductName: it.productName,
			Variant:     it.variant,
			Size:        it.size,
			PriceCents:  it.priceCents,
			Quantity:    it.quantity,
		})
	}
	return view
}

// ---- Fixture

type fixture struct {
	store    *memStore
	clock    *clock.MockClock
	cfg      config.Config
	cart     commands.CartCommands
	checkout commands.CheckoutCommands
	sweep    commands.SweepCommands
	notified []uuid.UUID
}

type recordingNotifier struct{ f *fixture }

func (n recordingNotifier) OrderConfirmed(_ context.Context, view *queries.OrderView) error {
	n.f.notified = append(n.f.notified, view.ID)
	return nil
}

func newFixture(start time.Time) *fixture {
	f := &fixture{
		store: newMemStore(),
		clock: clock.NewMockClock(start),
		cfg:   config.NewTestConfig(),
	}
	uow := memUoW{f.store}
	cartQ := queries.NewCartQueries(memCartReadStore{f.store}, f.clock)
	orderQ := queries.NewOrderQueries(memOrderReadStore{f.store})

	f.cart = commands.NewCartCommands(uow, cartQ, f.clock, f.cfg)
	f.checkout = commands.NewCheckoutCommands(uow, orderQ, recordingNotifier{f}, f.clock)
	f.sweep = commands.NewSweepCommands(uow, f.clock, f.cfg)
	return f
}

func confirmation(sessionKey, paymentRef string) commands.PaymentConfirmation {
	return commands.PaymentConfirmation{
		PaymentReference: paymentRef,
		SessionKey:       sessionKey,
		Email:            "jo@example.com",
		Name:             "Jo Fields",
		ShippingLine1:    "12 Harbor Way",
		ShippingCity:     "Portsmouth",
		ShippingPostal:   "PO1 2AB",
		ShippingCountry:  "GB",
	}
}
