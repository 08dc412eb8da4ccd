package commands

import (
	"context"
	"log/slog"

	"cart-reservation-service/internal/domain/order"
	"cart-reservation-service/internal/infra"
	"cart-reservation-service/internal/pkg/clock"
	"cart-reservation-service/internal/pkg/errs"
	"cart-reservation-service/internal/usecase/queries"
	"cart-reservation-service/internal/usecase/shared"

	"github.com/google/uuid"
)

// errDuplicatePayment never leaves this package: a duplicate payment_reference
// means another call already committed the order, and the caller gets that
// order instead of an error.
var errDuplicatePayment = errs.New("payment reference already committed")

// PaymentConfirmation is what the payment gateway adapter delivers once a
// charge succeeds. PaymentReference is the processor's transaction id and the
// idempotency key for the whole finalization.
type PaymentConfirmation struct {
	PaymentReference string
	SessionKey       string
	Email            string
	Name             string
	ShippingLine1    string
	ShippingLine2    string
	ShippingCity     string
	ShippingPostal   string
	ShippingCountry  string
	AmountCents      int64
}

type FinalizeResult struct {
	Order    *queries.OrderView
	Replayed bool
}

type CheckoutCommands interface {
	Finalize(ctx context.Context, conf PaymentConfirmation) (*FinalizeResult, error)
}

// Notifier runs after the order transaction commits. Failures are logged and
// swallowed: a broken mail pipeline must never roll back a paid order.
type Notifier interface {
	OrderConfirmed(ctx context.Context, view *queries.OrderView) error
}

type NopNotifier struct{}

func NewNopNotifier() Notifier { return &NopNotifier{} }

func (NopNotifier) OrderConfirmed(context.Context, *queries.OrderView) error { return nil }

type checkoutCommandsImpl struct {
	uow          shared.UnitOfWork
	orderQueries queries.OrderQueries
	notifier     Notifier
	clock        clock.Clock
}

func NewCheckoutCommands(
	uow shared.UnitOfWork,
	orderQueries queries.OrderQueries,
	notifier Notifier,
	clock clock.Clock,
) CheckoutCommands {
	return &checkoutCommandsImpl{
		uow:          uow,
		orderQueries: orderQueries,
		notifier:     notifier,
		clock:        clock,
	}
}

// Finalize converts a reserved cart into a permanent order exactly once.
// Stock is NOT touched here: the units were debited when they entered the
// cart, and deleting the cart turns that reservation into a sale.
func (c *checkoutCommandsImpl) Finalize(ctx context.Context, conf PaymentConfirmation) (*FinalizeResult, error) {
	var (
		orderID  uuid.UUID
		replayed bool
	)

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		// The existing-order check must come first and short-circuit
		// everything else; it is what absorbs processor retries.
		existingID, err := tx.Orders().FindIDByPaymentReference(ctx, conf.PaymentReference)
		if err == nil {
			orderID = existingID
			replayed = true
			return nil
		}
		if !infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrStorageFailure)
		}

		// Locking the cart row serializes against the sweeper and against a
		// concurrent finalization of the same session.
		cartSnap, err := tx.Carts().FindBySessionForUpdate(ctx, conf.SessionKey)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrCartNotFound
			}
			return errs.Mark(err, ErrStorageFailure)
		}

		lines, err := tx.Carts().CheckoutLines(ctx, cartSnap.ID)
		if err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		if len(lines) == 0 {
			return ErrCartNotFound
		}

		items := make([]order.Item, 0, len(lines))
		for _, l := range lines {
			item, err := order.NewItem(l.SKUID, l.ProductName, l.Variant, l.Size, l.PriceCents, l.Quantity)
			if err != nil {
				return errs.Wrap(err, "invalid checkout line")
			}
			items = append(items, item)
		}

		entity, err := order.NewOrder(
			conf.PaymentReference,
			order.Contact{Email: conf.Email, Name: conf.Name},
			order.ShippingAddress{
				Line1:      conf.ShippingLine1,
				Line2:      conf.ShippingLine2,
				City:       conf.ShippingCity,
				PostalCode: conf.ShippingPostal,
				Country:    conf.ShippingCountry,
			},
			items,
			conf.AmountCents,
			c.clock.Now(),
		)
		if err != nil {
			return errs.Wrap(err, "failed to build order")
		}

		if err := tx.Orders().Create(ctx, entity); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				// Lost the race past the first check. The transaction is
				// aborted, so resolution happens outside it.
				return errDuplicatePayment
			}
			return errs.Mark(err, ErrStorageFailure)
		}

		if err := tx.Carts().DeleteCart(ctx, cartSnap.ID); err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}

		orderID = entity.ID()
		return nil
	})

	if err != nil {
		if errs.Is(err, errDuplicatePayment) {
			view, qErr := c.orderQueries.GetByPaymentReference(ctx, conf.PaymentReference)
			if qErr != nil {
				return nil, errs.Mark(qErr, ErrStorageFailure)
			}
			return &FinalizeResult{Order: view, Replayed: true}, nil
		}
		return nil, err
	}

	view, err := c.orderQueries.GetByID(ctx, orderID)
	if err != nil {
		return nil, errs.Mark(err, ErrStorageFailure)
	}

	if !replayed {
		if err := c.notifier.OrderConfirmed(ctx, view); err != nil {
			slog.Warn("order confirmation notification failed",
				"order_id", view.ID,
				"payment_reference", view.PaymentReference,
				"error", err.Error())
		}
	}

	return &FinalizeResult{Order: view, Replayed: replayed}, nil
}
