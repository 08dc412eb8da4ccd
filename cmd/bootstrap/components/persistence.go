package components

import (
	"cart-reservation-service/internal/infra/db"
	"cart-reservation-service/internal/infra/readstore"
	"cart-reservation-service/internal/infra/uow"
	"cart-reservation-service/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

// Write-side repositories are not provided here: the UnitOfWork constructs
// them per transaction so every write shares the transaction's connection.
var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		uow.NewPostgresUoW,
		fx.Annotate(
			readstore.NewCartReadStore,
			fx.As(new(queries.CartReadStore)),
		),
		fx.Annotate(
			readstore.NewOrderReadStore,
			fx.As(new(queries.OrderReadStore)),
		),
		fx.Annotate(
			readstore.NewSKUReadStore,
			fx.As(new(queries.SKUReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
