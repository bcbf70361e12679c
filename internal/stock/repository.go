package stock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository is the authenticated relational store the engine runs
// against. Every call is scoped to the caller's user id; the store is
// responsible for row-level filtering, the engine never sees another
// tenant's rows.
type Repository interface {
	// Catalog reads
	ProductsByUser(ctx context.Context, userID int64) ([]ProductRef, error)
	LocationsByUser(ctx context.Context, userID int64) ([]LocationRef, error)
	CharacteristicsByProduct(ctx context.Context, userID, productID int64) ([]Attribute, error)
	OptionsByCharacteristic(ctx context.Context, characteristicID int64) ([]AttributeOption, error)

	// Variant resolution. Returns the ids of every variant whose linked
	// option-set equals optionIDs exactly; the invariant says at most one,
	// the matcher treats more as fatal.
	FindVariantByOptions(ctx context.Context, userID, productID int64, optionIDs []int64) ([]int64, error)

	// Variant provisioning. CreateVariant returns ErrVariantExists when the
	// option-set hash is already taken for the product.
	CreateVariant(ctx context.Context, userID, productID int64, optionsHash string) (int64, error)
	LinkVariantOptions(ctx context.Context, variantID int64, optionIDs []int64) error
	DeleteVariant(ctx context.Context, variantID int64) error

	// Stock reads
	StockEntryByVariantLocation(ctx context.Context, userID, variantID, locationID int64) (*StockRecord, error)
	ExistingPriceForVariant(ctx context.Context, userID, variantID int64) (*decimal.Decimal, error)

	// UpsertStockEntry increments the (variant, location) quantity or
	// inserts the row, filling price only when the row had none and price
	// is positive. The read and the write happen in one atomic operation.
	UpsertStockEntry(ctx context.Context, params UpsertStockParams) (StockRecord, error)
}

type UpsertStockParams struct {
	UserID     int64
	VariantID  int64
	LocationID int64
	Quantity   int32
	Price      *decimal.Decimal
	AddedAt    time.Time
}
