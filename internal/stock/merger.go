package stock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// mergeStock commits a quantity (and the reconciled price, if any) into
// the (variant, location) stock row. The store performs the
// read-increment-write and the fill-price-once rule in one atomic
// operation; quantities only ever accumulate and an existing price is
// never overwritten on this path.
func (s *Service) mergeStock(ctx context.Context, userID, variantID, locationID int64, quantity int32, price *decimal.Decimal, addedAt time.Time) (StockRecord, error) {
	if addedAt.IsZero() {
		addedAt = time.Now()
	}

	return s.repo.UpsertStockEntry(ctx, UpsertStockParams{
		UserID:     userID,
		VariantID:  variantID,
		LocationID: locationID,
		Quantity:   quantity,
		Price:      price,
		AddedAt:    addedAt,
	})
}
