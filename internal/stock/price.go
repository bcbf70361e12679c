package stock

import (
	"context"

	"github.com/shopspring/decimal"
)

// reconcilePrice computes the single effective price for a variant. Any
// price already recorded on a stock row for the variant, at any location,
// wins over the caller's price; the variant's price is shared across
// locations even though it is stored per row. With no recorded price, a
// positive supplied price is used (rounded to 2 dp); otherwise the price
// stays unset.
func (s *Service) reconcilePrice(ctx context.Context, userID, variantID int64, supplied *decimal.Decimal) (*decimal.Decimal, error) {
	existing, err := s.repo.ExistingPriceForVariant(ctx, userID, variantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if supplied != nil && supplied.IsPositive() {
		rounded := supplied.Round(2)
		return &rounded, nil
	}

	return nil, nil
}
