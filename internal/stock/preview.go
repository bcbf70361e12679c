package stock

import (
	"context"
	"fmt"
)

// Preview resolves a (possibly partial) selection to its current state:
// the matched variant if any, the stock already held at the target
// location, and the price the reconciler would apply. Read-only; partial
// selections and integrity conflicts both come back as "no variant" so
// the pre-submission display degrades instead of failing.
func (s *Service) Preview(ctx context.Context, in PreviewInput) (PreviewResult, error) {
	attrs, err := s.repo.CharacteristicsByProduct(ctx, in.UserID, in.ProductID)
	if err != nil {
		return PreviewResult{}, fmt.Errorf("load attribute catalog: %w", err)
	}

	variantID, found, err := s.matchVariant(ctx, in.UserID, in.ProductID, len(attrs), in.OptionIDs)
	if err != nil || !found {
		return PreviewResult{}, nil
	}

	res := PreviewResult{VariantID: &variantID}

	entry, err := s.repo.StockEntryByVariantLocation(ctx, in.UserID, variantID, in.LocationID)
	if err == nil && entry != nil {
		res.CurrentStock = entry.Quantity
	}

	existing, err := s.repo.ExistingPriceForVariant(ctx, in.UserID, variantID)
	if err == nil && existing != nil {
		res.ExistingPrice = existing
	} else if entry != nil && entry.Price != nil {
		res.ExistingPrice = entry.Price
	}

	return res, nil
}
