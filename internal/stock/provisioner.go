package stock

import (
	"context"
	"errors"
	"fmt"
)

// provisionVariant creates a variant and links it to the option-set. The
// two inserts are a saga, not a transaction: if the link step fails, the
// fresh variant is deleted so no unlinked variant survives to falsely
// match an empty-set lookup later. When the compensating delete itself
// fails, the orphan is reported via the returned warning instead of being
// folded into the error.
//
// The insert carries the canonical option-set hash; ErrVariantExists from
// the uniqueness backstop means another caller won the race, in which case
// the existing variant is re-matched and adopted.
func (s *Service) provisionVariant(ctx context.Context, userID, productID int64, optionIDs []int64) (int64, *OrphanVariantWarning, error) {
	variantID, err := s.repo.CreateVariant(ctx, userID, productID, OptionSetHash(optionIDs))
	if err != nil {
		if errors.Is(err, ErrVariantExists) {
			ids, ferr := s.repo.FindVariantByOptions(ctx, userID, productID, optionIDs)
			if ferr != nil {
				return 0, nil, fmt.Errorf("re-match after duplicate insert: %w", ferr)
			}
			if len(ids) == 1 {
				return ids[0], nil, nil
			}
			return 0, nil, fmt.Errorf("duplicate insert but %d variants match: %w", len(ids), ErrVariantConflict)
		}
		return 0, nil, fmt.Errorf("create variant: %w", err)
	}

	if len(optionIDs) == 0 {
		return variantID, nil, nil
	}

	if err := s.repo.LinkVariantOptions(ctx, variantID, optionIDs); err != nil {
		if derr := s.repo.DeleteVariant(ctx, variantID); derr != nil {
			return 0, &OrphanVariantWarning{VariantID: variantID, Cause: derr},
				fmt.Errorf("link variant options: %w", err)
		}
		return 0, nil, fmt.Errorf("link variant options: %w", err)
	}

	return variantID, nil, nil
}
