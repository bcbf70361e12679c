package stock

import "context"

// matchVariant resolves a selection to the single variant linked to
// exactly that option-set. A partial selection never matches: if the
// product has characteristics and the caller supplied fewer options, the
// lookup is skipped and the result is not-found.
//
// Set equality is delegated to the store rather than fetched and compared
// here; per-variant fetch-then-compare is slow and widens the window
// against concurrent provisioning.
func (s *Service) matchVariant(ctx context.Context, userID, productID int64, attrCount int, optionIDs []int64) (int64, bool, error) {
	if attrCount > 0 && len(optionIDs) != attrCount {
		return 0, false, nil
	}

	ids, err := s.repo.FindVariantByOptions(ctx, userID, productID, optionIDs)
	if err != nil {
		return 0, false, err
	}

	switch len(ids) {
	case 0:
		return 0, false, nil
	case 1:
		return ids[0], true, nil
	default:
		// Uniqueness invariant violated upstream. Picking one silently
		// would split stock across duplicates.
		return 0, false, ErrVariantConflict
	}
}
