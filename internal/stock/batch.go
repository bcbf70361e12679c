package stock

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyBatch rejects a submission with no rows before anything is read.
var ErrEmptyBatch = errors.New("batch must contain at least one row")

// SubmitBatch runs one "add inventory" transaction: every row is validated
// first so the caller sees all input problems at once, then the rows that
// passed are processed strictly in order. Sequential processing is load
// bearing: two rows resolving to the same new option-set must observe each
// other's just-created variant through the matcher instead of racing to
// create duplicates.
//
// One row's backend failure never rolls back another row's committed
// write; there is no cross-row atomicity. The returned report carries one
// result per input row, in input order.
func (s *Service) SubmitBatch(ctx context.Context, in BatchInput) (BatchReport, error) {
	if len(in.Rows) == 0 {
		return BatchReport{}, ErrEmptyBatch
	}

	attrs, err := s.Catalog(ctx, in.UserID, in.ProductID)
	if err != nil {
		return BatchReport{}, fmt.Errorf("load attribute catalog: %w", err)
	}

	optionOwner := make(map[int64]int64)
	for _, attr := range attrs {
		for _, opt := range attr.Options {
			optionOwner[opt.ID] = attr.ID
		}
	}

	report := BatchReport{Results: make([]RowResult, len(in.Rows))}

	// Phase 1: validate the whole batch before any write.
	for i, row := range in.Rows {
		report.Results[i] = RowResult{Row: i}
		report.Results[i].Err = s.validateRow(ctx, in, attrs, optionOwner, i, row)
	}

	// Phase 2: process the rows that passed, in order.
	for i, row := range in.Rows {
		if report.Results[i].Err != nil {
			continue
		}
		report.Results[i] = s.processRow(ctx, in, len(attrs), i, row)
	}

	return report, nil
}

// validateRow checks one row against the product's attribute signature.
// The price rule needs to know whether an existing price is reconcilable,
// which takes a read-only match-and-probe; no writes happen here.
func (s *Service) validateRow(ctx context.Context, in BatchInput, attrs []Attribute, optionOwner map[int64]int64, idx int, row BatchRow) *RowError {
	covered := make(map[int64]bool)
	for _, optID := range row.OptionIDs {
		attrID, ok := optionOwner[optID]
		if !ok {
			return rowErrf(KindValidation, idx, "option %d does not belong to product %d", optID, in.ProductID)
		}
		if covered[attrID] {
			return rowErrf(KindValidation, idx, "more than one option selected for characteristic %d", attrID)
		}
		covered[attrID] = true
	}
	if len(covered) != len(attrs) {
		return rowErrf(KindValidation, idx, "product has %d characteristics, %d selected", len(attrs), len(covered))
	}

	if row.Quantity <= 0 {
		return rowErrf(KindValidation, idx, "quantity must be a positive integer, got %d", row.Quantity)
	}

	if row.Price != nil && row.Price.IsPositive() {
		return nil
	}

	// No usable supplied price: only acceptable when some location already
	// recorded one for the matching variant.
	variantID, found, err := s.matchVariant(ctx, in.UserID, in.ProductID, len(attrs), row.OptionIDs)
	if err != nil {
		if errors.Is(err, ErrVariantConflict) {
			return rowErr(KindIntegrity, idx, err)
		}
		return rowErr(KindResolution, idx, fmt.Errorf("resolve variant for price check: %w", err))
	}
	if found {
		existing, perr := s.repo.ExistingPriceForVariant(ctx, in.UserID, variantID)
		if perr != nil {
			return rowErr(KindResolution, idx, fmt.Errorf("probe existing price: %w", perr))
		}
		if existing != nil {
			return nil
		}
	}

	return rowErrf(KindValidation, idx, "price must be positive when no existing price is recorded")
}

// processRow runs match, provision on miss, reconcile, merge for one row.
func (s *Service) processRow(ctx context.Context, in BatchInput, attrCount, idx int, row BatchRow) RowResult {
	res := RowResult{Row: idx}

	variantID, found, err := s.matchVariant(ctx, in.UserID, in.ProductID, attrCount, row.OptionIDs)
	if err != nil {
		if errors.Is(err, ErrVariantConflict) {
			res.Err = rowErr(KindIntegrity, idx, err)
		} else {
			res.Err = rowErr(KindResolution, idx, err)
		}
		return res
	}

	if !found {
		var warn *OrphanVariantWarning
		variantID, warn, err = s.provisionVariant(ctx, in.UserID, in.ProductID, row.OptionIDs)
		res.Warning = warn
		if err != nil {
			if errors.Is(err, ErrVariantConflict) {
				res.Err = rowErr(KindIntegrity, idx, err)
			} else {
				res.Err = rowErr(KindProvisioning, idx, err)
			}
			return res
		}
	}
	res.VariantID = variantID

	price, err := s.reconcilePrice(ctx, in.UserID, variantID, row.Price)
	if err != nil {
		res.Err = rowErr(KindMerge, idx, fmt.Errorf("reconcile price: %w", err))
		return res
	}

	committed, err := s.mergeStock(ctx, in.UserID, variantID, in.LocationID, row.Quantity, price, in.EntryDate)
	if err != nil {
		res.Err = rowErr(KindMerge, idx, err)
		return res
	}
	res.Committed = &committed

	return res
}
