package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"retalia-system/internal/database/models"
	"retalia-system/internal/stock"
)

// PGRepository implements stock.Repository on the postgres schema. Every
// query filters by user_id; tenancy is enforced here, not in the engine.
type PGRepository struct {
	db *gorm.DB
}

func NewPGRepository(db *gorm.DB) *PGRepository {
	return &PGRepository{db: db}
}

var _ stock.Repository = (*PGRepository)(nil)

func (r *PGRepository) ProductsByUser(ctx context.Context, userID int64) ([]stock.ProductRef, error) {
	var refs []stock.ProductRef
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("id", "name").
		Where("user_id = ?", userID).
		Order("name").
		Scan(&refs).Error
	return refs, err
}

func (r *PGRepository) LocationsByUser(ctx context.Context, userID int64) ([]stock.LocationRef, error) {
	var refs []stock.LocationRef
	err := r.db.WithContext(ctx).
		Model(&models.Location{}).
		Select("id", "name").
		Where("user_id = ?", userID).
		Order("name").
		Scan(&refs).Error
	return refs, err
}

func (r *PGRepository) CharacteristicsByProduct(ctx context.Context, userID, productID int64) ([]stock.Attribute, error) {
	var chars []models.Characteristic
	err := r.db.WithContext(ctx).
		Select("characteristics.*").
		Joins("JOIN products ON products.id = characteristics.product_id").
		Where("products.user_id = ? AND characteristics.product_id = ?", userID, productID).
		Order("characteristics.id").
		Find(&chars).Error
	if err != nil {
		return nil, err
	}

	attrs := make([]stock.Attribute, len(chars))
	for i, c := range chars {
		attrs[i] = stock.Attribute{ID: c.ID, Name: c.Name}
	}
	return attrs, nil
}

func (r *PGRepository) OptionsByCharacteristic(ctx context.Context, characteristicID int64) ([]stock.AttributeOption, error) {
	var opts []models.CharacteristicOption
	err := r.db.WithContext(ctx).
		Where("characteristic_id = ?", characteristicID).
		Order("id").
		Find(&opts).Error
	if err != nil {
		return nil, err
	}

	out := make([]stock.AttributeOption, len(opts))
	for i, o := range opts {
		out[i] = stock.AttributeOption{ID: o.ID, Value: o.Value}
	}
	return out, nil
}

// FindVariantByOptions matches on exact set equality in a single query:
// every link must be in the input set and the link count must equal the
// input size. The empty set matches variants with no links at all.
func (r *PGRepository) FindVariantByOptions(ctx context.Context, userID, productID int64, optionIDs []int64) ([]int64, error) {
	var ids []int64

	if len(optionIDs) == 0 {
		err := r.db.WithContext(ctx).Raw(`
			SELECT v.id
			FROM product_variants v
			LEFT JOIN variant_options vo ON vo.variant_id = v.id
			WHERE v.user_id = ? AND v.product_id = ?
			GROUP BY v.id
			HAVING COUNT(vo.id) = 0`,
			userID, productID,
		).Scan(&ids).Error
		return ids, err
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT v.id
		FROM product_variants v
		JOIN variant_options vo ON vo.variant_id = v.id
		WHERE v.user_id = ? AND v.product_id = ?
		GROUP BY v.id
		HAVING COUNT(DISTINCT vo.option_id) = ?
		   AND SUM(CASE WHEN vo.option_id IN ? THEN 0 ELSE 1 END) = 0`,
		userID, productID, len(optionIDs), optionIDs,
	).Scan(&ids).Error
	return ids, err
}

func (r *PGRepository) CreateVariant(ctx context.Context, userID, productID int64, optionsHash string) (int64, error) {
	variant := models.ProductVariant{
		UserID:      userID,
		ProductID:   productID,
		OptionsHash: optionsHash,
	}
	if err := r.db.WithContext(ctx).Create(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, stock.ErrVariantExists
		}
		return 0, err
	}
	return variant.ID, nil
}

func (r *PGRepository) LinkVariantOptions(ctx context.Context, variantID int64, optionIDs []int64) error {
	links := make([]models.VariantOption, len(optionIDs))
	for i, optID := range optionIDs {
		links[i] = models.VariantOption{VariantID: variantID, OptionID: optID}
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

// DeleteVariant is the compensating action for a failed link step. It is
// idempotent: deleting an already-deleted variant is not an error.
func (r *PGRepository) DeleteVariant(ctx context.Context, variantID int64) error {
	if err := r.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Delete(&models.VariantOption{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ?", variantID).
		Delete(&models.ProductVariant{}).Error
}

func (r *PGRepository) StockEntryByVariantLocation(ctx context.Context, userID, variantID, locationID int64) (*stock.StockRecord, error) {
	var entry models.StockEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND variant_id = ? AND location_id = ?", userID, variantID, locationID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	record, err := recordFromModel(entry)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *PGRepository) ExistingPriceForVariant(ctx context.Context, userID, variantID int64) (*decimal.Decimal, error) {
	var prices []string
	err := r.db.WithContext(ctx).
		Model(&models.StockEntry{}).
		Select("price").
		Where("user_id = ? AND variant_id = ? AND price IS NOT NULL", userID, variantID).
		Limit(1).
		Scan(&prices).Error
	if err != nil || len(prices) == 0 {
		return nil, err
	}

	price, err := decimal.NewFromString(prices[0])
	if err != nil {
		return nil, fmt.Errorf("parse stored price %q: %w", prices[0], err)
	}
	return &price, nil
}

// UpsertStockEntry performs the read-increment-write and the
// fill-price-once rule inside one transaction with the row locked, so two
// concurrent merges for the same (variant, location) cannot lose an
// increment or overwrite a recorded price.
func (r *PGRepository) UpsertStockEntry(ctx context.Context, params stock.UpsertStockParams) (stock.StockRecord, error) {
	var committed models.StockEntry

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.StockEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND variant_id = ? AND location_id = ?",
				params.UserID, params.VariantID, params.LocationID).
			First(&entry).Error

		switch {
		case err == nil:
			entry.Quantity += params.Quantity
			entry.AddedAt = params.AddedAt
			if entry.Price == nil && params.Price != nil && params.Price.IsPositive() {
				entry.Price = priceString(params.Price)
			}
			if err := tx.Save(&entry).Error; err != nil {
				return fmt.Errorf("update stock entry: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			entry = models.StockEntry{
				UserID:     params.UserID,
				VariantID:  params.VariantID,
				LocationID: params.LocationID,
				Quantity:   params.Quantity,
				AddedAt:    params.AddedAt,
			}
			if params.Price != nil && params.Price.IsPositive() {
				entry.Price = priceString(params.Price)
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("insert stock entry: %w", err)
			}
		default:
			return fmt.Errorf("check stock entry: %w", err)
		}

		committed = entry
		return nil
	})
	if err != nil {
		return stock.StockRecord{}, err
	}

	return recordFromModel(committed)
}

func recordFromModel(entry models.StockEntry) (stock.StockRecord, error) {
	record := stock.StockRecord{
		ID:         entry.ID,
		VariantID:  entry.VariantID,
		LocationID: entry.LocationID,
		Quantity:   entry.Quantity,
		AddedAt:    entry.AddedAt,
	}
	if entry.Price != nil {
		price, err := decimal.NewFromString(*entry.Price)
		if err != nil {
			return stock.StockRecord{}, fmt.Errorf("parse stored price %q: %w", *entry.Price, err)
		}
		record.Price = &price
	}
	return record, nil
}

func priceString(price *decimal.Decimal) *string {
	s := price.StringFixed(2)
	return &s
}
