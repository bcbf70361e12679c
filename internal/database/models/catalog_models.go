package models

import "time"

// Product is the tenant-scoped catalog root. Characteristics describe the
// attribute dimensions its variants are built from.
type Product struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	UserID    int64      `gorm:"index;not null"`
	Name      string     `gorm:"size:255;not null"`
	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`

	Characteristics []Characteristic `gorm:"foreignKey:ProductID"`
	Variants        []ProductVariant `gorm:"foreignKey:ProductID"`
}

type Characteristic struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	ProductID int64      `gorm:"index;not null"`
	Name      string     `gorm:"size:255;not null"`
	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`

	Options []CharacteristicOption `gorm:"foreignKey:CharacteristicID"`
}

type CharacteristicOption struct {
	ID               int64      `gorm:"primaryKey;autoIncrement"`
	CharacteristicID int64      `gorm:"index;not null"`
	Value            string     `gorm:"size:255;not null"`
	CreatedAt        *time.Time `gorm:"autoCreateTime"`
	UpdatedAt        *time.Time `gorm:"autoUpdateTime"`
}

// ProductVariant is identified by the exact set of option ids it is linked
// to. OptionsHash is the canonical hash of that sorted set; the composite
// unique index is the backstop against two callers provisioning the same
// combination concurrently.
type ProductVariant struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	UserID      int64      `gorm:"not null;uniqueIndex:idx_variant_option_set"`
	ProductID   int64      `gorm:"not null;uniqueIndex:idx_variant_option_set"`
	OptionsHash string     `gorm:"size:64;not null;uniqueIndex:idx_variant_option_set"`
	CreatedAt   *time.Time `gorm:"autoCreateTime"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime"`

	Options []VariantOption `gorm:"foreignKey:VariantID"`
}

type VariantOption struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	VariantID int64      `gorm:"index;not null"`
	OptionID  int64      `gorm:"not null"`
	CreatedAt *time.Time `gorm:"autoCreateTime"`
}

type Location struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	UserID    int64      `gorm:"index;not null"`
	Name      string     `gorm:"size:255;not null"`
	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`
}

// StockEntry holds the cumulative quantity of a variant at one location.
// Price is persisted per row but is a property of the variant: the merge
// path fills it once and never overwrites it.
type StockEntry struct {
	ID         int64      `gorm:"primaryKey;autoIncrement"`
	UserID     int64      `gorm:"index;not null"`
	VariantID  int64      `gorm:"not null;index:idx_stock_variant_location"`
	LocationID int64      `gorm:"not null;index:idx_stock_variant_location"`
	Quantity   int32      `gorm:"not null;default:0"`
	Price      *string    `gorm:"type:decimal(18,2)"`
	AddedAt    time.Time
	CreatedAt  *time.Time `gorm:"autoCreateTime"`
	UpdatedAt  *time.Time `gorm:"autoUpdateTime"`
}
