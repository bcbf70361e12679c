package stock_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"retalia-system/internal/stock"
)

// memRepo is an in-memory stock.Repository for exercising the engine
// without a database. Failure injection fields let tests break individual
// store calls.
type memRepo struct {
	mu sync.Mutex

	products  []stock.ProductRef
	locations []stock.LocationRef
	attrs     map[int64][]stock.Attribute // product id -> catalog

	nextVariantID int64
	variants      map[int64]*memVariant

	nextStockID int64
	stocks      map[string]*memStock

	failFind        error
	failLink        error
	failDelete      error
	failUpsert      error
	failUpsertTimes int // consume failUpsert this many times; 0 means always
	failPrice       error
	failChars       error
	missNextFinds   int // make this many FindVariantByOptions calls miss

	createCalls int
}

type memVariant struct {
	userID    int64
	productID int64
	hash      string
	options   []int64
	linked    bool
}

type memStock struct {
	rec stock.StockRecord
}

func newMemRepo() *memRepo {
	return &memRepo{
		attrs:    make(map[int64][]stock.Attribute),
		variants: make(map[int64]*memVariant),
		stocks:   make(map[string]*memStock),
	}
}

func (m *memRepo) addProduct(id, userID int64, name string, attrs []stock.Attribute) {
	m.products = append(m.products, stock.ProductRef{ID: id, Name: name})
	m.attrs[id] = attrs
}

func stockKey(userID, variantID, locationID int64) string {
	return fmt.Sprintf("%d:%d:%d", userID, variantID, locationID)
}

func (m *memRepo) ProductsByUser(ctx context.Context, userID int64) ([]stock.ProductRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stock.ProductRef(nil), m.products...), nil
}

func (m *memRepo) LocationsByUser(ctx context.Context, userID int64) ([]stock.LocationRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stock.LocationRef(nil), m.locations...), nil
}

func (m *memRepo) CharacteristicsByProduct(ctx context.Context, userID, productID int64) ([]stock.Attribute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failChars != nil {
		return nil, m.failChars
	}
	attrs := make([]stock.Attribute, len(m.attrs[productID]))
	for i, a := range m.attrs[productID] {
		attrs[i] = stock.Attribute{ID: a.ID, Name: a.Name}
	}
	return attrs, nil
}

func (m *memRepo) OptionsByCharacteristic(ctx context.Context, characteristicID int64) ([]stock.AttributeOption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, attrs := range m.attrs {
		for _, a := range attrs {
			if a.ID == characteristicID {
				return append([]stock.AttributeOption(nil), a.Options...), nil
			}
		}
	}
	return nil, nil
}

func (m *memRepo) FindVariantByOptions(ctx context.Context, userID, productID int64, optionIDs []int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFind != nil {
		return nil, m.failFind
	}
	if m.missNextFinds > 0 {
		m.missNextFinds--
		return nil, nil
	}

	var ids []int64
	for id, v := range m.variants {
		if v.userID != userID || v.productID != productID {
			continue
		}
		if sameSet(v.options, optionIDs) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memRepo) CreateVariant(ctx context.Context, userID, productID int64, optionsHash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++

	for _, v := range m.variants {
		if v.userID == userID && v.productID == productID && v.hash == optionsHash {
			return 0, stock.ErrVariantExists
		}
	}

	m.nextVariantID++
	m.variants[m.nextVariantID] = &memVariant{
		userID:    userID,
		productID: productID,
		hash:      optionsHash,
	}
	return m.nextVariantID, nil
}

func (m *memRepo) LinkVariantOptions(ctx context.Context, variantID int64, optionIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLink != nil {
		return m.failLink
	}

	v, ok := m.variants[variantID]
	if !ok {
		return fmt.Errorf("variant %d not found", variantID)
	}
	v.options = append([]int64(nil), optionIDs...)
	v.linked = true
	return nil
}

func (m *memRepo) DeleteVariant(ctx context.Context, variantID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete != nil {
		return m.failDelete
	}
	delete(m.variants, variantID)
	return nil
}

func (m *memRepo) StockEntryByVariantLocation(ctx context.Context, userID, variantID, locationID int64) (*stock.StockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.stocks[stockKey(userID, variantID, locationID)]
	if !ok {
		return nil, nil
	}
	rec := entry.rec
	return &rec, nil
}

func (m *memRepo) ExistingPriceForVariant(ctx context.Context, userID, variantID int64) (*decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPrice != nil {
		return nil, m.failPrice
	}
	for _, entry := range m.stocks {
		if entry.rec.VariantID == variantID && entry.rec.Price != nil {
			p := *entry.rec.Price
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memRepo) UpsertStockEntry(ctx context.Context, params stock.UpsertStockParams) (stock.StockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpsert != nil {
		if m.failUpsertTimes == 0 {
			return stock.StockRecord{}, m.failUpsert
		}
		m.failUpsertTimes--
		err := m.failUpsert
		if m.failUpsertTimes == 0 {
			m.failUpsert = nil
		}
		return stock.StockRecord{}, err
	}

	key := stockKey(params.UserID, params.VariantID, params.LocationID)
	if entry, ok := m.stocks[key]; ok {
		entry.rec.Quantity += params.Quantity
		entry.rec.AddedAt = params.AddedAt
		if entry.rec.Price == nil && params.Price != nil && params.Price.IsPositive() {
			p := *params.Price
			entry.rec.Price = &p
		}
		return entry.rec, nil
	}

	m.nextStockID++
	rec := stock.StockRecord{
		ID:         m.nextStockID,
		VariantID:  params.VariantID,
		LocationID: params.LocationID,
		Quantity:   params.Quantity,
		AddedAt:    params.AddedAt,
	}
	if params.Price != nil && params.Price.IsPositive() {
		p := *params.Price
		rec.Price = &p
	}
	m.stocks[key] = &memStock{rec: rec}
	return rec, nil
}

func (m *memRepo) variantCount(productID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.variants {
		if v.productID == productID {
			n++
		}
	}
	return n
}

// forceDuplicateVariant plants a second variant with the same option-set,
// bypassing the uniqueness backstop, to simulate corrupted data.
func (m *memRepo) forceDuplicateVariant(userID, productID int64, optionIDs []int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextVariantID++
	m.variants[m.nextVariantID] = &memVariant{
		userID:    userID,
		productID: productID,
		hash:      fmt.Sprintf("dup-%d", m.nextVariantID),
		options:   append([]int64(nil), optionIDs...),
		linked:    true,
	}
}

func sameSet(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int64]bool, len(a))
	for _, v := range a {
		seen[v] = true
	}
	for _, v := range b {
		if !seen[v] {
			return false
		}
	}
	return true
}
