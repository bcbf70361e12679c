package stock

import "context"

// Catalog returns the product's characteristics in catalog order, each
// with its allowed options. A product with no characteristics returns an
// empty slice; that is a valid state, such products carry a single
// attribute-less variant. Store errors propagate verbatim, no retries.
func (s *Service) Catalog(ctx context.Context, userID, productID int64) ([]Attribute, error) {
	attrs, err := s.repo.CharacteristicsByProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	for i := range attrs {
		opts, err := s.repo.OptionsByCharacteristic(ctx, attrs[i].ID)
		if err != nil {
			return nil, err
		}
		attrs[i].Options = opts
	}

	return attrs, nil
}

func (s *Service) Products(ctx context.Context, userID int64) ([]ProductRef, error) {
	return s.repo.ProductsByUser(ctx, userID)
}

func (s *Service) Locations(ctx context.Context, userID int64) ([]LocationRef, error) {
	return s.repo.LocationsByUser(ctx, userID)
}
