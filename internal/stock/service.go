package stock

// Service drives variant resolution and stock reconciliation against the
// backing store. It holds no mutable state of its own; all serialization
// within a batch comes from processing rows strictly in order.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}
