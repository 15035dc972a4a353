package app

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/econext/storefront/internal/catalog/domain"
	prediction "github.com/econext/storefront/internal/prediction/domain"
)

// ErrSuperseded reports that a newer detail request was issued
// while this one was in flight; its response was discarded.
var ErrSuperseded = errors.New("detail request superseded")

// Detail is the current product-detail read model.
type Detail struct {
	Product    domain.Product
	Prediction *prediction.Record
}

// Service serves catalog read models over the commerce client.
// Detail loads follow a last-request-wins discipline: when the
// requested product changes before a prior fetch resolves, the
// stale response is discarded instead of applied.
type Service struct {
	reader ProductReader

	mu     sync.Mutex
	seq    uint64
	detail *Detail
}

func NewService(reader ProductReader) *Service {
	return &Service{reader: reader}
}

func (s *Service) Products(ctx context.Context, page, perPage int) ([]domain.Product, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 12
	}
	if perPage > 100 {
		perPage = 100
	}
	return s.reader.Products(ctx, page, perPage)
}

func (s *Service) Trending(ctx context.Context) ([]domain.TrendingItem, error) {
	return s.reader.Trending(ctx)
}

// LoadDetail fetches the detail for id and applies it only if no
// newer load started meanwhile.
func (s *Service) LoadDetail(ctx context.Context, id int64) (*Detail, error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	product, rec, err := s.reader.ProductDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return nil, ErrSuperseded
	}
	s.detail = &Detail{Product: product, Prediction: rec}
	return s.detail, nil
}

// CurrentDetail returns the last applied detail, nil before any
// successful load.
func (s *Service) CurrentDetail() *Detail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detail
}

// PrefetchPredictions fetches forecast records for a page of
// products concurrently. Products whose fetch fails or that carry
// no prediction are simply absent from the result; a partial page
// is not an error.
func PrefetchPredictions(ctx context.Context, reader PredictionReader, products []domain.Product, maxConcurrent int) map[int64]*prediction.Record {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}

	var mu sync.Mutex
	records := make(map[int64]*prediction.Record)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, p := range products {
		id := p.ID
		g.Go(func() error {
			rec, err := reader.PricePrediction(ctx, id)
			if err != nil || rec == nil {
				return nil
			}
			mu.Lock()
			records[id] = rec
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return records
}
