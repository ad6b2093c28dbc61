package pricing

import (
	"context"
	"testing"

	"veripay/internal/models"
	"veripay/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePricingRepo struct {
	rows map[string]*models.Pricing
}

func (f *fakePricingRepo) GetByServiceName(serviceName string) (*models.Pricing, error) {
	p, ok := f.rows[serviceName]
	if !ok {
		return nil, repositories.ErrPricingNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePricingRepo) ListActive() ([]models.Pricing, error) {
	var out []models.Pricing
	for _, p := range f.rows {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePricingRepo) Create(p *models.Pricing) error {
	f.rows[p.ServiceName] = p
	return nil
}

func (f *fakePricingRepo) Update(serviceName string, update models.PricingUpdate) (*models.Pricing, error) {
	p, ok := f.rows[serviceName]
	if !ok {
		return nil, repositories.ErrPricingNotFound
	}
	if update.SellingPrice != nil {
		p.SellingPrice = *update.SellingPrice
	}
	if update.CostPrice != nil {
		p.CostPrice = *update.CostPrice
	}
	if update.IsActive != nil {
		p.IsActive = *update.IsActive
	}
	if update.DisplayName != nil {
		p.DisplayName = *update.DisplayName
	}
	cp := *p
	return &cp, nil
}

type fakePricingCache struct {
	rows        map[string]*models.Pricing
	invalidated []string
}

func (f *fakePricingCache) GetPricing(_ context.Context, serviceName string) (*models.Pricing, error) {
	p, ok := f.rows[serviceName]
	if !ok {
		return nil, assert.AnError
	}
	return p, nil
}

func (f *fakePricingCache) CachePricing(_ context.Context, p *models.Pricing) error {
	f.rows[p.ServiceName] = p
	return nil
}

func (f *fakePricingCache) InvalidatePricing(_ context.Context, serviceName string) error {
	delete(f.rows, serviceName)
	f.invalidated = append(f.invalidated, serviceName)
	return nil
}

func newTestService() (Service, *fakePricingRepo, *fakePricingCache) {
	repo := &fakePricingRepo{rows: map[string]*models.Pricing{
		models.ServiceNinVerification: {
			ServiceName:  models.ServiceNinVerification,
			DisplayName:  "NIN Verification",
			CostPrice:    10000,
			SellingPrice: 15000,
			IsActive:     true,
		},
		models.ServicePersonalization: {
			ServiceName:  models.ServicePersonalization,
			SellingPrice: 30000,
			IsActive:     false,
		},
	}}
	cache := &fakePricingCache{rows: make(map[string]*models.Pricing)}
	return NewService(repo, cache), repo, cache
}

func TestQuote(t *testing.T) {
	svc, _, cache := newTestService()

	t.Run("returns active row and caches it", func(t *testing.T) {
		p, err := svc.Quote(context.Background(), models.ServiceNinVerification)
		require.NoError(t, err)
		assert.Equal(t, int64(15000), p.SellingPrice)
		assert.Contains(t, cache.rows, models.ServiceNinVerification)
	})

	t.Run("disabled service is not purchasable", func(t *testing.T) {
		_, err := svc.Quote(context.Background(), models.ServicePersonalization)
		assert.ErrorIs(t, err, ErrServiceDisabled)
	})

	t.Run("unknown service", func(t *testing.T) {
		_, err := svc.Quote(context.Background(), "no_such_service")
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})
}

func TestUpdate(t *testing.T) {
	svc, repo, cache := newTestService()

	t.Run("applies permitted fields and invalidates cache", func(t *testing.T) {
		// Warm the cache first.
		_, err := svc.Quote(context.Background(), models.ServiceNinVerification)
		require.NoError(t, err)

		newPrice := int64(20000)
		updated, err := svc.Update(context.Background(), models.ServiceNinVerification, models.PricingUpdate{
			SellingPrice: &newPrice,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(20000), updated.SellingPrice)
		assert.Equal(t, int64(10000), updated.CostPrice, "untouched fields keep their values")
		assert.Contains(t, cache.invalidated, models.ServiceNinVerification)
		assert.Equal(t, int64(20000), repo.rows[models.ServiceNinVerification].SellingPrice)
	})

	t.Run("unknown service", func(t *testing.T) {
		_, err := svc.Update(context.Background(), "no_such_service", models.PricingUpdate{})
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})
}
