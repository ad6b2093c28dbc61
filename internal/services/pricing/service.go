// Package pricing serves the service catalog: what each paid operation
// costs upstream and what the user is billed.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"log"

	"veripay/internal/models"
	"veripay/internal/repositories"
)

var (
	ErrServiceNotFound = errors.New("service not found in catalog")
	ErrServiceDisabled = errors.New("service is currently disabled")
)

// Cache is the read-through cache surface for catalog rows.
type Cache interface {
	GetPricing(ctx context.Context, serviceName string) (*models.Pricing, error)
	CachePricing(ctx context.Context, p *models.Pricing) error
	InvalidatePricing(ctx context.Context, serviceName string) error
}

type Service interface {
	// Quote returns the active catalog row for a service; disabled
	// services are not purchasable.
	Quote(ctx context.Context, serviceName string) (*models.Pricing, error)
	List(ctx context.Context) ([]models.Pricing, error)
	Update(ctx context.Context, serviceName string, update models.PricingUpdate) (*models.Pricing, error)
}

type service struct {
	repo  repositories.PricingRepository
	cache Cache
}

func NewService(repo repositories.PricingRepository, cache Cache) Service {
	if repo == nil {
		panic("pricing repository is required")
	}
	return &service{repo: repo, cache: cache}
}

func (s *service) Quote(ctx context.Context, serviceName string) (*models.Pricing, error) {
	if s.cache != nil {
		if p, err := s.cache.GetPricing(ctx, serviceName); err == nil && p != nil {
			if !p.IsActive {
				return nil, ErrServiceDisabled
			}
			return p, nil
		}
	}

	p, err := s.repo.GetByServiceName(serviceName)
	if err != nil {
		if errors.Is(err, repositories.ErrPricingNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to load pricing: %w", err)
	}

	if s.cache != nil {
		if cerr := s.cache.CachePricing(ctx, p); cerr != nil {
			log.Printf("failed to cache pricing for %s: %v", serviceName, cerr)
		}
	}
	if !p.IsActive {
		return nil, ErrServiceDisabled
	}
	return p, nil
}

func (s *service) List(ctx context.Context) ([]models.Pricing, error) {
	return s.repo.ListActive()
}

func (s *service) Update(ctx context.Context, serviceName string, update models.PricingUpdate) (*models.Pricing, error) {
	p, err := s.repo.Update(serviceName, update)
	if err != nil {
		if errors.Is(err, repositories.ErrPricingNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	if s.cache != nil {
		if cerr := s.cache.InvalidatePricing(ctx, serviceName); cerr != nil {
			log.Printf("failed to invalidate pricing cache for %s: %v", serviceName, cerr)
		}
	}
	return p, nil
}
