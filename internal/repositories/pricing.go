package repositories

import (
	"errors"
	"fmt"

	"veripay/internal/models"

	"gorm.io/gorm"
)

// PricingRepository reads and updates the service catalog.
type PricingRepository interface {
	Create(p *models.Pricing) error
	GetByServiceName(serviceName string) (*models.Pricing, error)
	ListActive() ([]models.Pricing, error)
	Update(serviceName string, update models.PricingUpdate) (*models.Pricing, error)
}

type pricingRepository struct {
	db *gorm.DB
}

func NewPricingRepository(db *gorm.DB) PricingRepository {
	return &pricingRepository{db: db}
}

func (r *pricingRepository) Create(p *models.Pricing) error {
	if err := r.db.Create(p).Error; err != nil {
		return fmt.Errorf("failed to create pricing: %w", err)
	}
	return nil
}

func (r *pricingRepository) GetByServiceName(serviceName string) (*models.Pricing, error) {
	var p models.Pricing
	if err := r.db.Where("service_name = ?", serviceName).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPricingNotFound
		}
		return nil, fmt.Errorf("failed to get pricing: %w", err)
	}
	return &p, nil
}

func (r *pricingRepository) ListActive() ([]models.Pricing, error) {
	var rows []models.Pricing
	if err := r.db.Where("is_active = ?", true).Order("service_name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list pricing: %w", err)
	}
	return rows, nil
}

// Update applies only the fields enumerated in PricingUpdate. Columns
// are set explicitly so nothing outside the permitted set can change.
func (r *pricingRepository) Update(serviceName string, update models.PricingUpdate) (*models.Pricing, error) {
	columns := map[string]interface{}{}
	if update.DisplayName != nil {
		columns["display_name"] = *update.DisplayName
	}
	if update.Description != nil {
		columns["description"] = *update.Description
	}
	if update.CostPrice != nil {
		columns["cost_price"] = *update.CostPrice
	}
	if update.SellingPrice != nil {
		columns["selling_price"] = *update.SellingPrice
	}
	if update.IsActive != nil {
		columns["is_active"] = *update.IsActive
	}
	if update.Provider != nil {
		columns["provider"] = *update.Provider
	}

	if len(columns) > 0 {
		result := r.db.Model(&models.Pricing{}).
			Where("service_name = ?", serviceName).
			Updates(columns)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update pricing: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrPricingNotFound
		}
	}
	return r.GetByServiceName(serviceName)
}
