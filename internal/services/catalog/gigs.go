package catalog

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type GigFilter struct {
	Search   string
	Category string
	MinPrice int64
	MaxPrice int64
	Sort     string // latest | price_low | price_high
	Page     int
	Limit    int
}

type GigPage struct {
	Items      []models.Gig `json:"items"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalItems int64        `json:"total_items"`
	TotalPages int          `json:"total_pages"`
}

type GigService struct {
	DB *gorm.DB
}

func NewGigService(db *gorm.DB) *GigService {
	return &GigService{DB: db}
}

func (f *GigFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
}

func (s *GigService) published(ctx context.Context, f GigFilter) *gorm.DB {
	q := s.DB.WithContext(ctx).Model(&models.Gig{}).Where("status = ?", models.GigPublished)
	if f.Search != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.MinPrice > 0 {
		q = q.Where("base_price >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("base_price <= ?", f.MaxPrice)
	}
	return q
}

// ListPublished returns one page of published gigs.
func (s *GigService) ListPublished(ctx context.Context, f GigFilter) (GigPage, error) {
	f.normalize()

	var total int64
	if err := s.published(ctx, f).Count(&total).Error; err != nil {
		return GigPage{}, fmt.Errorf("count gigs: %w", err)
	}

	q := s.published(ctx, f)
	switch f.Sort {
	case "price_low":
		q = q.Order("base_price ASC")
	case "price_high":
		q = q.Order("base_price DESC")
	default:
		q = q.Order("created_at DESC").Order("id DESC")
	}

	items := []models.Gig{}
	if err := q.Offset((f.Page - 1) * f.Limit).Limit(f.Limit).Find(&items).Error; err != nil {
		return GigPage{}, fmt.Errorf("list gigs: %w", err)
	}

	pages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	return GigPage{Items: items, Page: f.Page, Limit: f.Limit, TotalItems: total, TotalPages: pages}, nil
}

// Categories lists the distinct categories of published gigs.
func (s *GigService) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := s.DB.WithContext(ctx).
		Model(&models.Gig{}).
		Where("status = ?", models.GigPublished).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
