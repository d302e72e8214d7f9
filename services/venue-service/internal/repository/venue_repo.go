package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/satyampathakk/BOOKADATE/services/venue-service/internal/domain"
)

type VenueRepo struct{ db *gorm.DB }

func NewVenueRepo(db *gorm.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

func (r *VenueRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Venue{})
}

func (r *VenueRepo) Create(ctx context.Context, v *domain.Venue) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *VenueRepo) ByID(ctx context.Context, id string) (*domain.Venue, error) {
	var v domain.Venue
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VenueRepo) List(ctx context.Context, city, category string) ([]domain.Venue, error) {
	qb := r.db.WithContext(ctx).Model(&domain.Venue{})
	if city != "" {
		qb = qb.Where("city = ?", city)
	}
	if category != "" {
		qb = qb.Where("category = ?", category)
	}
	var out []domain.Venue
	err := qb.Order("name ASC").Find(&out).Error
	return out, err
}

func (r *VenueRepo) Update(ctx context.Context, id string, fields map[string]any) (*domain.Venue, error) {
	if err := r.db.WithContext(ctx).Model(&domain.Venue{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, err
	}
	return r.ByID(ctx, id)
}

func (r *VenueRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&domain.Venue{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}
