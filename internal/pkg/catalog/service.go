// Package catalog manages the review packages offered to submitters.
package catalog

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/app/repository"
	"github.com/ManuelReschke/SongPitch/internal/pkg/apperrors"
	"github.com/ManuelReschke/SongPitch/internal/pkg/logger"
)

// Input is the staff package form.
type Input struct {
	Name        string  `json:"name" form:"name"`
	Description string  `json:"description" form:"description"`
	Price       float64 `json:"price" form:"price"`
	IsActive    bool    `json:"is_active" form:"is_active"`
}

type Service struct {
	packages repository.PackageRepository
}

func NewService(repos *repository.Repositories) *Service {
	return &Service{packages: repos.Package}
}

// List returns every package, cheapest first.
func (s *Service) List(ctx context.Context) ([]models.Package, error) {
	return s.packages.WithContext(ctx).GetAll()
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Package, error) {
	return s.packages.WithContext(ctx).GetByID(id)
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Package, error) {
	pkg := &models.Package{}
	apply(pkg, in)
	if err := pkg.Validate(); err != nil {
		return nil, apperrors.FromValidator(err)
	}
	if err := s.packages.WithContext(ctx).Create(pkg); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("package_created", zap.Uint("package_id", pkg.ID), zap.Float64("price", pkg.Price))
	return pkg, nil
}

func (s *Service) Update(ctx context.Context, id uint, in Input) (*models.Package, error) {
	repo := s.packages.WithContext(ctx)
	pkg, err := repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	apply(pkg, in)
	if err := pkg.Validate(); err != nil {
		return nil, apperrors.FromValidator(err)
	}
	if err := repo.Update(pkg); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("package_updated", zap.Uint("package_id", pkg.ID))
	return pkg, nil
}

// Delete removes the package. Submissions that used it keep their payment
// state and lose the package link.
func (s *Service) Delete(ctx context.Context, id uint) (*models.Package, error) {
	repo := s.packages.WithContext(ctx)
	pkg, err := repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := repo.Delete(id); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("package_deleted", zap.Uint("package_id", id))
	return pkg, nil
}

func apply(pkg *models.Package, in Input) {
	pkg.Name = strings.TrimSpace(in.Name)
	pkg.Description = strings.TrimSpace(in.Description)
	pkg.Price = in.Price
	pkg.IsActive = in.IsActive
}
