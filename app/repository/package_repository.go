package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/internal/pkg/apperrors"
)

// packageRepository implements the PackageRepository interface
type packageRepository struct {
	db *gorm.DB
}

// NewPackageRepository creates a new package repository instance
func NewPackageRepository(db *gorm.DB) PackageRepository {
	return &packageRepository{db: db}
}

func (r *packageRepository) WithContext(ctx context.Context) PackageRepository {
	return &packageRepository{db: r.db.WithContext(ctx)}
}

// Create creates a new package in the database
func (r *packageRepository) Create(pkg *models.Package) error {
	active := pkg.IsActive
	if err := r.db.Create(pkg).Error; err != nil {
		return err
	}
	// is_active has a column default, so GORM skips a false value on insert
	if !active {
		if err := r.db.Model(pkg).Update("is_active", false).Error; err != nil {
			return err
		}
		pkg.IsActive = false
	}
	return nil
}

// GetByID retrieves a package by its ID
func (r *packageRepository) GetByID(id uint) (*models.Package, error) {
	var pkg models.Package
	err := r.db.First(&pkg, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("package", id)
		}
		return nil, err
	}
	return &pkg, nil
}

// GetAll retrieves all packages ordered by price
func (r *packageRepository) GetAll() ([]models.Package, error) {
	var pkgs []models.Package
	err := r.db.Order("price ASC").Order("id ASC").Find(&pkgs).Error
	return pkgs, err
}

// GetActive retrieves all active packages ordered by price
func (r *packageRepository) GetActive() ([]models.Package, error) {
	var pkgs []models.Package
	err := r.db.Where("is_active = ?", true).Order("price ASC").Order("id ASC").Find(&pkgs).Error
	return pkgs, err
}

// GetCheapestActive retrieves the first active package by ascending price
func (r *packageRepository) GetCheapestActive() (*models.Package, error) {
	pkg, err := models.FindCheapestActivePackage(r.db)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("active package", 0)
		}
		return nil, err
	}
	return pkg, nil
}

// Update updates an existing package in the database
func (r *packageRepository) Update(pkg *models.Package) error {
	return r.db.Save(pkg).Error
}

// Delete removes a package and detaches it from every submission that referenced it
func (r *packageRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SongSubmission{}).
			Where("package_id = ?", id).
			Update("package_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Package{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("package", id)
		}
		return nil
	})
}
