package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Package is a purchasable review tier. Prices are stored in Naira.
type Package struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null;index" json:"price" validate:"gte=0"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Package) Validate() error {
	v := validator.New()
	return v.Struct(p)
}

// FindCheapestActivePackage returns the first active package ordered by ascending price.
func FindCheapestActivePackage(db *gorm.DB) (*Package, error) {
	var pkg Package
	err := db.Where("is_active = ?", true).Order("price ASC").Order("id ASC").First(&pkg).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}
