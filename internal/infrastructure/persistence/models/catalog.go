package models

import (
	"github.com/stitchline/backend/internal/domain/catalog"
)

// SkuModel is the persistence model for the Sku aggregate
type SkuModel struct {
	AuditedAggregateModel
	Code                string `gorm:"type:varchar(64);not null;uniqueIndex"`
	ProductName         string `gorm:"type:varchar(200);not null"`
	Size                string `gorm:"type:varchar(32)"`
	Color               string `gorm:"type:varchar(64)"`
	IsActive            bool   `gorm:"not null;default:true;index"`
	IsExcludedFromCount bool   `gorm:"not null;default:false"`
}

// TableName specifies the table name for SkuModel
func (SkuModel) TableName() string {
	return "skus"
}

// ToDomain converts the model to a domain Sku
func (m *SkuModel) ToDomain() *catalog.Sku {
	sku := &catalog.Sku{
		Code:                m.Code,
		ProductName:         m.ProductName,
		Size:                m.Size,
		Color:               m.Color,
		IsActive:            m.IsActive,
		IsExcludedFromCount: m.IsExcludedFromCount,
	}
	m.PopulateAuditedAggregateRoot(&sku.AuditedAggregateRoot)
	return sku
}

// SkuModelFromDomain converts a domain Sku to the persistence model
func SkuModelFromDomain(s *catalog.Sku) *SkuModel {
	model := &SkuModel{
		Code:                s.Code,
		ProductName:         s.ProductName,
		Size:                s.Size,
		Color:               s.Color,
		IsActive:            s.IsActive,
		IsExcludedFromCount: s.IsExcludedFromCount,
	}
	model.FromDomainAuditedAggregateRoot(s.AuditedAggregateRoot)
	return model
}
