package model

import "time"

// TemplateMapping binds an internal template key to a provider-side
// template name, with a fallback body for gateways that cannot address
// provider templates by name.
type TemplateMapping struct {
	ID               int64     `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	TenantID         string    `gorm:"column:tenant_id;index:idx_tenant_template_key,unique"`
	Key              string    `gorm:"column:template_key;index:idx_tenant_template_key,unique"`
	ProviderTemplate string    `gorm:"column:provider_template"`
	Language         string    `gorm:"column:language"`
	FallbackText     string    `gorm:"column:fallback_text"`
	Active           bool      `gorm:"column:active"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (TemplateMapping) TableName() string { return "template_mappings" }
