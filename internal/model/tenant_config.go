package model

import "time"

type ProviderKind string

const (
	ProviderCloudAPI   ProviderKind = "CLOUD_API"
	ProviderBSPGateway ProviderKind = "BSP_GATEWAY"
)

// TenantConfig is the per-tenant provider configuration. It is written
// by the configuration UI (an external collaborator) and read on every
// send; this service never creates one.
type TenantConfig struct {
	ID       int64        `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	TenantID string       `gorm:"column:tenant_id;uniqueIndex"`
	Provider ProviderKind `gorm:"column:provider"`
	Active   bool         `gorm:"column:active"`

	// Cloud API credentials.
	AccessToken       string `gorm:"column:access_token"`
	PhoneNumberID     string `gorm:"column:phone_number_id"`
	BusinessAccountID string `gorm:"column:business_account_id"`

	// BSP gateway credentials.
	GatewayURL      string `gorm:"column:gateway_url"`
	GatewayUser     string `gorm:"column:gateway_user"`
	GatewayPassword string `gorm:"column:gateway_password"`

	WebhookVerifyToken string `gorm:"column:webhook_verify_token"`
	DefaultLanguage    string `gorm:"column:default_language"`
	CountryCode        string `gorm:"column:country_code"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (TenantConfig) TableName() string { return "tenant_messaging_configs" }
