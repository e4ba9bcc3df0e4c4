package service

import (
	"github.com/formaops/messaging-gateway/internal/config"
	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/formaops/messaging-gateway/pkg/httpclient"
	"github.com/formaops/messaging-gateway/pkg/msgprovider"
)

// NewProviderFactory builds adapters from a tenant's stored provider
// selection. The cloud API base URL and the HTTP timeout are
// deployment-level settings; everything else comes from the tenant row.
func NewProviderFactory(cfg *config.Config) ProviderFactory {
	client := httpclient.NewHTTPClient(cfg.Provider.Timeout)

	return func(tenant *model.TenantConfig) (msgprovider.Provider, error) {
		return msgprovider.New(msgprovider.Config{
			Kind:              msgprovider.Kind(tenant.Provider),
			BaseURL:           cfg.Provider.BaseURL,
			AccessToken:       tenant.AccessToken,
			PhoneNumberID:     tenant.PhoneNumberID,
			BusinessAccountID: tenant.BusinessAccountID,
			GatewayURL:        tenant.GatewayURL,
			GatewayUser:       tenant.GatewayUser,
			GatewayPassword:   tenant.GatewayPassword,
			Timeout:           cfg.Provider.Timeout,
		}, client)
	}
}
