package msgprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/formaops/messaging-gateway/pkg/httpclient"
)

type Kind string

const (
	KindCloudAPI   Kind = "CLOUD_API"
	KindBSPGateway Kind = "BSP_GATEWAY"
)

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Result is the uniform outcome of a provider call. Adapters never
// return an error across this boundary: transport and HTTP failures
// are folded into a failed Result with an error code in ErrorText.
type Result struct {
	Success   bool
	MessageID string
	Status    string
	ErrorText string
}

type Provider interface {
	SendTemplate(ctx context.Context, to string, templateName string, language string, params []string) Result
	SendFreeform(ctx context.Context, to string, text string, channel string) Result
}

// RichSender is the interactive-message surface. Only the cloud API
// adapter implements it; callers fall back to plain text when the
// assertion fails.
type RichSender interface {
	SendButtons(ctx context.Context, to string, body string, buttons []Button) Result
	SendList(ctx context.Context, to string, body string, buttonLabel string, sections []ListSection) Result
}

// TemplateManager exposes template administration at the provider.
type TemplateManager interface {
	ListTemplates(ctx context.Context) ([]TemplateInfo, error)
	CreateTemplate(ctx context.Context, def TemplateDefinition) error
	DeleteTemplate(ctx context.Context, name string) error
}

// MediaSender uploads and sends media attachments.
type MediaSender interface {
	UploadMedia(ctx context.Context, mimeType string, data []byte) (string, error)
	SendMedia(ctx context.Context, to string, mediaID string, mediaType string, caption string) Result
}

type Button struct {
	ID    string
	Title string
}

type ListRow struct {
	ID          string
	Title       string
	Description string
}

type ListSection struct {
	Title string
	Rows  []ListRow
}

type TemplateInfo struct {
	Name     string
	Language string
	Status   string
	Category string
}

type TemplateDefinition struct {
	Name     string
	Language string
	Category string
	BodyText string
}

type Config struct {
	Kind              Kind
	BaseURL           string
	AccessToken       string
	PhoneNumberID     string
	BusinessAccountID string
	GatewayURL        string
	GatewayUser       string
	GatewayPassword   string
	Timeout           time.Duration `mapstructure:"timeout"`
}

// New maps the tenant-selected provider kind to its adapter.
func New(cfg Config, client httpclient.HTTPClient) (Provider, error) {
	switch cfg.Kind {
	case KindCloudAPI:
		return NewCloudAPI(cfg, client), nil
	case KindBSPGateway:
		return NewBSPGateway(cfg, client), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
}
