package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/formaops/messaging-gateway/internal/repository"
	"github.com/formaops/messaging-gateway/pkg/phone"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// optOutKeywords are matched exactly against the normalized inbound
// text (uppercased, accents and non-letters stripped), never as
// substrings.
var optOutKeywords = map[string]struct{}{
	"STOP":           {},
	"ARRET":          {},
	"ARRETER":        {},
	"UNSUBSCRIBE":    {},
	"DESINSCRIPTION": {},
	"DESABONNEMENT":  {},
}

const optOutAcknowledgement = "Votre demande de désinscription a bien été prise en compte. " +
	"Vous ne recevrez plus de messages de notre part."

type ConsentService interface {
	CheckConsentBeforeSend(ctx context.Context, tenantID string, phoneNumber string, contactID *int64, enrollmentID *int64) ConsentDecision
	HandleOptOut(ctx context.Context, tenantID string, phoneNumber string, text string) (bool, string, error)
}

type consent struct {
	consents   repository.ConsentRepository
	contacts   repository.ContactRepository
	tenantCfgs repository.TenantConfigRepository
	auditLog   repository.AuditLogRepository
	tx         repository.TxManager
	logger     *zap.Logger
}

func NewConsentService(consents repository.ConsentRepository, contacts repository.ContactRepository,
	tenantCfgs repository.TenantConfigRepository, auditLog repository.AuditLogRepository,
	tx repository.TxManager, logger *zap.Logger) ConsentService {
	return &consent{consents: consents, contacts: contacts, tenantCfgs: tenantCfgs,
		auditLog: auditLog, tx: tx, logger: logger}
}

// CheckConsentBeforeSend resolves the legal basis for one send. Lookup
// failures fail open: a storage hiccup must not silently stop all
// sending, so the decision is allowed and the failure logged.
func (c *consent) CheckConsentBeforeSend(ctx context.Context, tenantID string, phoneNumber string,
	contactID *int64, enrollmentID *int64) ConsentDecision {
	if enrollmentID != nil {
		return ConsentDecision{Allowed: true, LegalBasis: LegalBasisContract}
	}

	if contactID == nil {
		return ConsentDecision{Allowed: true, LegalBasis: LegalBasisExempt}
	}

	contact, err := c.contacts.GetByID(ctx, tenantID, *contactID)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return ConsentDecision{Allowed: true, LegalBasis: LegalBasisExempt}
		}

		c.logger.Error("Consent gate contact lookup failed, failing open",
			zap.Error(err),
			zap.String("tenantID", tenantID),
			zap.Int64("contactID", *contactID))
		return ConsentDecision{Allowed: true, LegalBasis: LegalBasisExempt}
	}

	if contact.Kind != model.ContactKindMarketing {
		return ConsentDecision{Allowed: true, LegalBasis: LegalBasisContract}
	}

	record, err := c.consents.GetByContactID(ctx, tenantID, contact.ID)
	if err != nil {
		if errors.Is(err, repository.ErrConsentNotFound) {
			return ConsentDecision{Allowed: false, Reason: "no consent on file"}
		}

		c.logger.Error("Consent gate record lookup failed, failing open",
			zap.Error(err),
			zap.String("tenantID", tenantID),
			zap.Int64("contactID", contact.ID))
		return ConsentDecision{Allowed: true, LegalBasis: LegalBasisExempt}
	}

	switch {
	case record.AnonymizedAt != nil:
		return ConsentDecision{Allowed: false, Reason: "contact data has been erased"}
	case record.WithdrawnAt != nil:
		return ConsentDecision{Allowed: false,
			Reason: fmt.Sprintf("consent withdrawn on %s", record.WithdrawnAt.Format("2006-01-02"))}
	case !record.ConsentGiven:
		return ConsentDecision{Allowed: false, Reason: "consent not given"}
	default:
		return ConsentDecision{Allowed: true, LegalBasis: LegalBasisConsent}
	}
}

// HandleOptOut detects an opt-out keyword in an inbound message and,
// on match, withdraws the sender's consent. The returned text is the
// fixed acknowledgement the caller should send back.
func (c *consent) HandleOptOut(ctx context.Context, tenantID string, phoneNumber string, text string) (bool, string, error) {
	normalized := normalizeKeyword(text)
	if _, ok := optOutKeywords[normalized]; !ok {
		return false, "", nil
	}

	c.logger.Info("Opt-out keyword received",
		zap.String("tenantID", tenantID),
		zap.String("phone", phone.Normalize(phoneNumber)))

	countryCode := ""
	if cfg, err := c.tenantCfgs.GetByTenantID(ctx, tenantID); err == nil {
		countryCode = cfg.CountryCode
	}

	variants := phone.Variants(phoneNumber, countryCode)

	contact, err := c.contacts.FindByPhoneVariants(ctx, tenantID, variants)
	if err != nil {
		if !errors.Is(err, repository.ErrContactNotFound) {
			return true, optOutAcknowledgement, err
		}

		c.logger.Warn("Opt-out received from unknown phone",
			zap.String("tenantID", tenantID),
			zap.String("phone", phone.Normalize(phoneNumber)))
		return true, optOutAcknowledgement, nil
	}

	now := time.Now()
	record := &model.ConsentRecord{
		TenantID:     tenantID,
		ContactID:    contact.ID,
		ConsentGiven: false,
		Method:       "opt-out",
		LegalBasis:   LegalBasisConsent,
		WithdrawnAt:  &now,
	}

	payload, _ := json.Marshal(map[string]any{
		"keyword": normalized,
		"phone":   phone.Normalize(phoneNumber),
	})

	entry := &model.AuditLog{
		TenantID: tenantID,
		Actor:    model.AuditActorSystem,
		Action:   model.AuditActionOptOut,
		Entity:   "contact",
		EntityID: fmt.Sprintf("%d", contact.ID),
		Payload:  string(payload),
	}

	// The withdrawal and its audit trail commit together.
	err = c.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := c.consents.Upsert(ctx, record); err != nil {
			return err
		}
		return c.auditLog.Append(ctx, entry)
	})
	if err != nil {
		c.logger.Error("Failed to record consent withdrawal",
			zap.Error(err),
			zap.String("tenantID", tenantID),
			zap.Int64("contactID", contact.ID))
		return true, optOutAcknowledgement, err
	}

	return true, optOutAcknowledgement, nil
}

// normalizeKeyword uppercases the text and strips diacritics and every
// non-letter rune, so "Arrêter !" and "ARRETER" compare equal.
func normalizeKeyword(text string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	stripped, _, err := transform.String(stripper, text)
	if err != nil {
		stripped = text
	}

	var b strings.Builder
	for _, r := range strings.ToUpper(stripped) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}
