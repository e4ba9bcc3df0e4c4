package service

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/formaops/messaging-gateway/internal/model"
	"github.com/formaops/messaging-gateway/internal/repository"
	"github.com/formaops/messaging-gateway/pkg/msgprovider"
	"github.com/formaops/messaging-gateway/pkg/phone"
	"go.uber.org/zap"
)

// replyCooldown is the minimum interval between two automated replies
// to the same contact.
const replyCooldown = 5 * time.Minute

// fallbackKeyword marks the rule used when nothing else matches.
const fallbackKeyword = "*"

// routingPrefix tags interactive reply ids that are handled by the
// enrollment flow, never by rule matching.
const routingPrefix = "enroll:"

// interactiveKeywords translates button/list reply ids to the keyword
// the user would have typed, so a tap behaves exactly like text.
var interactiveKeywords = map[string]string{
	"menu_formations": "formations",
	"menu_hours":      "horaires",
	"menu_human":      "conseiller",
}

// interactivePayload is the serialized rich part of a BUTTONS or LIST
// rule response.
type interactivePayload struct {
	Buttons    []msgprovider.Button      `json:"buttons,omitempty"`
	ListButton string                    `json:"listButton,omitempty"`
	Sections   []msgprovider.ListSection `json:"sections,omitempty"`
}

type ChatbotService interface {
	ProcessInbound(ctx context.Context, tenantID string, phoneNumber string, text string, interactiveReplyID string) (bool, error)
	ClearHandoff(ctx context.Context, tenantID string, phoneNumber string) error
}

type chatbot struct {
	rules  repository.ChatbotRepository
	router Router
	logger *zap.Logger
}

func NewChatbotService(rules repository.ChatbotRepository, router Router, logger *zap.Logger) ChatbotService {
	return &chatbot{rules: rules, router: router, logger: logger}
}

// ProcessInbound runs one inbound message through the auto-reply
// rules. It returns whether an automated reply was sent.
func (c *chatbot) ProcessInbound(ctx context.Context, tenantID string, phoneNumber string, text string, interactiveReplyID string) (bool, error) {
	if strings.HasPrefix(interactiveReplyID, routingPrefix) {
		return false, nil
	}

	normalized := phone.Normalize(phoneNumber)

	conversation, err := c.rules.GetConversation(ctx, tenantID, normalized)
	if err != nil {
		if !errors.Is(err, repository.ErrConversationNotFound) {
			c.logger.Error("Failed to load conversation", zap.Error(err), zap.String("tenantID", tenantID))
			return false, ErrDatabase
		}
		conversation = &model.ChatbotConversation{TenantID: tenantID, Phone: normalized}
	}

	if conversation.HandoffActive {
		return false, nil
	}

	if conversation.LastBotReplyAt != nil && time.Since(*conversation.LastBotReplyAt) < replyCooldown {
		return false, nil
	}

	effective := text
	if interactiveReplyID != "" {
		if keyword, ok := interactiveKeywords[interactiveReplyID]; ok {
			effective = keyword
		} else {
			effective = interactiveReplyID
		}
	}

	rules, err := c.rules.ActiveRules(ctx, tenantID)
	if err != nil {
		c.logger.Error("Failed to load chatbot rules", zap.Error(err), zap.String("tenantID", tenantID))
		return false, ErrDatabase
	}
	if len(rules) == 0 {
		rules = defaultRules()
	}

	rule := c.matchRule(rules, effective)
	if rule == nil {
		return false, nil
	}

	now := time.Now()
	if rule.ResponseType == model.ResponseTypeHandoff {
		conversation.HandoffActive = true
		conversation.HandoffAt = &now
	}

	c.dispatch(ctx, tenantID, normalized, rule)

	conversation.LastBotReplyAt = &now
	conversation.LastMenu = rule.Name

	if err := c.rules.UpsertConversation(ctx, conversation); err != nil {
		c.logger.Error("Failed to persist conversation state",
			zap.Error(err),
			zap.String("tenantID", tenantID))
	}

	return true, nil
}

// ClearHandoff returns a conversation to the bot after a human
// operator has finished with it.
func (c *chatbot) ClearHandoff(ctx context.Context, tenantID string, phoneNumber string) error {
	normalized := phone.Normalize(phoneNumber)

	conversation, err := c.rules.GetConversation(ctx, tenantID, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil
		}
		return ErrDatabase
	}

	conversation.HandoffActive = false
	conversation.HandoffAt = nil

	if err := c.rules.UpsertConversation(ctx, conversation); err != nil {
		c.logger.Error("Failed to clear handoff", zap.Error(err), zap.String("tenantID", tenantID))
		return ErrDatabase
	}

	return nil
}

// matchRule scans rules in stored order (priority descending):
// whole-word keyword containment first, then regex. The fallback rule
// only applies when no other rule fires.
func (c *chatbot) matchRule(rules []model.ChatbotRule, text string) *model.ChatbotRule {
	var fallback *model.ChatbotRule

	for i := range rules {
		rule := &rules[i]

		if rule.Keywords != "" {
			matched := false
			for _, keyword := range strings.Split(rule.Keywords, ",") {
				keyword = strings.TrimSpace(keyword)
				if keyword == "" {
					continue
				}
				if keyword == fallbackKeyword {
					if fallback == nil {
						fallback = rule
					}
					continue
				}
				if containsWholeWord(text, keyword) {
					matched = true
					break
				}
			}
			if matched {
				return rule
			}
		}

		if rule.Pattern != "" {
			re, err := regexp.Compile("(?i)" + rule.Pattern)
			if err != nil {
				c.logger.Warn("Invalid chatbot rule pattern",
					zap.Int64("ruleID", rule.ID),
					zap.String("pattern", rule.Pattern))
				continue
			}
			if re.MatchString(text) {
				return rule
			}
		}
	}

	return fallback
}

func (c *chatbot) dispatch(ctx context.Context, tenantID string, to string, rule *model.ChatbotRule) {
	switch rule.ResponseType {
	case model.ResponseTypeButtons, model.ResponseTypeList:
		var payload interactivePayload
		if err := json.Unmarshal([]byte(rule.ResponsePayload), &payload); err != nil {
			c.logger.Error("Invalid chatbot rule payload",
				zap.Error(err),
				zap.Int64("ruleID", rule.ID))
			c.router.SendMessage(ctx, tenantID, SendMessageCommand{To: to, Text: rule.ResponseText})
			return
		}
		c.router.SendInteractive(ctx, tenantID, InteractiveCommand{
			To:         to,
			Body:       rule.ResponseText,
			Buttons:    payload.Buttons,
			ListButton: payload.ListButton,
			Sections:   payload.Sections,
		})
	default:
		c.router.SendMessage(ctx, tenantID, SendMessageCommand{To: to, Text: rule.ResponseText})
	}
}

func containsWholeWord(text string, keyword string) bool {
	keyword = strings.ToLower(keyword)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, word := range words {
		if word == keyword {
			return true
		}
	}

	return false
}

const defaultMenuPayload = `{"listButton":"Voir les options","sections":[{"title":"Nos services","rows":[` +
	`{"id":"menu_formations","title":"Nos formations","description":"Catalogue et prochaines sessions"},` +
	`{"id":"menu_hours","title":"Horaires","description":"Heures d'ouverture du secrétariat"},` +
	`{"id":"menu_human","title":"Parler à un conseiller","description":"Mise en relation avec l'équipe"}]}]}`

// defaultRules is the built-in rule set used when a tenant has none
// stored.
func defaultRules() []model.ChatbotRule {
	return []model.ChatbotRule{
		{
			Name:            "menu",
			Keywords:        "bonjour,salut,hello,menu,aide",
			ResponseType:    model.ResponseTypeList,
			ResponseText:    "Bonjour ! Comment pouvons-nous vous aider ?",
			ResponsePayload: defaultMenuPayload,
			Priority:        100,
			Active:          true,
		},
		{
			Name:         "hours",
			Keywords:     "horaires,horaire,ouverture",
			ResponseType: model.ResponseTypeText,
			ResponseText: "Notre secrétariat est ouvert du lundi au vendredi, de 9h à 17h30.",
			Priority:     50,
			Active:       true,
		},
		{
			Name:         "formations",
			Keywords:     "formations,formation,catalogue",
			ResponseType: model.ResponseTypeText,
			ResponseText: "Retrouvez notre catalogue de formations et les prochaines sessions sur notre site. Répondez \"conseiller\" pour être mis en relation.",
			Priority:     45,
			Active:       true,
		},
		{
			Name:         "human",
			Keywords:     "conseiller,humain,agent",
			ResponseType: model.ResponseTypeHandoff,
			ResponseText: "Un conseiller va prendre le relais, merci de patienter.",
			Priority:     40,
			Active:       true,
		},
		{
			Name:         "fallback",
			Keywords:     fallbackKeyword,
			ResponseType: model.ResponseTypeText,
			ResponseText: "Nous n'avons pas compris votre demande. Répondez \"menu\" pour voir les options ou \"conseiller\" pour parler à quelqu'un.",
			Priority:     0,
			Active:       true,
		},
	}
}
