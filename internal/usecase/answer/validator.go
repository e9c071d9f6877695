package answer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/akshaykn0797/menudex/internal/domain"
)

// responseShape mirrors the two legal model outputs. RawMessage keeps
// presence distinguishable from an explicit null.
type responseShape struct {
	Items   json.RawMessage `json:"items"`
	Message json.RawMessage `json:"message"`
}

// parseResponse validates raw model output into a response envelope. It is
// total: any input yields either an envelope or ErrInvalidResponseFormat,
// never a panic.
func parseResponse(raw string) (domain.Envelope, error) {
	text := stripCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return domain.Envelope{}, fmt.Errorf("empty response: %w", domain.ErrInvalidResponseFormat)
	}

	var shape responseShape
	if err := json.Unmarshal([]byte(text), &shape); err != nil {
		return domain.Envelope{}, fmt.Errorf("decode response: %w: %w", err, domain.ErrInvalidResponseFormat)
	}

	hasItems := len(shape.Items) > 0 && string(shape.Items) != "null"
	hasMessage := len(shape.Message) > 0 && string(shape.Message) != "null"

	switch {
	case hasItems && hasMessage:
		return domain.Envelope{}, fmt.Errorf(
			"response carries both items and message: %w", domain.ErrInvalidResponseFormat,
		)
	case hasItems:
		var items []domain.MenuItem
		if err := json.Unmarshal(shape.Items, &items); err != nil {
			return domain.Envelope{}, fmt.Errorf("decode items: %w: %w", err, domain.ErrInvalidResponseFormat)
		}
		return domain.NewItemsEnvelope(items), nil
	case hasMessage:
		var message string
		if err := json.Unmarshal(shape.Message, &message); err != nil {
			return domain.Envelope{}, fmt.Errorf("decode message: %w: %w", err, domain.ErrInvalidResponseFormat)
		}
		if message == "" {
			return domain.Envelope{}, fmt.Errorf("empty message: %w", domain.ErrInvalidResponseFormat)
		}
		return domain.NewMessageEnvelope(message), nil
	default:
		return domain.Envelope{}, fmt.Errorf(
			"response carries neither items nor message: %w", domain.ErrInvalidResponseFormat,
		)
	}
}

// stripCodeFence tolerates models that wrap JSON in markdown fences.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
