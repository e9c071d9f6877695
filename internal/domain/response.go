package domain

import "encoding/json"

// EnvelopeKind discriminates the two answer shapes.
type EnvelopeKind string

const (
	// EnvelopeItems is an answer carrying a list of menu items.
	EnvelopeItems EnvelopeKind = "items"
	// EnvelopeMessage is an answer carrying a single message string.
	EnvelopeMessage EnvelopeKind = "message"
)

// Envelope is the strict, schema-validated shape of every answer returned to a
// caller: either a list of items or a single message, never both.
type Envelope struct {
	kind    EnvelopeKind
	items   []MenuItem
	message string
}

// NewItemsEnvelope creates an items answer.
func NewItemsEnvelope(items []MenuItem) Envelope {
	if items == nil {
		items = []MenuItem{}
	}
	return Envelope{kind: EnvelopeItems, items: items}
}

// NewMessageEnvelope creates a message answer.
func NewMessageEnvelope(message string) Envelope {
	return Envelope{kind: EnvelopeMessage, message: message}
}

// Kind returns the envelope discriminator.
func (e Envelope) Kind() EnvelopeKind { return e.kind }

// Items returns the item list; empty unless Kind is EnvelopeItems.
func (e Envelope) Items() []MenuItem { return e.items }

// Message returns the message; empty unless Kind is EnvelopeMessage.
func (e Envelope) Message() string { return e.message }

// MarshalJSON renders exactly one of the two schema shapes.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.kind == EnvelopeMessage {
		return json.Marshal(struct {
			Message string `json:"message"`
		}{Message: e.message})
	}
	return json.Marshal(struct {
		Items []MenuItem `json:"items"`
	}{Items: e.items})
}
