package port

import "context"

// LarkMessageSender defines message sending operations
type LarkMessageSender interface {
	SendMessage(ctx context.Context, openID string, content string) error
}

// Translator resolves display labels
type Translator interface {
	Translate(key string) string
}

// TranslatorFunc adapts a plain function to Translator
type TranslatorFunc func(key string) string

// Translate calls f(key)
func (f TranslatorFunc) Translate(key string) string {
	return f(key)
}
