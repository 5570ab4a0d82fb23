package access

import (
	"context"
	"embed"

	"github.com/dmitrymomot/biportal/pkg/i18n"
)

//go:embed locales/*.yaml
var locales embed.FS

// NewTranslator loads the engine messages (pt-BR default, en).
func NewTranslator(ctx context.Context, opts ...i18n.Option) (*i18n.Translator, error) {
	return i18n.NewTranslator(ctx, i18n.NewFSLoader(locales, "locales/*.yaml"), opts...)
}
