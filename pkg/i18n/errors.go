package i18n

import (
	"errors"
	"fmt"
)

var (
	ErrNilLoader                = errors.New("i18n: translation loader is nil")
	ErrFailedToLoadTranslations = errors.New("i18n: failed to load translations")
	ErrFailedToReadFile         = errors.New("i18n: failed to read translation file")
	ErrFailedToParseYAML        = errors.New("i18n: failed to parse YAML content")
)

// ErrLanguageNotSupported indicates the requested language has no translations.
type ErrLanguageNotSupported struct {
	Lang string
}

func (e *ErrLanguageNotSupported) Error() string {
	return fmt.Sprintf("language not supported: %s", e.Lang)
}
