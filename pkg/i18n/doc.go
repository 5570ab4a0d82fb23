// Package i18n translates portal messages.
//
// Translations are nested YAML documents keyed by language code and loaded
// through a Loader, usually FSLoader over an embedded directory. Keys are
// dot separated paths into the tree. Plural keys carry "zero", "one" and
// "other" children and are resolved by N, which always provides a "count"
// parameter:
//
//	tr, err := i18n.NewTranslator(ctx, i18n.NewFSLoader(locales, "locales/*.yaml"))
//	tr.N("pt-BR", "banner.trial.remaining", 2) // "2 dias restantes"
//
// Language negotiation uses golang.org/x/text/language: Match picks the best
// loaded language for an Accept-Language header, and Middleware stores the
// result in the request context for Tc and Nc.
package i18n
