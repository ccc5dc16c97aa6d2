package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

type ctxKey struct{}

var (
	bundle      *i18n.Bundle
	defaultLang string
)

// Init loads the translation bundle with lang as the default language.
func Init(lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("parse language %q: %w", lang, err)
	}

	bundle = i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	defaultLang = tag.String()

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return fmt.Errorf("parse locale file %s: %w", e.Name(), err)
		}
		slog.Debug("loaded locale file", "file", e.Name())
	}

	return nil
}

// Languages returns the tags of every loaded locale.
func Languages() []string {
	var out []string
	for _, t := range bundle.LanguageTags() {
		out = append(out, t.String())
	}
	return out
}

// NewLocalizer creates a localizer for the given language.
func NewLocalizer(lang string) *i18n.Localizer {
	return i18n.NewLocalizer(bundle, lang, defaultLang)
}

// WithLocalizer stores a localizer in the context.
func WithLocalizer(ctx context.Context, loc *i18n.Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, loc)
}

// WithLang stores a localizer for lang in the context.
func WithLang(ctx context.Context, lang string) context.Context {
	return WithLocalizer(ctx, NewLocalizer(lang))
}

func localizerFromCtx(ctx context.Context) *i18n.Localizer {
	if loc, ok := ctx.Value(ctxKey{}).(*i18n.Localizer); ok {
		return loc
	}
	return i18n.NewLocalizer(bundle, defaultLang)
}

// T translates a message by ID.
func T(ctx context.Context, msgID string) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: msgID})
}

// Td translates a message by ID with template data.
func Td(ctx context.Context, msgID string, data map[string]any) string {
	return localize(ctx, &i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: data,
	})
}

// Tp translates a pluralized message by ID.
func Tp(ctx context.Context, msgID string, count int) string {
	return localize(ctx, &i18n.LocalizeConfig{
		MessageID:    msgID,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

func localize(ctx context.Context, cfg *i18n.LocalizeConfig) string {
	s, err := localizerFromCtx(ctx).Localize(cfg)
	if err != nil {
		slog.Warn("missing translation", "id", cfg.MessageID, "error", err)
		return cfg.MessageID
	}
	return s
}
