package locale

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localizedata embed.FS

const (
	En = "en"
	Uz = "uz"
)

// Languages lists every bundled translation
var Languages = []string{En, Uz}

// IsSupported reports whether a translation for lang is bundled
func IsSupported(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

type locale struct {
	locale string
}

type Locale interface {
	GetLocale() string
}

func NewLocale(l string) Locale {
	return &locale{
		locale: l,
	}
}

func (l *locale) GetLocale() string {
	return l.locale
}

type localizer struct {
	Locale
	*i18n.Localizer
}

type Localizer interface {
	Locale
	MustLocalize(id string) string
	MustLocalizeWithTemplate(id string, fields ...string) string
}

// NewLocalizer loads the embedded bundles. Missing messages fall back to English.
func NewLocalizer(ctx context.Context, locale Locale) (Localizer, error) {
	if !IsSupported(locale.GetLocale()) {
		return nil, fmt.Errorf("unsupported language: %q", locale.GetLocale())
	}

	bundle, err := newBundle()
	if err != nil {
		return nil, err
	}

	return &localizer{
		locale,
		i18n.NewLocalizer(bundle, locale.GetLocale(), En),
	}, nil
}

func newBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, lang := range Languages {
		f := lang + ".json"
		data, err := localizedata.ReadFile("locales/" + f)
		if err != nil {
			return nil, fmt.Errorf("failed to load translation data: %s", f)
		}

		if _, err := bundle.ParseMessageFileBytes(data, f); err != nil {
			return nil, fmt.Errorf("failed to parse translation data %s: %w", f, err)
		}
	}

	return bundle, nil
}

func (l *localizer) MustLocalize(id string) string {
	return l.Localizer.MustLocalize(createLocalizeConfig(id))
}

func (l *localizer) MustLocalizeWithTemplate(id string, fields ...string) string {
	return l.Localizer.MustLocalize(createLocalizeConfigWithTemplate(id, fields...))
}

func createLocalizeConfig(id string) *i18n.LocalizeConfig {
	return &i18n.LocalizeConfig{
		MessageID: id,
	}
}

func createLocalizeConfigWithTemplate(id string, fields ...string) *i18n.LocalizeConfig {
	td := make(map[string]interface{}, len(fields))

	for i, f := range fields {
		td["f"+strconv.Itoa(i+1)] = f
	}

	return &i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: td,
	}
}
