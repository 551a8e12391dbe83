// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package i18n provides internationalization and localization support for
// Lorekeeper. It uses the go-i18n library to load and manage translation
// files, allowing the user interface to be displayed in multiple languages.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Translations ship inside the binary. Adding a language means dropping
// another YAML file into locales/ and listing its display name below.
//
//go:embed locales/*.yaml
var localeFS embed.FS

var (
	// bundle holds every parsed message across all languages.
	bundle *i18n.Bundle
	// localizer resolves message IDs for the active language.
	localizer *i18n.Localizer
	// current is the language tag the localizer was built for.
	current string
)

// displayNames maps locale codes to the names shown in language pickers.
// Codes without an entry fall back to the code itself.
var displayNames = map[string]string{
	"en": "English",
	"de": "Deutsch",
}

// localeFiles lists the embedded translation files, keyed by locale code.
func localeFiles() map[string]string {
	out := map[string]string{}
	entries, _ := fs.ReadDir(localeFS, "locales")
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		out[strings.TrimSuffix(name, ".yaml")] = "locales/" + name
	}
	return out
}

// Init parses every embedded locale file and builds a localizer for lang.
// An empty lang falls back to English.
func Init(lang string) {
	if lang == "" {
		lang = "en"
	}
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	// go-i18n derives the language tag from the file name in the path.
	for _, path := range localeFiles() {
		data, _ := localeFS.ReadFile(path)
		bundle.ParseMessageFileBytes(data, path)
	}

	localizer = i18n.NewLocalizer(bundle, lang)
	current = lang
}

// T translates a message by its ID. Extra arguments are applied with
// fmt.Sprintf to the translated template. If the i18n system has not been
// initialized it defaults to English, and an unknown ID is returned
// unchanged so missing translations stay visible instead of crashing.
func T(messageID string, args ...interface{}) string {
	if localizer == nil {
		Init("en")
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		msg = messageID
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// GetLang returns the language the localizer currently translates into.
func GetLang() string {
	if current == "" {
		return "en"
	}
	return current
}

// SetLang rebuilds the localizer for another language at runtime.
func SetLang(lang string) {
	Init(lang)
}

// GetAvailableLocales returns the locale codes with embedded translation
// files, mapped to their display names.
func GetAvailableLocales() map[string]string {
	out := map[string]string{}
	for code := range localeFiles() {
		name := code
		if dn, ok := displayNames[code]; ok {
			name = dn
		}
		out[code] = name
	}
	return out
}
