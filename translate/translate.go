// Package translate renders user visible messages for the virtual machine
// through a locale aware printer.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("vmachine: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// SetLanguage replaces the process locale with the first parsable tag.
// Returns false, and leaves the printer unchanged, if no tag parses.
func SetLanguage(tags ...string) (ok bool) {
	for _, tag := range tags {
		lang, err := language.Parse(tag)
		if err != nil {
			continue
		}
		printer = message.NewPrinter(lang)
		ok = true
		return
	}

	return
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
