// Package textsearch normaliza texto para búsquedas sin distinguir mayúsculas ni tildes
// ("Devolución" y "devolucion" coinciden).
package textsearch

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold pasa a minúsculas, quita diacríticos y colapsa espacios.
// Los transformers de x/text guardan estado: se crean por llamada.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(cases.Fold().String(out)), " ")
}

// Join normaliza y concatena los campos no vacíos separados por espacio.
func Join(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = Fold(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

// Contains indica si term (normalizado) aparece en alguno de los campos.
// Un término vacío coincide siempre.
func Contains(term string, fields ...string) bool {
	term = Fold(term)
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Fold(f), term) {
			return true
		}
	}
	return false
}
