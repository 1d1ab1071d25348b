package routing

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/drivelead/drivelead-api/internal/domain/entity"
)

// Pesos del score de similitud entre dos leads. El score total es 0-100.
const (
	weightPhone = 60
	weightEmail = 25
	weightName  = 15
)

// foldTransformer descompone, elimina diacríticos y recompone. La comparación
// de nombres debe tratar "José" y "Jose" como el mismo token.
var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

var caseFolder = cases.Fold()

// NormalizePhone deja solo los dígitos del teléfono.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeEmail baja a minúsculas y normaliza unicode.
func NormalizeEmail(email string) string {
	s, _, err := transform.String(foldTransformer, strings.TrimSpace(email))
	if err != nil {
		s = strings.TrimSpace(email)
	}
	return caseFolder.String(s)
}

// NameTokens tokeniza un nombre: minúsculas, sin diacríticos, separado por
// espacios y puntuación. "Rajesh Kumar" -> {rajesh, kumar}.
func NameTokens(name string) []string {
	s, _, err := transform.String(foldTransformer, name)
	if err != nil {
		s = name
	}
	s = caseFolder.String(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// phonesMatch compara teléfonos por dígitos exactos. Tolera prefijos de país:
// si ambos tienen al menos 10 dígitos, compara los últimos 10.
func phonesMatch(a, b string) bool {
	da, db := NormalizePhone(a), NormalizePhone(b)
	if da == "" || db == "" {
		return false
	}
	if len(da) >= 10 && len(db) >= 10 {
		return da[len(da)-10:] == db[len(db)-10:]
	}
	return da == db
}

// nameOverlap fracción de tokens compartidos sobre la unión (Jaccard).
// Ambos lados se deduplican antes de comparar: un token repetido en un
// nombre ("Jose Jose") cuenta una sola vez, de lo contrario el score
// dependería del orden de los argumentos.
func nameOverlap(a, b string) float64 {
	sa, sb := tokenSet(NameTokens(a)), tokenSet(NameTokens(b))
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	shared := 0
	for t := range sa {
		if sb[t] {
			shared++
		}
	}
	union := len(sa) + len(sb) - shared
	return float64(shared) / float64(union)
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// Score calcula la similitud 0-100 entre dos leads:
// teléfono exacto 60, email exacto 25, solape de tokens del nombre hasta 15
// (crédito parcial proporcional). Determinista y simétrica: Score(a,b) == Score(b,a).
func Score(a, b *entity.Lead) int {
	score := 0.0
	if phonesMatch(a.Phone, b.Phone) {
		score += weightPhone
	}
	if ea, eb := NormalizeEmail(a.Email), NormalizeEmail(b.Email); ea != "" && ea == eb {
		score += weightEmail
	}
	score += weightName * nameOverlap(a.Name, b.Name)

	result := int(math.Round(score))
	if result > 100 {
		result = 100
	}
	return result
}
