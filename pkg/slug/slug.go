package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

	// Letters that do not decompose into a base letter plus a mark.
	special = strings.NewReplacer(
		"ı", "i", "ø", "o", "ß", "ss", "æ", "ae", "œ", "oe", "đ", "d", "ł", "l", "&", " and ",
	)
)

// Generate creates a URL-friendly slug from a product or category name.
// Accented Latin letters are folded to ASCII; anything else that is not a
// letter or digit becomes a single hyphen.
//
//	"Dhaka Topi (Handmade)" → "dhaka-topi-handmade"
//	"Çocuk Ürünleri"        → "cocuk-urunleri"
func Generate(name string) string {
	s := special.Replace(strings.ToLower(strings.TrimSpace(name)))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
