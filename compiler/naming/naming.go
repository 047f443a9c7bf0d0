// Package naming converts model identifiers between the casing conventions
// used by the generators (PascalCase, camelCase, CONSTANT_CASE, snake_case
// and kebab-case).
//
// All functions are total: an empty input yields an empty output.
package naming

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

// ToPascalCase converts text to PascalCase.
//
// Hyphens and whitespace are treated as word separators, characters that are
// neither letters, digits nor underscores are dropped, and the first letter
// of every word is capitalized. A lowercase letter following a digit is
// capitalized too (Ab9cd -> Ab9Cd).
//
// In strict mode, uppercase runs are collapsed so that acronyms read as words
// (ABC -> Abc, HTTPServer -> HttpServer). strictIfUppercase enables strict
// mode only when the whole input is uppercase (USER_ID -> UserId).
func ToPascalCase(text string, strict, strictIfUppercase bool) string {
	if strictIfUppercase && text == strings.ToUpper(text) {
		strict = true
	}
	var b strings.Builder
	for _, w := range words(text) {
		w = upperFirstASCII(w)
		if strict {
			w = lowerTrailingRun(w)
		}
		w = upperAfterDigit(w)
		if strict {
			w = lowerInnerRuns(w)
		}
		b.WriteString(string(w))
	}
	return b.String()
}

// ToCamelCase converts text to camelCase.
func ToCamelCase(text string, strict, strictIfUppercase bool) string {
	return ToFirstLower(ToPascalCase(text, strict, strictIfUppercase))
}

// ToConstantCase converts text to CONSTANT_CASE.
//
// An underscore is inserted before an uppercase character (digits count as
// uppercase) when the previous character is lowercase, or when the next
// character is lowercase and closes an uppercase run: userId -> USER_ID,
// HTTPServer -> HTTP_SERVER, myProp2 -> MY_PROP_2.
func ToConstantCase(text string) string {
	var (
		b                = make([]rune, 0, len(text)+4)
		rs               = []rune(text)
		lastIsUp         = true
		lastIsUnderscore = false
	)
	for i, c := range rs {
		upper := unicode.ToUpper(c)
		nextIsLow := i < len(rs)-1 && unicode.ToUpper(rs[i+1]) != rs[i+1]
		if upper == c && c != '_' {
			if len(b) != 0 && !lastIsUnderscore && (!lastIsUp || nextIsLow) {
				b = append(b, '_')
			}
		}
		lastIsUp = upper == c
		lastIsUnderscore = c == '_'
		b = append(b, upper)
	}
	return string(b)
}

// ToSnakeCase converts text to snake_case.
func ToSnakeCase(text string) string {
	return strings.ToLower(ToConstantCase(text))
}

// ToKebabCase converts text to kebab-case.
func ToKebabCase(text string) string {
	return strings.ReplaceAll(ToSnakeCase(text), "_", "-")
}

// ToFirstUpper uppercases the first character of text.
func ToFirstUpper(text string) string {
	if text == "" {
		return text
	}
	rs := []rune(text)
	rs[0] = unicode.ToUpper(rs[0])
	return string(rs)
}

// ToFirstLower lowercases the first character of text.
func ToFirstLower(text string) string {
	if text == "" {
		return text
	}
	rs := []rune(text)
	rs[0] = unicode.ToLower(rs[0])
	return string(rs)
}

// Plural returns the plural form of an English word, keeping the casing
// of the leading letter.
func Plural(text string) string {
	if text == "" {
		return text
	}
	return inflect.Pluralize(text)
}

// words splits text into its underscore separated words after
// normalizing separators and removing invalid characters.
func words(text string) [][]rune {
	var (
		ws  [][]rune
		cur []rune
	)
	flush := func() {
		if len(cur) > 0 {
			ws = append(ws, cur)
			cur = nil
		}
	}
	for _, r := range text {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case isWordRune(r):
			cur = append(cur, r)
		}
	}
	flush()
	return ws
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Pc, r)
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func toLowerASCII(r rune) rune {
	if isUpper(r) {
		return r + ('a' - 'A')
	}
	return r
}

func toUpperASCII(r rune) rune {
	if isLower(r) {
		return r - ('a' - 'A')
	}
	return r
}

func upperFirstASCII(w []rune) []rune {
	if len(w) > 0 {
		w[0] = toUpperASCII(w[0])
	}
	return w
}

// lowerTrailingRun lowercases the trailing run of uppercase letters and
// digits that follows an uppercase letter (ABC -> Abc, AB12 -> Ab12).
func lowerTrailingRun(w []rune) []rune {
	j := len(w)
	for j > 0 && (isUpper(w[j-1]) || isDigit(w[j-1])) {
		j--
	}
	for i := j + 1; i < len(w); i++ {
		if isUpper(w[i-1]) {
			for k := i; k < len(w); k++ {
				w[k] = toLowerASCII(w[k])
			}
			break
		}
	}
	return w
}

// upperAfterDigit capitalizes every lowercase letter directly following a digit.
func upperAfterDigit(w []rune) []rune {
	for i := 1; i < len(w); i++ {
		if isDigit(w[i-1]) && isLower(w[i]) {
			w[i] = toUpperASCII(w[i])
		}
	}
	return w
}

// lowerInnerRuns lowercases the inner part of an uppercase run when the run
// is followed by a capitalized word or a digit (ABCDef -> AbcDef, ABC1 -> Abc1).
// The last uppercase letter before a lowercase one is kept, as it starts the
// next word.
func lowerInnerRuns(w []rune) []rune {
	src := append([]rune(nil), w...)
	for i := 1; i < len(src); {
		if !isUpper(src[i-1]) || !isUpper(src[i]) {
			i++
			continue
		}
		end := -1
		for k := i + 1; k <= len(src) && isUpper(src[k-1]); k++ {
			if k < len(src) && isDigit(src[k]) {
				end = k
				break
			}
			if k+1 < len(src) && isUpper(src[k]) && isLower(src[k+1]) {
				end = k
				break
			}
		}
		if end < 0 {
			i++
			continue
		}
		for k := i; k < end; k++ {
			w[k] = toLowerASCII(w[k])
		}
		i = end
	}
	return w
}
