package results

import (
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// FallbackName replaces a file name that sanitizes to nothing
const FallbackName = "file"

// SanitizeFilename turns an uploaded file name into a safe base name:
// directories and the extension are dropped, anything other than letters,
// digits, '_' and '-' becomes '_', runs of '_' collapse, and the result is
// cut to maxLength characters.
func SanitizeFilename(name string, maxLength int) string {
	name = norm.NFC.String(name)
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" {
		name = ""
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))

	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && !unicode.Is(unicode.Mn, r) {
			r = '_'
		}
		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteRune(r)
	}

	clean := strings.Trim(b.String(), "_")
	if clean == "" {
		return FallbackName
	}
	if runes := []rune(clean); maxLength > 0 && len(runes) > maxLength {
		clean = string(runes[:maxLength])
	}
	return clean
}
