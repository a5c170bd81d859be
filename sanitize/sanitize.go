// Package sanitize turns raw header values into strings that are safe to use
// as directory or file name components on common filesystems.
package sanitize

import "strings"

const unsafeChars = `<>:"/\|?*`

// FolderName replaces every filesystem-unsafe character with an underscore.
// No truncation and no Unicode normalization are applied, so two different
// inputs may sanitize to the same output.
func FolderName(name string) string {
	return replaceUnsafe(name, false)
}

// FileName replaces every filesystem-unsafe character and any literal
// newline with an underscore.
func FileName(name string) string {
	return replaceUnsafe(name, true)
}

func replaceUnsafe(name string, replaceNewline bool) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeChars, r) {
			return '_'
		}
		if replaceNewline && r == '\n' {
			return '_'
		}
		return r
	}, name)
}
