package utils

import (
	"strings"
	"unicode"
)

// ParseInput splits a slash command into its arguments and flags.
// Arguments can be quoted to contain whitespace, quotes inside of quoted arguments
// are escaped with a backslash. Unquoted words starting with "--" are flags,
// "--key=value" yields key -> value and "--key" yields key -> "".
func ParseInput(input, trigger string) ([]string, map[string]string) {
	// Transform curly quotes to straight quotes
	input = strings.Map(func(in rune) rune {
		switch in {
		case '“', '”':
			return '"'
		}

		return in
	}, input)

	// Remove Trigger prefix and spaces
	input = strings.TrimSpace(strings.TrimPrefix(input, "/"+trigger))

	args := []string{}
	flags := map[string]string{}

	escaped := false
	quoted := false
	tainted := false // a tainted word is never a flag
	var word strings.Builder

	addField := func() {
		w := word.String()
		word.Reset()
		defer func() { tainted = false }()

		if !tainted {
			w = strings.TrimSpace(w)
			if w == "" {
				return
			}
			if len(w) > 2 && strings.HasPrefix(w, "--") {
				key, value, _ := strings.Cut(w[2:], "=")
				flags[key] = value
				return
			}
		}
		args = append(args, w)
	}

	for _, c := range input {
		switch {
		case c == '"' && !escaped:
			quoted = !quoted
			tainted = true
		case c == '\\' && !escaped:
			tainted = true
		case unicode.IsSpace(c) && !quoted:
			if word.Len() > 0 || tainted {
				addField() // End of word
			}
		default:
			word.WriteRune(c)
		}
		escaped = c == '\\' && !escaped
	}
	if word.Len() > 0 || tainted {
		addField() // Add last field
	}

	return args, flags
}
