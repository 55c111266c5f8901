package rule

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// token is a token under construction, offsets in bytes of the parsed text.
type token struct {
	text  string
	start int
	end   int
	pos   string
	lemma string
}

const (
	leadingPunct  = "\"'([{“‘«¿¡"
	trailingPunct = ".,;:!?)]}\"'”’»…"
	closingPunct  = ")]}\"'”’»"
	openingPunct  = "\"'([{“‘«"
)

// tokenize splits text on white space and peels punctuation off the words.
func (e *Engine) tokenize(text string) []token {
	var toks []token

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}

		j := i
		for j < len(text) {
			r, size := utf8.DecodeRuneInString(text[j:])
			if unicode.IsSpace(r) {
				break
			}
			j += size
		}

		toks = e.appendWord(toks, text, i, j)
		i = j
	}

	return toks
}

// appendWord appends the tokens of the white space delimited word text[s:e].
func (e *Engine) appendWord(toks []token, text string, s, end int) []token {
	// leading punctuation, one token per rune
	for s < end {
		r, size := utf8.DecodeRuneInString(text[s:])
		if s+size >= end || !strings.ContainsRune(leadingPunct, r) {
			break
		}
		toks = append(toks, token{text: text[s : s+size], start: s, end: s + size})
		s += size
	}

	// trailing punctuation, collected right to left
	var trailing []token
	for end > s {
		r, size := utf8.DecodeLastRuneInString(text[s:end])
		if end-size <= s || !strings.ContainsRune(trailingPunct, r) {
			break
		}

		if r == '.' {
			dots := 0
			for k := end - 1; k >= s && text[k] == '.'; k-- {
				dots++
			}
			if dots > 1 {
				if end-dots <= s {
					break
				}
				trailing = append(trailing, token{text: text[end-dots : end], start: end - dots, end: end})
				end -= dots
				continue
			}
			if e.isAbbreviation(text[s : end-1]) {
				break
			}
		}

		trailing = append(trailing, token{text: text[end-size : end], start: end - size, end: end})
		end -= size
	}

	// clitics
	core := text[s:end]
	lower := strings.ToLower(core)
	switch {
	case len(core) > 3 && strings.HasSuffix(lower, "n't"):
		toks = append(toks,
			token{text: text[s : end-3], start: s, end: end - 3},
			token{text: text[end-3 : end], start: end - 3, end: end})
	case len(core) > 2 && strings.HasSuffix(lower, "'s"):
		toks = append(toks,
			token{text: text[s : end-2], start: s, end: end - 2},
			token{text: text[end-2 : end], start: end - 2, end: end})
	case len(core) > len("’s") && strings.HasSuffix(lower, "’s"):
		n := len("’s")
		toks = append(toks,
			token{text: text[s : end-n], start: s, end: end - n},
			token{text: text[end-n : end], start: end - n, end: end})
	default:
		toks = append(toks, token{text: core, start: s, end: end})
	}

	for k := len(trailing) - 1; k >= 0; k-- {
		toks = append(toks, trailing[k])
	}

	return toks
}

// isAbbreviation reports whether w followed by a dot is an abbreviation
// that keeps the dot: a known abbreviation, a single upper-case initial, or
// a dotted form like "e.g".
func (e *Engine) isAbbreviation(w string) bool {
	if w == "" {
		return false
	}
	if e.lex.abbrev[strings.ToLower(w)] {
		return true
	}

	r, size := utf8.DecodeRuneInString(w)
	if size == len(w) && unicode.IsUpper(r) {
		return true
	}

	// dotted abbreviations: letters separated by single dots, "U.S", "e.g"
	if strings.Contains(w, ".") {
		for _, part := range strings.Split(w, ".") {
			if utf8.RuneCountInString(part) != 1 {
				return false
			}
		}
		return true
	}

	return false
}
