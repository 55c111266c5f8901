package rule

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// split groups toks in sentences. A sentence ends after a terminator token
// (and the closing quotes or brackets right after it) when the text ends or
// the next token looks like a sentence start. A blank line always ends a
// sentence.
func split(text string, toks []token) [][]token {
	var sentences [][]token

	start := 0
	for i := 0; i < len(toks); i++ {
		if i > start && blankLine(text[toks[i-1].end:toks[i].start]) {
			sentences = append(sentences, toks[start:i])
			start = i
		}

		if !isTerminator(toks[i].text) {
			continue
		}

		j := i + 1
		for j < len(toks) && toks[j].start == toks[j-1].end && isClosing(toks[j].text) {
			j++
		}

		if j == len(toks) || startsSentence(toks[j].text) {
			sentences = append(sentences, toks[start:j])
			start = j
			i = j - 1
		}
	}

	if start < len(toks) {
		sentences = append(sentences, toks[start:])
	}

	return sentences
}

func isTerminator(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if r != '.' && r != '!' && r != '?' && r != '…' {
			return false
		}
	}
	return true
}

func isClosing(w string) bool {
	r, size := utf8.DecodeRuneInString(w)
	return size == len(w) && strings.ContainsRune(closingPunct, r)
}

func startsSentence(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsUpper(r) || unicode.IsDigit(r) || strings.ContainsRune(openingPunct, r)
}

// blankLine reports whether the white space gap between two tokens contains
// an empty line.
func blankLine(gap string) bool {
	return strings.Count(gap, "\n") >= 2
}
