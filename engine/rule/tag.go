package rule

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Universal POS tags produced by the tagger.
const (
	ADJ   = "ADJ"
	ADP   = "ADP"
	ADV   = "ADV"
	AUX   = "AUX"
	CCONJ = "CCONJ"
	DET   = "DET"
	NOUN  = "NOUN"
	NUM   = "NUM"
	PART  = "PART"
	PRON  = "PRON"
	PROPN = "PROPN"
	PUNCT = "PUNCT"
	SCONJ = "SCONJ"
	SYM   = "SYM"
	VERB  = "VERB"
)

// tag sets the pos of the tokens of one sentence: a lexical pass followed by
// contextual corrections.
func (e *Engine) tag(toks []token) {
	for i := range toks {
		toks[i].pos = e.lexicalTag(toks[i].text, i)
	}

	for i := range toks {
		lower := e.lower.String(toks[i].text)

		switch toks[i].pos {
		case ADP:
			// infinitival "to"
			if lower == "to" && i+1 < len(toks) && toks[i+1].pos == VERB {
				toks[i].pos = PART
			}

		case VERB:
			if i > 0 && isModifier(toks[i-1], e.lex) {
				if i+1 < len(toks) && (toks[i+1].pos == NOUN || toks[i+1].pos == PROPN) {
					toks[i].pos = ADJ
				} else {
					toks[i].pos = NOUN
				}
			}

		case AUX:
			// "has", "do" without a following verb are main verbs
			if beForms[lower] || !e.isPrimaryAux(lower) {
				continue
			}
			if !hasPos(toks[i+1:], VERB) {
				toks[i].pos = VERB
			}
		}
	}
}

func (e *Engine) isPrimaryAux(lower string) bool {
	switch lower {
	case "do", "does", "did", "has", "have", "had", "having":
		return true
	}
	return false
}

// isModifier reports whether t is a token after which a verb form is read as
// a noun or adjective.
func isModifier(t token, lex *lexicon) bool {
	switch t.pos {
	case DET, ADJ, NUM:
		return true
	case PRON:
		return lex.poss[strings.ToLower(t.text)]
	}
	return false
}

func hasPos(toks []token, pos string) bool {
	for _, t := range toks {
		if t.pos == pos {
			return true
		}
	}
	return false
}

// lexicalTag returns the tag of w from its form alone; i is the position of
// w in the sentence.
func (e *Engine) lexicalTag(w string, i int) string {
	if isPunct(w) {
		return PUNCT
	}
	if isSymbol(w) {
		return SYM
	}
	if isNumber(w) {
		return NUM
	}

	lower := e.lower.String(w)
	lex := e.lex

	switch {
	case lex.det[lower]:
		return DET
	case lex.poss[lower], lex.pron[lower]:
		return PRON
	case lex.adp[lower]:
		return ADP
	case lex.aux[lower]:
		return AUX
	case lex.cconj[lower]:
		return CCONJ
	case lex.sconj[lower]:
		return SCONJ
	case lex.part[lower]:
		return PART
	case lex.adv[lower]:
		return ADV
	case lex.adj[lower]:
		return ADJ
	case lex.num[lower]:
		return NUM
	}

	if _, ok := e.verbBase(lower); ok {
		return VERB
	}
	if _, ok := lex.verbForms[lower]; ok {
		return VERB
	}

	n := utf8.RuneCountInString(lower)
	switch {
	case n > 4 && strings.HasSuffix(lower, "ly"):
		return ADV
	case n > 5 && hasAnySuffix(lower, "ous", "ive", "ful", "less", "able", "ible", "ical"):
		return ADJ
	case n > 5 && strings.HasSuffix(lower, "ing"), n > 4 && strings.HasSuffix(lower, "ed"):
		return VERB
	}

	if upper := countUpper(w); upper > 1 || (upper == 1 && i > 0) {
		return PROPN
	}

	return NOUN
}

func hasAnySuffix(w string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(w, s) {
			return true
		}
	}
	return false
}

func countUpper(w string) int {
	n := 0
	for _, r := range w {
		if unicode.IsUpper(r) {
			n++
		}
	}
	return n
}

func isPunct(w string) bool {
	for _, r := range w {
		if !unicode.IsPunct(r) {
			return false
		}
	}
	return w != ""
}

func isSymbol(w string) bool {
	for _, r := range w {
		if !unicode.IsSymbol(r) && !unicode.IsPunct(r) {
			return false
		}
	}
	return w != ""
}

// isNumber reports whether w is a digit string, possibly with decimal or
// thousands separators and a trailing percent sign.
func isNumber(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	if !unicode.IsDigit(r) {
		return false
	}
	for _, r := range w {
		if !unicode.IsDigit(r) && r != '.' && r != ',' && r != '%' {
			return false
		}
	}
	return true
}
