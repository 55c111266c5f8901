package rule

import (
	"strings"
)

// lemmatize sets the lemma of the tagged tokens. The lemma is never empty.
func (e *Engine) lemmatize(toks []token) {
	for i := range toks {
		toks[i].lemma = e.lemma(toks[i])
		if toks[i].lemma == "" {
			toks[i].lemma = toks[i].text
		}
	}
}

func (e *Engine) lemma(t token) string {
	switch t.pos {
	case PUNCT, SYM, NUM, PROPN:
		return t.text
	}

	lower := e.lower.String(t.text)

	switch t.pos {
	case VERB, AUX:
		if l, ok := e.lex.verbForms[lower]; ok {
			return l
		}
		if base, ok := e.verbBase(lower); ok {
			return base
		}
		return verbSuffix(lower)

	case NOUN:
		if l, ok := e.lex.nounForms[lower]; ok {
			return l
		}
		return nounSuffix(lower)
	}

	return lower
}

// verbBase returns the lexicon base form of an inflected verb form.
func (e *Engine) verbBase(w string) (string, bool) {
	for _, c := range verbCandidates(w) {
		if e.lex.verb[c] {
			return c, true
		}
	}
	return "", false
}

// verbCandidates returns the possible base forms of w, w itself first.
func verbCandidates(w string) []string {
	c := []string{w}

	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		c = append(c, w[:len(w)-3]+"y")
	case strings.HasSuffix(w, "es") && len(w) > 3:
		c = append(c, w[:len(w)-2], w[:len(w)-1])
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 2:
		c = append(c, w[:len(w)-1])
	case strings.HasSuffix(w, "ing") && len(w) > 4:
		stem := w[:len(w)-3]
		c = append(c, stem, stem+"e")
		if s, ok := undouble(stem); ok {
			c = append(c, s)
		}
	case strings.HasSuffix(w, "ied") && len(w) > 4:
		c = append(c, w[:len(w)-3]+"y")
	case strings.HasSuffix(w, "ed") && len(w) > 3:
		stem := w[:len(w)-2]
		c = append(c, stem, w[:len(w)-1])
		if s, ok := undouble(stem); ok {
			c = append(c, s)
		}
	}

	return c
}

// undouble strips a doubled final consonant: "stopp" -> "stop".
func undouble(s string) (string, bool) {
	n := len(s)
	if n < 3 || s[n-1] != s[n-2] || strings.IndexByte("aeiou", s[n-1]) >= 0 {
		return "", false
	}
	return s[:n-1], true
}

// verbSuffix strips inflection of a verb form unknown to the lexicon.
func verbSuffix(w string) string {
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ing") && len(w) > 5:
		return w[:len(w)-3]
	case strings.HasSuffix(w, "ied") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ed") && len(w) > 4:
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 3:
		return w[:len(w)-1]
	}
	return w
}

// nounSuffix strips the plural ending of a regular noun.
func nounSuffix(w string) string {
	switch {
	case len(w) <= 3:
		return w
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "sses"), hasAnySuffix(w, "xes", "ches", "shes", "zzes"):
		return w[:len(w)-2]
	case hasAnySuffix(w, "ss", "us", "is"):
		return w
	case strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	}
	return w
}
