package rule

import (
	"bufio"
	"embed"
	"fmt"
	"path"
	"strings"
)

//go:embed lexicon/*.txt
var lexiconFiles embed.FS

type wordSet map[string]bool

type lexicon struct {
	det    wordSet
	pron   wordSet
	poss   wordSet
	adp    wordSet
	aux    wordSet
	cconj  wordSet
	sconj  wordSet
	part   wordSet
	adv    wordSet
	adj    wordSet
	num    wordSet
	verb   wordSet
	abbrev wordSet

	// irregular form -> lemma
	verbForms map[string]string
	nounForms map[string]string
}

var beForms = wordSet{
	"be": true, "am": true, "is": true, "are": true,
	"was": true, "were": true, "been": true, "being": true,
}

func loadLexicon() (*lexicon, error) {
	lex := &lexicon{}

	sets := []struct {
		name string
		dst  *wordSet
	}{
		{"det.txt", &lex.det},
		{"pron.txt", &lex.pron},
		{"poss.txt", &lex.poss},
		{"adp.txt", &lex.adp},
		{"auxverb.txt", &lex.aux},
		{"cconj.txt", &lex.cconj},
		{"sconj.txt", &lex.sconj},
		{"part.txt", &lex.part},
		{"adv.txt", &lex.adv},
		{"adj.txt", &lex.adj},
		{"num.txt", &lex.num},
		{"verb.txt", &lex.verb},
		{"abbrev.txt", &lex.abbrev},
	}

	for _, s := range sets {
		lines, err := readLexicon(s.name)
		if err != nil {
			return nil, err
		}
		ws := make(wordSet, len(lines))
		for _, l := range lines {
			ws[l] = true
		}
		*s.dst = ws
	}

	for be := range beForms {
		lex.aux[be] = true
	}

	var err error
	if lex.verbForms, err = readPairs("irregular_verbs.txt"); err != nil {
		return nil, err
	}
	if lex.nounForms, err = readPairs("irregular_nouns.txt"); err != nil {
		return nil, err
	}

	return lex, nil
}

// readLexicon returns the non-empty, non-comment lines of an embedded
// lexicon file.
func readLexicon(name string) ([]string, error) {
	f, err := lexiconFiles.Open(path.Join("lexicon", name))
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon %s: %w", name, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lexicon %s: %w", name, err)
	}
	return lines, nil
}

func readPairs(name string) (map[string]string, error) {
	lines, err := readLexicon(name)
	if err != nil {
		return nil, err
	}

	pairs := make(map[string]string, len(lines))
	for _, l := range lines {
		fields := strings.Fields(l)
		if len(fields) != 2 {
			return nil, fmt.Errorf("lexicon %s: bad line %q", name, l)
		}
		pairs[fields[0]] = fields[1]
	}
	return pairs, nil
}
