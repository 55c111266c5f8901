package rule

import (
	"strings"

	sent "github.com/revelaction/segparse/sentence"
)

// chunk is a base noun phrase [start,end) with its head token.
type chunk struct {
	start, end, head int
}

// depParser attaches every token of one tagged sentence to exactly one
// governor. Nominal tokens are grouped in chunks first; chunk heads are
// then attached to verbs or other heads, and the remaining function words
// to the content word they introduce.
type depParser struct {
	lex  *lexicon
	toks []token

	chunks  []chunk
	chunkOf []int // chunk index of each token or -1

	root    int
	copula  int
	heads   []int
	labels  []string
	hasObj  map[int]bool
	lowered []string
}

const unset = -2

func (e *Engine) depParse(toks []token) []sent.Dependency {
	p := &depParser{
		lex:     e.lex,
		toks:    toks,
		chunkOf: make([]int, len(toks)),
		heads:   make([]int, len(toks)),
		labels:  make([]string, len(toks)),
		hasObj:  map[int]bool{},
		lowered: make([]string, len(toks)),
		copula:  -1,
	}
	for i, t := range toks {
		p.heads[i] = unset
		p.chunkOf[i] = -1
		p.lowered[i] = strings.ToLower(t.text)
	}

	p.chunk()
	p.findRoot()
	p.attachChunks()
	p.attachRest()

	return p.dependencies()
}

func (p *depParser) pos(i int) string {
	if i < 0 || i >= len(p.toks) {
		return ""
	}
	return p.toks[i].pos
}

func (p *depParser) isPoss(i int) bool {
	return p.pos(i) == PRON && p.lex.poss[p.lowered[i]]
}

// inChunk reports whether token i can be part of a noun chunk.
func (p *depParser) inChunk(i int) bool {
	switch p.pos(i) {
	case DET, ADJ, NUM, NOUN, PROPN:
		return true
	case PRON:
		return p.isPoss(i)
	case ADV:
		return p.pos(i+1) == ADJ
	}
	return false
}

func (p *depParser) chunk() {
	n := len(p.toks)
	for i := 0; i < n; {
		if p.pos(i) == PRON && !p.isPoss(i) {
			p.addChunk(i, i+1)
			i++
			continue
		}
		if !p.inChunk(i) {
			i++
			continue
		}

		j := i + 1
		for j < n && p.inChunk(j) && p.pos(j) != DET && !p.isPoss(j) {
			j++
		}
		p.addChunk(i, j)
		i = j
	}
}

func (p *depParser) addChunk(start, end int) {
	// last nominal of the chunk, else its last token
	head := end - 1
	for k := end - 1; k >= start; k-- {
		if pos := p.pos(k); pos == NOUN || pos == PROPN || pos == NUM || pos == PRON {
			head = k
			break
		}
	}

	for k := start; k < end; k++ {
		p.chunkOf[k] = len(p.chunks)
	}
	p.chunks = append(p.chunks, chunk{start: start, end: end, head: head})
}

// findRoot picks the first main verb, else the complement of the first
// copula, else the first chunk head, else the first non punctuation token.
func (p *depParser) findRoot() {
	for i := range p.toks {
		if p.pos(i) == VERB {
			p.setRoot(i)
			return
		}
	}

	for i := range p.toks {
		if p.pos(i) != AUX || !beForms[p.lowered[i]] {
			continue
		}
		k := i + 1
		for p.pos(k) == PART || (p.pos(k) == ADV && p.chunkOf[k] < 0) {
			k++
		}
		if k < len(p.toks) && p.chunkOf[k] >= 0 && p.chunks[p.chunkOf[k]].start == k {
			p.copula = i
			p.setRoot(p.chunks[p.chunkOf[k]].head)
			return
		}
	}

	if len(p.chunks) > 0 {
		p.setRoot(p.chunks[0].head)
		return
	}

	for i := range p.toks {
		if p.pos(i) != PUNCT {
			p.setRoot(i)
			return
		}
	}
	p.setRoot(0)
}

func (p *depParser) setRoot(i int) {
	p.root = i
	p.heads[i] = sent.RootGovernor
	p.labels[i] = sent.RootLabel
}

func (p *depParser) attach(dep, gov int, label string) {
	if gov == dep || gov < 0 {
		gov = p.root
	}
	p.heads[dep] = gov
	p.labels[dep] = label
}

// prevVerb returns the nearest verb before i, or -1.
func (p *depParser) prevVerb(i int) int {
	for k := i - 1; k >= 0; k-- {
		if p.pos(k) == VERB {
			return k
		}
	}
	return -1
}

// nextVerb returns the nearest verb after i, or -1.
func (p *depParser) nextVerb(i int) int {
	for k := i + 1; k < len(p.toks); k++ {
		if p.pos(k) == VERB {
			return k
		}
	}
	return -1
}

// prevHead returns the head of the nearest chunk ending at or before i, or -1.
func (p *depParser) prevHead(i int) int {
	for c := len(p.chunks) - 1; c >= 0; c-- {
		if p.chunks[c].end <= i {
			return p.chunks[c].head
		}
	}
	return -1
}

// chunkStartingAt returns the head of the chunk starting at i, or -1.
func (p *depParser) chunkStartingAt(i int) int {
	if i < 0 || i >= len(p.toks) || p.chunkOf[i] < 0 {
		return -1
	}
	c := p.chunks[p.chunkOf[i]]
	if c.start != i {
		return -1
	}
	return c.head
}

func (p *depParser) attachChunks() {
	for _, c := range p.chunks {
		for k := c.start; k < c.end; k++ {
			if k == c.head {
				continue
			}
			switch p.pos(k) {
			case DET:
				p.attach(k, c.head, "det")
			case ADJ:
				p.attach(k, c.head, "amod")
			case NUM:
				p.attach(k, c.head, "nummod")
			case NOUN, PROPN:
				p.attach(k, c.head, "compound")
			case PRON:
				p.attach(k, c.head, "nmod:poss")
			case ADV:
				p.attach(k, k+1, "advmod")
			default:
				p.attach(k, c.head, "dep")
			}
		}

		if c.head == p.root {
			continue
		}
		p.attachChunkHead(c)
	}
}

func (p *depParser) attachChunkHead(c chunk) {
	h := c.head
	before := c.start - 1

	switch p.pos(before) {
	case ADP:
		if v := p.prevVerb(before); v >= 0 {
			p.attach(h, v, "obl")
		} else if ph := p.prevHead(before); ph >= 0 {
			p.attach(h, ph, "nmod")
		} else {
			p.attach(h, p.root, "obl")
		}
		return

	case CCONJ:
		if ph := p.prevHead(before); ph >= 0 {
			// attach to the first conjunct
			if p.labels[ph] == "conj" {
				ph = p.heads[ph]
			}
			p.attach(h, ph, "conj")
			return
		}
	}

	if h < p.root {
		p.attach(h, p.root, "nsubj")
		return
	}

	if next := c.end; p.pos(next) == VERB && next != p.root {
		p.attach(h, next, "nsubj")
		return
	}

	if v := p.prevVerb(c.start); v >= 0 && !p.hasObj[v] {
		p.hasObj[v] = true
		p.attach(h, v, "obj")
		return
	}

	p.attach(h, p.root, "dep")
}

// attachRest attaches the tokens outside of chunks.
func (p *depParser) attachRest() {
	for i := range p.toks {
		if p.heads[i] != unset {
			continue
		}

		switch p.pos(i) {
		case PUNCT, SYM:
			p.attach(i, p.root, "punct")

		case ADP:
			if h := p.chunkStartingAt(i + 1); h >= 0 {
				p.attach(i, h, "case")
			} else if p.pos(i+1) == VERB {
				p.attach(i, i+1, "mark")
			} else if v := p.prevVerb(i); v >= 0 {
				p.attach(i, v, "compound:prt")
			} else {
				p.attach(i, p.root, "dep")
			}

		case PART:
			switch {
			case p.lowered[i] == "to":
				p.attach(i, i+1, "mark")
			case strings.HasSuffix(p.lowered[i], "s"):
				// possessive 's
				p.attach(i, i-1, "case")
			default:
				if v := p.nextVerb(i); v >= 0 {
					p.attach(i, v, "advmod")
				} else {
					p.attach(i, p.root, "advmod")
				}
			}

		case AUX:
			if i == p.copula {
				p.attach(i, p.root, "cop")
			} else if v := p.nextVerb(i); v >= 0 {
				p.attach(i, v, "aux")
			} else {
				p.attach(i, p.root, "aux")
			}

		case VERB:
			p.attachVerb(i)

		case CCONJ:
			if h := p.chunkStartingAt(i + 1); h >= 0 {
				p.attach(i, h, "cc")
			} else if p.pos(i+1) == VERB {
				p.attach(i, i+1, "cc")
			} else {
				p.attach(i, p.root, "cc")
			}

		case SCONJ:
			if v := p.nextVerb(i); v >= 0 {
				p.attach(i, v, "mark")
			} else {
				p.attach(i, p.root, "mark")
			}

		case ADV:
			if p.pos(i+1) == VERB {
				p.attach(i, i+1, "advmod")
			} else if v := p.prevVerb(i); v >= 0 {
				p.attach(i, v, "advmod")
			} else {
				p.attach(i, p.root, "advmod")
			}

		default:
			p.attach(i, p.root, "dep")
		}
	}
}

// attachVerb attaches a verb other than the root to an earlier verb.
func (p *depParser) attachVerb(i int) {
	gov := p.prevVerb(i)
	if gov < 0 {
		gov = p.root
	}

	if p.pos(i-1) == PART && p.lowered[i-1] == "to" {
		p.attach(i, gov, "xcomp")
		return
	}

	// nearest conjunction since the governing verb
	for k := i - 1; k > gov && k >= 0; k-- {
		switch p.pos(k) {
		case SCONJ:
			label := "advcl"
			if p.lowered[k] == "that" || p.lowered[k] == "whether" {
				label = "ccomp"
			}
			p.attach(i, gov, label)
			return
		case CCONJ:
			p.attach(i, gov, "conj")
			return
		}
	}

	p.attach(i, gov, "dep")
}

// dependencies returns the ROOT edge first, then the other edges by
// dependent index.
func (p *depParser) dependencies() []sent.Dependency {
	deps := make([]sent.Dependency, 0, len(p.toks))
	deps = append(deps, sent.Dependency{Governor: sent.RootGovernor, Dependent: p.root, Label: sent.RootLabel})

	for i := range p.toks {
		if i == p.root {
			continue
		}
		gov := p.heads[i]
		if gov == unset {
			gov = p.root
			p.labels[i] = "dep"
		}
		deps = append(deps, sent.Dependency{Governor: gov, Dependent: i, Label: p.labels[i]})
	}

	return deps
}
