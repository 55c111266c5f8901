package render

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/revelaction/segparse/match"
	sent "github.com/revelaction/segparse/sentence"
)

const (
	partialOffset = 6
	DefaultFormat = "all"
)

var (
	Black   = "\033[1;30m"
	Red     = "\033[1;31m"
	Green   = "\033[1;32m"
	Yellow  = "\033[0;33m"
	Purple  = "\033[1;34m"
	Magenta = "\033[1;35m"
	Teal    = "\033[1;36m"
	Gray    = "\033[0;37m"
	White   = "\033[1;37m"
	Off     = "\033[0m"

	Yellow256 = "\033[1;38;5;130m"
	Grey256   = "\033[1;38;5;145m"
	Green256  = "\033[1;38;5;70m"
)

// entity types get the colors in order of first appearance
var entityPalette = []string{Teal, Yellow256, Magenta, Purple, Red, Green}

func SupportedFormats() []string {
	return []string{"all", "part", "lemma", "aggr"}
}

// MatchRenderer writes search results.
type MatchRenderer interface {
	Match(results []*match.SentenceMatch) error
}

var (
	_ MatchRenderer = (*Renderer)(nil)
	_ MatchRenderer = (*JSONRenderer)(nil)
)

// Renderer writes docs, sentences and matches as text for a terminal.
type Renderer struct {
	Out io.Writer

	HasColor bool

	HasPrefix bool

	// Format determines how matches are printed
	//
	// all: the whole sentence
	// part: the surroundings of the matched tokens
	// lemma: only the lemmas of the matched tokens
	// aggr: the matched lemma sequences with their number of sentences
	Format string

	DocNames map[int]string

	typeColors map[string]string
}

// NewRenderer returns a Renderer writing to w, or to stdout if w is nil.
func NewRenderer(w io.Writer) *Renderer {
	if w == nil {
		w = os.Stdout
	}
	return &Renderer{
		Out:        w,
		Format:     DefaultFormat,
		DocNames:   map[int]string{},
		typeColors: map[string]string{},
	}
}

func (r *Renderer) AddDocName(docId int, name string) {
	r.DocNames[docId] = name
}

// Doc writes a header line and then one line per sentence.
func (r *Renderer) Doc(doc sent.Doc) error {
	header := fmt.Sprintf("# %d %s", doc.Id, doc.Title)
	if len(doc.Labels) > 0 {
		header += " [" + strings.Join(doc.Labels, ", ") + "]"
	}
	if _, err := fmt.Fprintln(r.Out, strings.TrimRight(header, " ")); err != nil {
		return err
	}

	for _, s := range doc.Sentences {
		if err := r.Sentence(s, fmt.Sprintf("%3d ", s.Id)); err != nil {
			return err
		}
	}
	return nil
}

// Sentence writes the sentence text with the entity tokens highlighted.
func (r *Renderer) Sentence(s sent.Sentence, prefix string) error {
	_, err := fmt.Fprintf(r.Out, "%s%s\n", prefix, r.SentenceString(s))
	return err
}

// SentenceString returns the sentence text with the entity tokens colored
// by entity type.
func (r *Renderer) SentenceString(s sent.Sentence) string {
	colors := map[int]string{}
	for _, el := range s.Entities {
		c := r.typeColor(el.Entity.Type)
		for _, i := range el.Indices {
			if _, ok := colors[i]; !ok {
				colors[i] = c
			}
		}
	}
	return r.text(s.Tokens, colors)
}

// Entities writes one legend line per entity of the sentence.
func (r *Renderer) Entities(s sent.Sentence) error {
	for _, el := range s.Entities {
		ref := el.Entity.Type + ":" + el.Entity.SourceId
		if r.HasColor {
			ref = r.typeColor(el.Entity.Type) + ref + Off
		}

		indices := make([]string, len(el.Indices))
		for i, idx := range el.Indices {
			indices[i] = strconv.Itoa(idx)
		}

		_, err := fmt.Fprintf(r.Out, "    %s %q [%s]\n", ref, el.Entity.Text, strings.Join(indices, " "))
		if err != nil {
			return err
		}
	}
	return nil
}

// Tokens writes the token table of the sentence with its dependency heads.
func (r *Renderer) Tokens(s sent.Sentence) error {
	tw := tabwriter.NewWriter(r.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tTEXT\tLEMMA\tPOS\tHEAD\tLABEL\tENTITY")

	entities := map[int][]string{}
	for _, el := range s.Entities {
		for _, i := range el.Indices {
			entities[i] = append(entities[i], el.Entity.Type+":"+el.Entity.SourceId)
		}
	}

	for _, t := range s.Tokens {
		head, label := "-", "-"
		if gov, l, ok := s.Head(t.Index); ok {
			head = strconv.Itoa(gov)
			if gov == sent.RootGovernor {
				head = sent.RootLabel
			}
			label = l
		}

		pos := t.Pos
		if pos == "" {
			pos = "-"
		}

		ent := strings.Join(entities[t.Index], ",")
		if ent == "" {
			ent = "-"
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", t.Index, t.Text, t.Lemma, pos, head, label, ent)
	}

	return tw.Flush()
}

// Match writes the search results in the current Format.
func (r *Renderer) Match(results []*match.SentenceMatch) error {
	// if aggr format, we collect the aggr lemmas here
	aggregatedLemmas := map[string]int{}

	for _, sm := range results {
		var text string
		switch r.Format {
		case "part":
			text = r.syntagma(sm)
		case "lemma":
			text = lemmas(sm.Tokens())
		case "aggr":
			aggregatedLemmas[lemmas(sm.Tokens())]++
			continue
		default:
			text = r.text(sm.Sentence.Tokens, r.matchColors(sm))
		}

		if _, err := fmt.Fprintf(r.Out, "%s%s\n", r.buildPrefixDoc(sm), text); err != nil {
			return err
		}
	}

	if r.Format == "aggr" {
		return r.aggrLemmas(aggregatedLemmas)
	}
	return nil
}

func (r *Renderer) matchColors(sm *match.SentenceMatch) map[int]string {
	colors := map[int]string{}
	for _, i := range sm.Indices() {
		colors[i] = Green256
	}
	return colors
}

// text joins the tokens, keeping a space where the plain text had a gap.
// Newlines and runs of spaces become one space.
func (r *Renderer) text(tokens []sent.Token, colors map[int]string) string {
	var str strings.Builder
	for i, t := range tokens {
		if i > 0 {
			prev := tokens[i-1]
			// tokens without offsets get a space
			if t.Start != prev.End || t.Start == 0 {
				str.WriteString(" ")
			}
		}

		c, ok := colors[t.Index]
		if r.HasColor && ok {
			str.WriteString(c + t.Text + Off)
			continue
		}
		str.WriteString(t.Text)
	}
	return str.String()
}

// syntagma renders the matched tokens with partialOffset tokens around them.
func (r *Renderer) syntagma(sm *match.SentenceMatch) string {
	tokens := sm.Sentence.Tokens
	indices := sm.Indices()
	if len(indices) == 0 || len(tokens) == 0 {
		return r.text(tokens, nil)
	}

	first := indices[0] - partialOffset
	if first < 0 {
		first = 0
	}

	last := indices[len(indices)-1] + partialOffset
	if last > len(tokens)-1 {
		last = len(tokens) - 1
	}

	return r.text(tokens[first:last+1], r.matchColors(sm))
}

func lemmas(tokens []sent.Token) string {
	ls := make([]string, len(tokens))
	for i, t := range tokens {
		ls[i] = t.Lemma
	}
	return strings.Join(ls, " ")
}

func (r *Renderer) typeColor(entityType string) string {
	if c, ok := r.typeColors[entityType]; ok {
		return c
	}
	c := entityPalette[len(r.typeColors)%len(entityPalette)]
	r.typeColors[entityType] = c
	return c
}

func (r *Renderer) buildPrefixDoc(sm *match.SentenceMatch) string {
	if !r.HasPrefix {
		return ""
	}

	return fmt.Sprintf("[%s %2d %5d] ✍  ", r.title(sm.Sentence.DocId), sm.Sentence.DocId, sm.Sentence.Id)
}

func (r *Renderer) title(docId int) string {
	title := []rune(r.DocNames[docId])
	var part string
	if len(title) <= 20 {
		part = fmt.Sprintf("%-20s", string(title))
	} else {
		part = string(title[:20])
	}

	if !r.HasColor {
		return part
	}
	return Grey256 + part + Off
}

// NextFormat sets the Format to the next one of SupportedFormats.
func (r *Renderer) NextFormat() {
	supported := SupportedFormats()
	for i, format := range supported {
		if format == r.Format {
			r.Format = supported[(i+1)%len(supported)]
			return
		}
	}
	r.Format = DefaultFormat
}

func (r *Renderer) NextPrefix() {
	r.HasPrefix = !r.HasPrefix
}

func (r *Renderer) aggrLemmas(agls map[string]int) error {
	type aggr struct {
		numSent  int
		lemmaStr string
	}

	sl := make([]aggr, 0, len(agls))
	for lemmaStr, n := range agls {
		sl = append(sl, aggr{n, lemmaStr})
	}

	// by number of sentences, then shorter first
	sort.Slice(sl, func(i, j int) bool {
		if sl[i].numSent != sl[j].numSent {
			return sl[i].numSent > sl[j].numSent
		}
		if len(sl[i].lemmaStr) != len(sl[j].lemmaStr) {
			return len(sl[i].lemmaStr) < len(sl[j].lemmaStr)
		}
		return sl[i].lemmaStr < sl[j].lemmaStr
	})

	for _, s := range sl {
		var prefix string
		if r.HasPrefix {
			prefix = fmt.Sprintf("[%5d] ✍  ", s.numSent)
		}

		if _, err := fmt.Fprintf(r.Out, "%s%s\n", prefix, s.lemmaStr); err != nil {
			return err
		}
	}
	return nil
}
