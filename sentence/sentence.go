package sentence

import (
	"strings"
)

// Corpus is an ordered collection of Docs.
type Corpus struct {
	Docs []Doc `json:"docs"`
}

// NewCorpus returns a Corpus with one pending Doc per text.
func NewCorpus(texts ...string) *Corpus {
	c := &Corpus{}
	for _, t := range texts {
		c.Add("", t)
	}
	return c
}

// Add appends a pending (not yet parsed) Doc for the raw text.
func (c *Corpus) Add(title, text string) {
	c.Docs = append(c.Docs, Doc{
		Id:    len(c.Docs),
		Title: title,
		Text:  text,
	})
}

// Parsed reports whether any Doc of the corpus already carries sentences.
func (c *Corpus) Parsed() bool {
	for _, d := range c.Docs {
		if d.Sentences != nil {
			return true
		}
	}
	return false
}

type Doc struct {
	Id int `json:"id"`

	Title string `json:"title,omitempty"`

	Labels []string `json:"labels,omitempty"`

	// Text is the raw source text, inline entity markup included.
	Text string `json:"text"`

	// Plain is Text with the entity markup removed. All offsets of tokens,
	// sentences and entities refer to Plain.
	Plain string `json:"plain"`

	// Hash is the hex content hash of Text.
	Hash string `json:"hash,omitempty"`

	Sentences []Sentence `json:"sentences"`
}

// NumTokens returns the number of tokens over all sentences.
func (d Doc) NumTokens() int {
	n := 0
	for _, s := range d.Sentences {
		n += len(s.Tokens)
	}
	return n
}

// Sentence is a list of tokens with the entities and dependencies found in
// them.
type Sentence struct {
	// Id is the index of the sentence inside of the doc.
	Id    int `json:"id"`
	DocId int `json:"doc_id"`

	// byte range of the sentence in the doc plain text
	Start int `json:"start"`
	End   int `json:"end"`

	Tokens       []Token          `json:"tokens"`
	Entities     []EntityLocation `json:"entities"`
	Dependencies []Dependency     `json:"dependencies"`
}

// Words returns the surface text of the tokens.
func (s Sentence) Words() []string {
	words := make([]string, len(s.Tokens))
	for i, t := range s.Tokens {
		words[i] = t.Text
	}
	return words
}

// String joins the token words with single spaces.
func (s Sentence) String() string {
	return strings.Join(s.Words(), " ")
}

// Root returns the index of the token governed by ROOT, or -1 if the
// sentence has no ROOT edge.
func (s Sentence) Root() int {
	for _, d := range s.Dependencies {
		if d.IsRoot() {
			return d.Dependent
		}
	}
	return -1
}

// Head returns the governor index and label of the token at index i. ok is
// false if no edge has i as dependent.
func (s Sentence) Head(i int) (governor int, label string, ok bool) {
	for _, d := range s.Dependencies {
		if d.Dependent == i {
			return d.Governor, d.Label, true
		}
	}
	return 0, "", false
}

// Token represents a word of the sentence, with lemma and offsets.
type Token struct {
	// The index of the word in the sentence, starting at 0.
	Index int `json:"index"`

	// The unmodified word
	Text string `json:"text"`

	// The lemma of the word
	Lemma string `json:"lemma"`

	// Universal POS tag, if the engine provides one
	Pos string `json:"pos,omitempty"`

	// byte range of the token in the doc plain text
	Start int `json:"start"`
	End   int `json:"end"`
}

// Entity is one tagged mention.
type Entity struct {
	Type string `json:"type"`

	// SourceId is the id given in the markup. It is not unique: mentions of
	// the same referent share it.
	SourceId string `json:"source_id"`

	Text string `json:"text"`

	// byte range in the doc plain text
	Start int `json:"start"`
	End   int `json:"end"`

	// byte range of the whole element, tags included, in the raw text
	RawStart int `json:"raw_start"`
	RawEnd   int `json:"raw_end"`

	// Attrs are the attributes of the opening tag other than id.
	Attrs map[string]string `json:"attrs,omitempty"`
}

// EntityLocation pairs an Entity with the ascending indices of the sentence
// tokens it covers.
type EntityLocation struct {
	Entity  Entity `json:"entity"`
	Indices []int  `json:"indices"`
}

// RootGovernor is the governor of the ROOT dependency.
const RootGovernor = -1

// RootLabel is the label the built-in engines give the ROOT dependency.
const RootLabel = "ROOT"

// Dependency is a directed edge between two tokens of the same sentence.
type Dependency struct {
	Governor  int    `json:"governor"`
	Dependent int    `json:"dependent"`
	Label     string `json:"label"`
}

func (d Dependency) IsRoot() bool {
	return d.Governor == RootGovernor
}
