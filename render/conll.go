package render

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	sent "github.com/revelaction/segparse/sentence"
)

const (
	conllFieldSeparator = "\t"
	conllEmpty          = "_"
)

// conllRow is a token line of CoNLL-U.
type conllRow struct {
	ID     int
	Form   string
	Lemma  string
	UPos   string
	Head   string
	DepRel string
	Misc   []string
}

func (r conllRow) String() string {
	misc := conllEmpty
	if len(r.Misc) > 0 {
		misc = strings.Join(r.Misc, "|")
	}

	fields := []string{
		strconv.Itoa(r.ID),
		field(r.Form),
		field(r.Lemma),
		field(r.UPos),
		conllEmpty, // XPOS
		conllEmpty, // FEATS
		field(r.Head),
		field(r.DepRel),
		conllEmpty, // DEPS
		misc,
	}
	return strings.Join(fields, conllFieldSeparator)
}

func field(s string) string {
	if s == "" {
		return conllEmpty
	}
	return s
}

// WriteCoNLLU writes the sentences of the doc in CoNLL-U. Token ids start at
// 1 and the ROOT governor is 0. Entities go to the MISC column as
// Entity=type:id.
func WriteCoNLLU(w io.Writer, doc sent.Doc) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# newdoc id = %d\n", doc.Id)
	if doc.Title != "" {
		fmt.Fprintf(bw, "# title = %s\n", oneLine(doc.Title))
	}

	for _, s := range doc.Sentences {
		fmt.Fprintf(bw, "# sent_id = %d-%d\n", doc.Id, s.Id)
		fmt.Fprintf(bw, "# text = %s\n", sentenceText(doc.Plain, s))

		for _, row := range conllRows(s) {
			bw.WriteString(row.String())
			bw.WriteByte('\n')
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

func conllRows(s sent.Sentence) []conllRow {
	entities := map[int][]string{}
	for _, el := range s.Entities {
		for _, i := range el.Indices {
			entities[i] = append(entities[i], el.Entity.Type+":"+el.Entity.SourceId)
		}
	}

	rows := make([]conllRow, len(s.Tokens))
	for i, t := range s.Tokens {
		row := conllRow{ID: t.Index + 1, Form: t.Text, Lemma: t.Lemma, UPos: t.Pos}

		if gov, label, ok := s.Head(t.Index); ok {
			row.Head = strconv.Itoa(gov + 1)
			row.DepRel = label
			if gov == sent.RootGovernor {
				row.DepRel = "root"
			}
		}

		if ents, ok := entities[t.Index]; ok {
			row.Misc = append(row.Misc, "Entity="+strings.Join(ents, ","))
		}

		if i+1 < len(s.Tokens) && s.Tokens[i+1].Start == t.End && t.End > 0 {
			row.Misc = append(row.Misc, "SpaceAfter=No")
		}

		rows[i] = row
	}
	return rows
}

// sentenceText returns the plain text of the sentence, or the joined words
// if the offsets do not fit the plain text.
func sentenceText(plain string, s sent.Sentence) string {
	if s.Start < s.End && s.End <= len(plain) {
		return oneLine(plain[s.Start:s.End])
	}
	return s.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
