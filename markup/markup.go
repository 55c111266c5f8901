// Package markup removes inline entity tags of the form
// <TYPE id="ID">content</TYPE> from a text and records where each tagged
// mention lies in the resulting plain text.
package markup

import (
	"fmt"
	"sort"
	"strings"
)

// Span is one tagged mention found by Strip.
type Span struct {
	Type string
	Id   string

	// byte range of the content in the plain text
	Start int
	End   int

	// byte range of the whole element, tags included, in the raw text
	RawStart int
	RawEnd   int

	Text string

	// Attrs holds the attributes of the opening tag other than id.
	Attrs map[string]string
}

// Result is the output of Strip.
type Result struct {
	Plain   string
	Spans   []Span
	Offsets OffsetMap
}

// MarkupError reports malformed markup at a byte offset of the raw text.
type MarkupError struct {
	Offset int
	Reason string
}

func (e *MarkupError) Error() string {
	return fmt.Sprintf("markup error at offset %d: %s", e.Offset, e.Reason)
}

// segment is a run of raw text copied verbatim into the plain text.
type segment struct {
	plain int
	raw   int
}

// OffsetMap maps plain text offsets back to raw text offsets.
type OffsetMap struct {
	segs []segment
}

// Raw returns the raw text offset of the plain text offset p. Offsets at a
// segment boundary map to the start of the following segment.
func (m OffsetMap) Raw(p int) int {
	if len(m.segs) == 0 {
		return p
	}
	// last segment starting at or before p
	i := sort.Search(len(m.segs), func(i int) bool { return m.segs[i].plain > p }) - 1
	if i < 0 {
		i = 0
	}
	return m.segs[i].raw + (p - m.segs[i].plain)
}

type openTag struct {
	name     string
	id       string
	attrs    map[string]string
	rawStart int
	start    int
}

type stripper struct {
	raw   string
	pos   int
	plain strings.Builder
	segs  []segment
	spans []Span
	open  *openTag
}

// Strip removes the entity tags of raw. Text outside tags, and tag content,
// is copied byte for byte. A '<' that does not start a tag is kept as text.
func Strip(raw string) (Result, error) {
	s := &stripper{raw: raw}
	s.plain.Grow(len(raw))

	textStart := 0
	for s.pos < len(raw) {
		idx := strings.IndexByte(raw[s.pos:], '<')
		if idx < 0 {
			break
		}
		lt := s.pos + idx
		if !isTagStart(raw, lt) {
			s.pos = lt + 1
			continue
		}

		s.copyText(textStart, lt)
		if err := s.tag(lt); err != nil {
			return Result{}, err
		}
		textStart = s.pos
	}
	s.copyText(textStart, len(raw))

	if s.open != nil {
		return Result{}, &MarkupError{
			Offset: s.open.rawStart,
			Reason: fmt.Sprintf("unterminated element <%s>", s.open.name),
		}
	}

	return Result{
		Plain:   s.plain.String(),
		Spans:   s.spans,
		Offsets: OffsetMap{segs: s.segs},
	}, nil
}

func (s *stripper) copyText(from, to int) {
	if from >= to {
		return
	}
	s.segs = append(s.segs, segment{plain: s.plain.Len(), raw: from})
	s.plain.WriteString(s.raw[from:to])
}

// tag consumes the tag starting at the '<' in lt.
func (s *stripper) tag(lt int) error {
	if s.raw[lt+1] == '/' {
		return s.closeTag(lt)
	}
	return s.openTag(lt)
}

func (s *stripper) openTag(lt int) error {
	p := lt + 1
	name, p := scanName(s.raw, p)

	if s.open != nil {
		return &MarkupError{Offset: lt, Reason: fmt.Sprintf("nested tag <%s> inside <%s>", name, s.open.name)}
	}

	attrs := map[string]string{}
	for {
		p = skipSpace(s.raw, p)
		if p >= len(s.raw) {
			return &MarkupError{Offset: lt, Reason: fmt.Sprintf("unterminated tag <%s", name)}
		}

		c := s.raw[p]
		if c == '>' {
			p++
			break
		}
		if c == '/' {
			return &MarkupError{Offset: lt, Reason: fmt.Sprintf("self-closing tag <%s/> has no content", name)}
		}

		key, next := scanName(s.raw, p)
		if key == "" {
			return &MarkupError{Offset: p, Reason: fmt.Sprintf("unexpected %q in tag <%s>", c, name)}
		}
		p = skipSpace(s.raw, next)
		if p >= len(s.raw) || s.raw[p] != '=' {
			return &MarkupError{Offset: p, Reason: fmt.Sprintf("attribute %q has no value", key)}
		}
		p = skipSpace(s.raw, p+1)
		if p >= len(s.raw) || (s.raw[p] != '"' && s.raw[p] != '\'') {
			return &MarkupError{Offset: p, Reason: fmt.Sprintf("attribute %q value is not quoted", key)}
		}
		quote := s.raw[p]
		end := strings.IndexByte(s.raw[p+1:], quote)
		if end < 0 {
			return &MarkupError{Offset: p, Reason: fmt.Sprintf("unterminated value of attribute %q", key)}
		}
		attrs[key] = s.raw[p+1 : p+1+end]
		p = p + 1 + end + 1
	}

	id, ok := attrs["id"]
	if !ok {
		return &MarkupError{Offset: lt, Reason: fmt.Sprintf("tag <%s> has no id attribute", name)}
	}
	delete(attrs, "id")
	if len(attrs) == 0 {
		attrs = nil
	}

	s.open = &openTag{
		name:     name,
		id:       id,
		attrs:    attrs,
		rawStart: lt,
		start:    s.plain.Len(),
	}
	s.pos = p
	return nil
}

func (s *stripper) closeTag(lt int) error {
	name, p := scanName(s.raw, lt+2)
	p = skipSpace(s.raw, p)
	if p >= len(s.raw) || s.raw[p] != '>' {
		return &MarkupError{Offset: lt, Reason: fmt.Sprintf("unterminated closing tag </%s", name)}
	}
	p++

	if s.open == nil {
		return &MarkupError{Offset: lt, Reason: fmt.Sprintf("closing tag </%s> without opening tag", name)}
	}
	if s.open.name != name {
		return &MarkupError{Offset: lt, Reason: fmt.Sprintf("closing tag </%s> does not match <%s>", name, s.open.name)}
	}

	end := s.plain.Len()
	s.spans = append(s.spans, Span{
		Type:     s.open.name,
		Id:       s.open.id,
		Start:    s.open.start,
		End:      end,
		RawStart: s.open.rawStart,
		RawEnd:   p,
		Text:     s.plain.String()[s.open.start:end],
		Attrs:    s.open.attrs,
	})
	s.open = nil
	s.pos = p
	return nil
}

// isTagStart reports whether the '<' at i opens or closes a tag.
func isTagStart(raw string, i int) bool {
	if i+1 >= len(raw) {
		return false
	}
	c := raw[i+1]
	if c == '/' {
		return i+2 < len(raw) && isNameStart(raw[i+2])
	}
	return isNameStart(c)
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '-' || c == '.' || c == ':'
}

func scanName(raw string, p int) (string, int) {
	start := p
	if p < len(raw) && isNameStart(raw[p]) {
		p++
		for p < len(raw) && isNameChar(raw[p]) {
			p++
		}
	}
	return raw[start:p], p
}

func skipSpace(raw string, p int) int {
	for p < len(raw) {
		switch raw[p] {
		case ' ', '\t', '\n', '\r':
			p++
		default:
			return p
		}
	}
	return p
}
