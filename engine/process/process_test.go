package process

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revelaction/segparse/engine"
)

// TestHelperProcess is not a real test: it is the engine process started by
// the other tests. It answers each request with one sentence of white space
// tokens, the first one being the root.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("SEGPARSE_HELPER_PROCESS") != "1" {
		return
	}
	runes := os.Getenv("SEGPARSE_HELPER_RUNES") == "1"

	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 1<<20), 1<<20)
	out := json.NewEncoder(os.Stdout)

	for in.Scan() {
		var req request
		if err := json.Unmarshal(in.Bytes(), &req); err != nil {
			_ = out.Encode(map[string]string{"error": err.Error()})
			continue
		}

		switch req.Text {
		case "fail":
			_ = out.Encode(map[string]string{"error": "boom"})
			continue
		case "crash":
			fmt.Fprintln(os.Stderr, "segmentation fault")
			os.Exit(3)
		}

		_ = out.Encode(helperParse(req.Text, runes))
	}
	os.Exit(0)
}

func helperParse(text string, runes bool) map[string]any {
	var tokens []map[string]any
	var deps [][]any

	pos, runePos := 0, 0
	for _, w := range strings.FieldsFunc(text, unicode.IsSpace) {
		i := strings.Index(text[pos:], w) + pos
		ri := runePos + utf8.RuneCountInString(text[pos:i])

		start, end := i, i+len(w)
		if runes {
			start, end = ri, ri+utf8.RuneCountInString(w)
		}

		n := len(tokens)
		tokens = append(tokens, map[string]any{
			"text": w, "lemma": strings.ToLower(w), "pos": "X", "start": start, "end": end,
		})
		if n == 0 {
			deps = append(deps, []any{0, 0, "root"})
		} else {
			deps = append(deps, []any{0, n, "dep"})
		}

		runePos = ri + utf8.RuneCountInString(w)
		pos = i + len(w)
	}

	return map[string]any{
		"sentences": []map[string]any{{"tokens": tokens, "dependencies": deps}},
	}
}

func newHelper(t *testing.T, runes bool) *Engine {
	t.Helper()

	env := append(os.Environ(), "SEGPARSE_HELPER_PROCESS=1")
	if runes {
		env = append(env, "SEGPARSE_HELPER_RUNES=1")
	}

	e, err := New(context.Background(), Config{
		Command:     []string{os.Args[0], "-test.run=^TestHelperProcess$"},
		Env:         env,
		RuneOffsets: runes,
	})
	require.NoError(t, err)
	return e
}

func TestParse(t *testing.T) {
	e := newHelper(t, false)
	defer e.Close()

	text := "Erlotinib treats NF-κB cancers"
	sentences, err := e.Parse(context.Background(), text)
	require.NoError(t, err)
	require.NoError(t, engine.Validate(text, sentences))
	require.Len(t, sentences, 1)

	s := sentences[0]
	require.Len(t, s.Tokens, 4)
	for i, tok := range s.Tokens {
		assert.Equal(t, i, tok.Index)
		assert.Equal(t, tok.Text, text[tok.Start:tok.End])
	}
	assert.Equal(t, "nf-κb", s.Tokens[2].Lemma)

	// the root label is normalised
	assert.True(t, s.Dependencies[0].IsRoot())
	assert.Equal(t, "ROOT", s.Dependencies[0].Label)
	assert.Equal(t, 0, s.Dependencies[0].Dependent)

	// the process is reused
	sentences, err = e.Parse(context.Background(), "second call")
	require.NoError(t, err)
	assert.Len(t, sentences[0].Tokens, 2)
}

func TestParseRuneOffsets(t *testing.T) {
	e := newHelper(t, true)
	defer e.Close()

	text := "NF-κB positive cancers"
	sentences, err := e.Parse(context.Background(), text)
	require.NoError(t, err)

	toks := sentences[0].Tokens
	require.Len(t, toks, 3)
	assert.Equal(t, 0, toks[0].Start)
	assert.Equal(t, 6, toks[0].End)
	assert.Equal(t, 7, toks[1].Start)
	for _, tok := range toks {
		assert.Equal(t, tok.Text, text[tok.Start:tok.End])
	}
}

func TestParseEngineError(t *testing.T) {
	e := newHelper(t, false)
	defer e.Close()

	_, err := e.Parse(context.Background(), "fail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	// an error answer keeps the process usable
	_, err = e.Parse(context.Background(), "still alive")
	assert.NoError(t, err)
}

func TestParseCrash(t *testing.T) {
	e := newHelper(t, false)

	_, err := e.Parse(context.Background(), "crash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "segmentation fault")

	_, err = e.Parse(context.Background(), "again")
	assert.True(t, errors.Is(err, ErrClosed))
	assert.NoError(t, e.Close())
}

func TestParseEmpty(t *testing.T) {
	e := newHelper(t, false)
	defer e.Close()

	_, err := e.Parse(context.Background(), " \n ")
	assert.ErrorIs(t, err, engine.ErrEmptyInput)
}

func TestNewEmptyCommand(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestRuneToByte(t *testing.T) {
	assert.Equal(t, []int{0, 1, 3, 4}, RuneToByte("aκb"))
	assert.Equal(t, []int{0}, RuneToByte(""))
}

func TestWireEdge(t *testing.T) {
	var e wireEdge
	require.NoError(t, json.Unmarshal([]byte(`[2, 0, "nsubj"]`), &e))
	assert.Equal(t, wireEdge{Governor: 2, Dependent: 0, Label: "nsubj"}, e)

	assert.Error(t, json.Unmarshal([]byte(`[2, 0]`), &e))
	assert.Error(t, json.Unmarshal([]byte(`["a", 0, "x"]`), &e))
}
