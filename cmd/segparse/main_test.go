package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMainArgs(t *testing.T) {
	var buf bytes.Buffer
	ui := UI{Out: &buf, Err: &buf}

	global, cmd, args, err := parseMainArgs([]string{"-c", "my.yaml", "find", "-n", "3", "@drug"}, ui)
	require.NoError(t, err)
	assert.Equal(t, "my.yaml", global.ConfigPath)
	assert.Equal(t, "find", cmd)
	assert.Equal(t, []string{"-n", "3", "@drug"}, args)

	_, _, _, err = parseMainArgs(nil, ui)
	assert.EqualError(t, err, "no command provided")
}

func TestParseFindArgs(t *testing.T) {
	var buf bytes.Buffer
	ui := UI{Out: &buf, Err: &buf}

	opts, expr, err := parseFindArgs([]string{"-d", "4", "-f", "lemma", "-x", "aspirin", "2", "VERB"}, ui)
	require.NoError(t, err)
	require.NotNil(t, opts.Doc)
	assert.Equal(t, 4, *opts.Doc)
	assert.Equal(t, "lemma", opts.Format)
	assert.True(t, opts.NoPrefix)
	assert.Equal(t, []string{"aspirin", "2", "VERB"}, expr)

	_, _, err = parseFindArgs([]string{"-f", "tree", "aspirin"}, ui)
	assert.Error(t, err)

	_, _, err = parseFindArgs(nil, ui)
	assert.Error(t, err)
}

func TestParseParseArgs(t *testing.T) {
	var buf bytes.Buffer
	ui := UI{Out: &buf, Err: &buf}

	opts, files, err := parseParseArgs([]string{"-l", "onco,lung", "-label", "2024", "-merge", "a.txt", "b.txt"}, ui)
	require.NoError(t, err)
	assert.Equal(t, []string{"onco", "lung", "2024"}, opts.Labels)
	assert.True(t, opts.Merge)
	assert.Equal(t, []string{"a.txt", "b.txt"}, files)

	_, _, err = parseParseArgs([]string{"-title", "x", "a.txt", "b.txt"}, ui)
	assert.Error(t, err)
}

func TestParseSentenceArgs(t *testing.T) {
	var buf bytes.Buffer
	ui := UI{Out: &buf, Err: &buf}

	_, docId, sentId, err := parseSentenceArgs([]string{"3", "7"}, ui)
	require.NoError(t, err)
	assert.Equal(t, 3, docId)
	assert.Equal(t, 7, sentId)

	_, _, _, err = parseSentenceArgs([]string{"-1", "7"}, ui)
	assert.Error(t, err)

	_, _, _, err = parseSentenceArgs([]string{"3"}, ui)
	assert.Error(t, err)
}

func TestHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	ui := UI{Out: &out, Err: &errOut}

	err := run([]string{"find", "-help"}, ui)
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "find [options]")
	assert.Empty(t, errOut.String())
}

func TestGetCompletions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"command", []string{"segparse", "s"}, []string{"sentence", "stat"}},
		{"separator", []string{"--", "segparse", "e"}, []string{"export"}},
		{"after config", []string{"segparse", "-c", "x.yaml", "re"}, []string{"repl"}},
		{"find format", []string{"segparse", "find", "-f", "a"}, []string{"all", "aggr"}},
		{"export format", []string{"segparse", "export", "-format", "c"}, []string{"conll"}},
		{"help", []string{"segparse", "help", "pa"}, []string{"parse"}},
		{"no candidates", []string{"segparse", "find", "asp"}, nil},
		{"empty", []string{"segparse"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getCompletions(tt.args))
		})
	}
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"version"}, UI{Out: &out, Err: &out}))
	assert.True(t, strings.HasPrefix(out.String(), "segparse version "))
}

func TestUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"frobnicate"}, UI{Out: &out, Err: &out})
	assert.EqualError(t, err, "unknown command: frobnicate")
}

// workspace writes a config for the rule engine with a directory store and
// one text file.
func workspace(t *testing.T) (cfgPath, textPath string) {
	t.Helper()
	dir := t.TempDir()

	cfgPath = filepath.Join(dir, "segparse.yaml")
	cfg := "engine:\n  kind: rule\nstorage:\n  path: " + filepath.Join(dir, "docs") + "\nrender:\n  color: false\nworkers: 2\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	textPath = filepath.Join(dir, "notes.txt")
	text := `<drug id="1">Aspirin</drug> is a treatment for <disease id="2">headache</disease>. Rest helps too.`
	require.NoError(t, os.WriteFile(textPath, []byte(text), 0o644))

	return cfgPath, textPath
}

func TestEndToEnd(t *testing.T) {
	cfgPath, textPath := workspace(t)

	exec := func(args ...string) (string, string, error) {
		var out, errOut bytes.Buffer
		err := run(append([]string{"-config", cfgPath}, args...), UI{Out: &out, Err: &errOut})
		return out.String(), errOut.String(), err
	}

	out, _, err := exec("parse", "-q", "-l", "onco", textPath)
	require.NoError(t, err)
	assert.Equal(t, "📖 0 notes (2 sentences)\n", out)

	// same content again
	out, errOut, err := exec("parse", "-q", textPath)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "skipped")

	out, _, err = exec("doc")
	require.NoError(t, err)
	assert.Equal(t, "📖 0 notes [onco]\n", out)

	out, _, err = exec("doc", "-e", "-n", "1", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "✍  0 Aspirin")
	assert.Contains(t, out, `drug:1 "Aspirin" [0]`)
	assert.NotContains(t, out, "Rest")

	out, _, err = exec("labels")
	require.NoError(t, err)
	assert.Equal(t, "onco\n", out)

	out, _, err = exec("find", "-json", "@disease")
	require.NoError(t, err)
	var matches []struct {
		Sentence struct {
			Id    int `json:"id"`
			DocId int `json:"doc_id"`
		} `json:"sentence"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].Sentence.Id)

	out, _, err = exec("find", "-x", "@drug:1")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, "Aspirin")

	out, _, err = exec("export", "-f", "conll", "0")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# newdoc id = 0\n# title = notes\n# sent_id = 0-0\n"))
	assert.Contains(t, out, "Entity=drug:1")

	out, _, err = exec("stat", "-json")
	require.NoError(t, err)
	var stats struct {
		NumDocs         int            `json:"num_docs"`
		NumSentences    int            `json:"num_sentences"`
		EntitiesPerType map[string]int `json:"entities_per_type"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 1, stats.NumDocs)
	assert.Equal(t, 2, stats.NumSentences)
	assert.Equal(t, map[string]int{"drug": 1, "disease": 1}, stats.EntitiesPerType)

	_, _, err = exec("sentence", "0", "5")
	assert.ErrorContains(t, err, "out of bounds")

	out, _, err = exec("sentence", "0", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "INDEX")
	assert.Contains(t, out, "Rest")

	_, _, err = exec("doc", "9")
	assert.Error(t, err)
}

func TestParsePrint(t *testing.T) {
	cfgPath, textPath := workspace(t)

	var out, errOut bytes.Buffer
	err := run([]string{"-config", cfgPath, "parse", "-q", "-print", textPath}, UI{Out: &out, Err: &errOut})
	require.NoError(t, err)

	var corpus struct {
		Docs []struct {
			Title string `json:"title"`
			Plain string `json:"plain"`
		} `json:"docs"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &corpus))
	require.Len(t, corpus.Docs, 1)
	assert.Equal(t, "Aspirin is a treatment for headache. Rest helps too.", corpus.Docs[0].Plain)
}

func TestParseMissingFile(t *testing.T) {
	cfgPath, _ := workspace(t)

	var out bytes.Buffer
	err := run([]string{"-config", cfgPath, "parse", "-q", "nope.txt"}, UI{Out: &out, Err: &out})
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, errors.Is(err, flag.ErrHelp))
}
