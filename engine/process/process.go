// Package process runs an external parsing engine (a spaCy or stanza wrapper
// script, for example) as a long lived child process and talks to it in JSON
// lines over its standard input and output.
//
// Each request is one line:
//
//	{"text": "Erlotinib is a common treatment."}
//
// and each response is one line, either
//
//	{"sentences": [{"tokens": [{"text": "Erlotinib", "lemma": "erlotinib", "pos": "PROPN", "start": 0, "end": 9}, ...],
//	                "dependencies": [[-1, 3, "ROOT"], [3, 0, "nsubj"], ...]}]}
//
// or
//
//	{"error": "reason"}
package process

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/revelaction/segparse/engine"
	sent "github.com/revelaction/segparse/sentence"
)

// ErrClosed is returned by Parse after Close or after the process died.
var ErrClosed = errors.New("engine process is closed")

// Config describes the engine process.
type Config struct {
	// Command is the program and its arguments.
	Command []string
	// Env is the environment of the process. Nil means the current one.
	Env []string
	// RuneOffsets tells that the process reports token offsets in code
	// points instead of bytes.
	RuneOffsets bool
	Logger      *zap.Logger
}

// Engine is an engine.Engine backed by a child process. Calls to Parse are
// serialised.
type Engine struct {
	cfg    Config
	logger *zap.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	stderr *tailBuffer
	closed bool
}

var _ engine.Engine = (*Engine)(nil)

type request struct {
	Text string `json:"text"`
}

type response struct {
	Sentences []wireSentence `json:"sentences"`
	Error     string         `json:"error,omitempty"`
}

type wireSentence struct {
	Tokens       []wireToken `json:"tokens"`
	Dependencies []wireEdge  `json:"dependencies"`
}

type wireToken struct {
	Text  string `json:"text"`
	Lemma string `json:"lemma"`
	Pos   string `json:"pos"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// wireEdge is a [governor, dependent, label] triple.
type wireEdge sent.Dependency

func (w *wireEdge) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("dependency: want 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &w.Governor); err != nil {
		return fmt.Errorf("dependency governor: %w", err)
	}
	if err := json.Unmarshal(raw[1], &w.Dependent); err != nil {
		return fmt.Errorf("dependency dependent: %w", err)
	}
	if err := json.Unmarshal(raw[2], &w.Label); err != nil {
		return fmt.Errorf("dependency label: %w", err)
	}
	return nil
}

// New starts the process. ctx bounds the life of the process.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("engine process: empty command")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Env = cfg.Env

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr := &tailBuffer{max: 4096}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start engine process %q: %w", cfg.Command[0], err)
	}

	logger.Info("engine process started",
		zap.Strings("command", cfg.Command),
		zap.Int("pid", cmd.Process.Pid))

	return &Engine{
		cfg:    cfg,
		logger: logger,
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReaderSize(stdout, 1<<20),
		stderr: stderr,
	}, nil
}

// Parse sends text to the process and converts its answer. A canceled ctx
// kills the process; the Engine is unusable afterwards.
func (e *Engine) Parse(ctx context.Context, text string) ([]engine.Sentence, error) {
	if strings.TrimSpace(text) == "" {
		return nil, engine.ErrEmptyInput
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}

	line, err := json.Marshal(request{Text: text})
	if err != nil {
		return nil, err
	}
	line = append(line, '\n')

	type result struct {
		line []byte
		err  error
	}
	done := make(chan result, 1)

	go func() {
		if _, err := e.stdin.Write(line); err != nil {
			done <- result{err: err}
			return
		}
		b, err := e.stdout.ReadBytes('\n')
		done <- result{line: b, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		e.kill()
		return nil, ctx.Err()
	}

	if res.err != nil {
		e.kill()
		return nil, fmt.Errorf("engine process: %w: %s", res.err, e.stderr.String())
	}

	var resp response
	if err := json.Unmarshal(res.line, &resp); err != nil {
		return nil, fmt.Errorf("engine process: bad response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("engine process: %s", resp.Error)
	}

	return e.convert(text, resp.Sentences)
}

func (e *Engine) convert(text string, in []wireSentence) ([]engine.Sentence, error) {
	var byteAt []int
	if e.cfg.RuneOffsets {
		byteAt = RuneToByte(text)
	}

	out := make([]engine.Sentence, len(in))
	for si, ws := range in {
		tokens := make([]sent.Token, len(ws.Tokens))
		for ti, wt := range ws.Tokens {
			start, end := wt.Start, wt.End
			if byteAt != nil {
				if start < 0 || end < start || end >= len(byteAt) {
					return nil, fmt.Errorf("engine process: sentence %d token %d: offsets [%d,%d) out of range", si, ti, start, end)
				}
				start, end = byteAt[start], byteAt[end]
			}

			tokens[ti] = sent.Token{
				Index: ti,
				Text:  wt.Text,
				Lemma: wt.Lemma,
				Pos:   wt.Pos,
				Start: start,
				End:   end,
			}
		}

		deps := make([]sent.Dependency, len(ws.Dependencies))
		for di, d := range ws.Dependencies {
			dep := sent.Dependency(d)
			// some engines mark the root with its label only
			if strings.EqualFold(dep.Label, sent.RootLabel) {
				dep.Governor = sent.RootGovernor
				dep.Label = sent.RootLabel
			}
			deps[di] = dep
		}

		out[si] = engine.Sentence{Tokens: tokens, Dependencies: deps}
	}

	return out, nil
}

// RuneToByte returns the byte offset of every code point offset of text,
// including the end offset.
func RuneToByte(text string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	return append(offsets, len(text))
}

func (e *Engine) kill() {
	if e.closed {
		return
	}
	e.closed = true
	_ = e.cmd.Process.Kill()
	_ = e.cmd.Wait()
	e.logger.Warn("engine process killed", zap.Int("pid", e.cmd.Process.Pid))
}

// Close closes the process input and waits for it to exit.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	if err := e.stdin.Close(); err != nil {
		return err
	}
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("engine process: %w: %s", err, e.stderr.String())
	}

	e.logger.Info("engine process stopped", zap.Int("pid", e.cmd.Process.Pid))
	return nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf bytes.Buffer
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(p)
	t.buf.Write(p)
	if extra := t.buf.Len() - t.max; extra > 0 {
		t.buf.Next(extra)
	}
	return n, nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(t.buf.String())
}
