package query

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/c-bata/go-prompt"
	"go.uber.org/zap"

	"github.com/revelaction/segparse/match"
	"github.com/revelaction/segparse/render"
	"github.com/revelaction/segparse/search"
	"github.com/revelaction/segparse/storage"
)

// defaultMaxMatches limits the matches printed per query.
const defaultMaxMatches = 2000

var posSuggestions = []prompt.Suggest{
	{Text: "ADJ", Description: "adjective"},
	{Text: "ADP", Description: "adposition"},
	{Text: "ADV", Description: "adverb"},
	{Text: "AUX", Description: "auxiliary"},
	{Text: "CCONJ", Description: "coordinating conjunction"},
	{Text: "DET", Description: "determiner"},
	{Text: "NOUN", Description: "noun"},
	{Text: "NUM", Description: "numeral"},
	{Text: "PART", Description: "particle"},
	{Text: "PRON", Description: "pronoun"},
	{Text: "PROPN", Description: "proper noun"},
	{Text: "PUNCT", Description: "punctuation"},
	{Text: "SCONJ", Description: "subordinating conjunction"},
	{Text: "VERB", Description: "verb"},
}

// Handler runs the interactive query prompt. Each line is a match
// expression searched in the whole repository.
type Handler struct {
	DocRepo  storage.DocReader
	Renderer *render.Renderer
	Logger   *zap.Logger

	// EntityTypes are offered for completion after "@".
	EntityTypes []string

	MaxMatches int

	out io.Writer
}

func NewHandler(dr storage.DocReader, r *render.Renderer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		DocRepo:    dr,
		Renderer:   r,
		Logger:     logger,
		MaxMatches: defaultMaxMatches,
		out:        os.Stdout,
	}
}

func (h *Handler) Run() error {
	fmt.Fprintln(h.out, "🔑 Ctrl+X: Toggle prefix, Ctrl+F: next Format, 🔧 quit")

	history := []string{}

	for {
		in := prompt.Input("      🔖 ", h.completer,
			prompt.OptionTitle("segparse query"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionMaxSuggestion(12),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionHistory(history),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlF,
				Fn: func(buf *prompt.Buffer) {
					h.Renderer.NextFormat()
					fmt.Fprintln(h.out, "Format set to: "+h.Renderer.Format)
				}}),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlX,
				Fn: func(buf *prompt.Buffer) {
					h.Renderer.NextPrefix()
					fmt.Fprintf(h.out, "Prefix set to %t\n", h.Renderer.HasPrefix)
				}}),
		)

		in = strings.TrimSpace(in)
		if in == "quit" {
			return nil
		}
		if in == "" {
			continue
		}

		history = append(history, in)

		if err := h.Query(in); err != nil {
			fmt.Fprintf(h.out, "❌ %s\n", err)
		}
	}
}

// Query searches the expression of the input line and renders the matches.
func (h *Handler) Query(in string) error {
	expr, err := match.Parse(strings.Fields(in))
	if err != nil {
		return err
	}

	if err := h.loadDocNames(); err != nil {
		return err
	}

	var results []*match.SentenceMatch
	err = search.New(h.DocRepo).All(expr, h.MaxMatches, func(sm *match.SentenceMatch) error {
		results = append(results, sm)
		return nil
	})
	if err != nil {
		return err
	}

	h.Logger.Debug("query", zap.String("expr", expr.String()), zap.Int("matches", len(results)))
	return h.Renderer.Match(results)
}

func (h *Handler) loadDocNames() error {
	docs, err := h.DocRepo.List("")
	if err != nil {
		return fmt.Errorf("failed to list docs: %w", err)
	}
	for _, d := range docs {
		h.Renderer.AddDocName(d.Id, d.Title)
	}
	return nil
}

func (h *Handler) completer(in prompt.Document) []prompt.Suggest {
	word := in.GetWordBeforeCursor()
	if word == "" {
		return nil
	}

	if strings.HasPrefix(word, "@") {
		var s []prompt.Suggest
		for _, typ := range h.EntityTypes {
			s = append(s, prompt.Suggest{Text: "@" + typ, Description: "entity"})
		}
		return prompt.FilterHasPrefix(s, word, false)
	}

	return prompt.FilterHasPrefix(posSuggestions, word, false)
}
