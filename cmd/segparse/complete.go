package main

import (
	"fmt"
	"strings"

	"github.com/revelaction/segparse/render"
)

var commands = []string{
	"parse",
	"doc",
	"sentence",
	"stat",
	"find",
	"export",
	"labels",
	"repl",
	"version",
	"bash",
	"help",
}

// completeCommand answers the requests of the bash completion script.
func completeCommand(args []string, ui UI) error {
	for _, c := range getCompletions(args) {
		_, _ = fmt.Fprintln(ui.Out, c)
	}
	return nil
}

// getCompletions returns the candidates for the last word of args, where
// args[0] is the binary name. The "--" separator of the script is skipped.
func getCompletions(args []string) []string {
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		return nil
	}

	cursor := len(args) - 1
	last := args[cursor]

	// skip global flags before the command
	commandIndex := 1
	for commandIndex < cursor && strings.HasPrefix(args[commandIndex], "-") {
		commandIndex++
		if args[commandIndex-1] == "-c" || args[commandIndex-1] == "-config" {
			commandIndex++
		}
	}

	if cursor == commandIndex {
		return withPrefix(commands, last)
	}
	if cursor < commandIndex {
		return nil
	}

	switch prev := args[cursor-1]; {
	case args[commandIndex] == "find" || args[commandIndex] == "repl":
		if prev == "-format" || prev == "-f" {
			return withPrefix(render.SupportedFormats(), last)
		}
	case args[commandIndex] == "export":
		if prev == "-format" || prev == "-f" {
			return withPrefix([]string{exportJSON, exportCoNLL}, last)
		}
	case args[commandIndex] == "help" && cursor == commandIndex+1:
		return withPrefix(commands, last)
	}

	return nil
}

func withPrefix(words []string, prefix string) []string {
	var out []string
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, w)
		}
	}
	return out
}
