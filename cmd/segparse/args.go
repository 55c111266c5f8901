package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/revelaction/segparse/render"
)

type GlobalOptions struct {
	ConfigPath string
}

// Option structs for subcommands that have flags
type ParseOptions struct {
	StoragePath string
	Labels      []string
	Title       string
	Print       bool
	Merge       bool
	Workers     int
	Quiet       bool
}

type DocOptions struct {
	StoragePath string
	Label       string
	Start       int
	Count       int
	Entities    bool
}

type SentenceOptions struct {
	StoragePath string
}

type StatOptions struct {
	StoragePath string
	JSON        bool
}

type FindOptions struct {
	StoragePath string
	Doc         *int // nil = not set
	Max         int
	Format      string
	NoColor     bool
	NoPrefix    bool
	JSON        bool
}

type ExportOptions struct {
	StoragePath string
	Format      string
	Output      string
}

type LabelsOptions struct {
	StoragePath string
}

type ReplOptions struct {
	StoragePath string
	NoColor     bool
	Format      string
}

const (
	exportJSON  = "json"
	exportCoNLL = "conll"
)

// stringSliceFlag implements flag.Value for multi-value strings
type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ", ")
}

func (s *stringSliceFlag) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*s = append(*s, v)
		}
	}
	return nil
}

// enumFlag implements flag.Value for restricted strings
type enumFlag struct {
	allowed []string
	value   *string
}

func (e *enumFlag) String() string {
	if e.value == nil {
		return ""
	}
	return *e.value
}

func (e *enumFlag) Set(value string) error {
	for _, a := range e.allowed {
		if a == value {
			*e.value = value
			return nil
		}
	}
	return fmt.Errorf("allowed values are %s", strings.Join(e.allowed, ", "))
}

// optionalInt implements flag.Value for optional integer flags
type optionalInt struct {
	value *int
}

func (o *optionalInt) String() string {
	if o.value == nil {
		return ""
	}
	return strconv.Itoa(*o.value)
}

func (o *optionalInt) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	o.value = &v
	return nil
}

func storageFlag(fs *flag.FlagSet, p *string) {
	fs.StringVar(p, "storage", "", "Path to the doc store: SQLite file (.db) or JSON directory. Overrides storage.path")
	fs.StringVar(p, "s", "", "alias for -storage")
}

// parseFlags parses args, printing the usage on -help (to Out) or on a flag
// error (to Err).
func parseFlags(fs *flag.FlagSet, args []string, ui UI) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return err
		}
		fs.SetOutput(ui.Err)
		fs.Usage()
		return err
	}
	return nil
}

func usageError(fs *flag.FlagSet, ui UI, msg string) error {
	fs.SetOutput(ui.Err)
	fs.Usage()
	return errors.New(msg)
}

func parseDocId(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid doc id: %q", s)
	}
	return id, nil
}

func parseMainArgs(args []string, ui UI) (GlobalOptions, string, []string, error) {
	fs := flag.NewFlagSet("segparse", flag.ContinueOnError)
	setupUsage(fs)

	var opts GlobalOptions
	fs.StringVar(&opts.ConfigPath, "config", os.Getenv("SEGPARSE_CONFIG"), "Path to the YAML configuration file")
	fs.StringVar(&opts.ConfigPath, "c", os.Getenv("SEGPARSE_CONFIG"), "alias for -config")

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, "", nil, err
	}

	if fs.NArg() == 0 {
		return opts, "", nil, usageError(fs, ui, "no command provided")
	}

	return opts, fs.Arg(0), fs.Args()[1:], nil
}

func parseParseArgs(args []string, ui UI) (ParseOptions, []string, error) {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)

	var opts ParseOptions
	storageFlag(fs, &opts.StoragePath)

	labels := (*stringSliceFlag)(&opts.Labels)
	fs.Var(labels, "label", "Label of the parsed docs (repeatable or comma separated)")
	fs.Var(labels, "l", "alias for -label")

	fs.StringVar(&opts.Title, "title", "", "Title of the doc (one file only). Defaults to the file name")
	fs.BoolVar(&opts.Print, "print", false, "Print the parsed docs as JSON instead of storing them")
	fs.BoolVar(&opts.Merge, "merge", false, "Merge mentions with the same entity type and id in a sentence")
	fs.IntVar(&opts.Workers, "workers", 0, "Number of docs parsed in parallel. Overrides workers")
	fs.IntVar(&opts.Workers, "w", 0, "alias for -workers")
	fs.BoolVar(&opts.Quiet, "quiet", false, "Do not show the progress bar")
	fs.BoolVar(&opts.Quiet, "q", false, "alias for -quiet")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s parse [options] <file> ...\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Parse text files with inline entity markup and store the docs.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, nil, err
	}

	if fs.NArg() == 0 {
		return opts, nil, usageError(fs, ui, "parse command needs at least one file")
	}

	if opts.Title != "" && fs.NArg() > 1 {
		return opts, nil, errors.New("-title can only be used with one file")
	}

	return opts, fs.Args(), nil
}

func parseDocArgs(args []string, ui UI) (DocOptions, string, error) {
	fs := flag.NewFlagSet("doc", flag.ContinueOnError)

	var opts DocOptions
	storageFlag(fs, &opts.StoragePath)
	fs.StringVar(&opts.Label, "label", "", "List only docs with a label containing this string")
	fs.StringVar(&opts.Label, "l", "", "alias for -label")
	fs.IntVar(&opts.Start, "start", 0, "Index of the first sentence to show")
	fs.IntVar(&opts.Count, "n", -1, "Number of sentences to show (-1 for all)")
	fs.BoolVar(&opts.Entities, "entities", false, "Show the entities below each sentence")
	fs.BoolVar(&opts.Entities, "e", false, "alias for -entities")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s doc [options] [doc_id|file.json]\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  List the stored docs, or show the sentences of one doc.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, "", err
	}

	if fs.NArg() > 1 {
		return opts, "", usageError(fs, ui, "doc command accepts at most one argument")
	}

	return opts, fs.Arg(0), nil
}

func parseSentenceArgs(args []string, ui UI) (SentenceOptions, int, int, error) {
	fs := flag.NewFlagSet("sentence", flag.ContinueOnError)

	var opts SentenceOptions
	storageFlag(fs, &opts.StoragePath)

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s sentence [options] <doc_id> <sentence_id>\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Show a sentence with its entities and its token table.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, 0, 0, err
	}

	if fs.NArg() != 2 {
		return opts, 0, 0, usageError(fs, ui, "sentence command needs exactly two arguments: <doc_id> <sentence_id>")
	}

	docId, err := parseDocId(fs.Arg(0))
	if err != nil {
		return opts, 0, 0, err
	}

	sentId, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		return opts, 0, 0, fmt.Errorf("invalid sentence id: %q", fs.Arg(1))
	}

	return opts, docId, sentId, nil
}

func parseStatArgs(args []string, ui UI) (StatOptions, []int, error) {
	fs := flag.NewFlagSet("stat", flag.ContinueOnError)

	var opts StatOptions
	storageFlag(fs, &opts.StoragePath)
	fs.BoolVar(&opts.JSON, "json", false, "Print the stats as JSON")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s stat [options] [doc_id] ...\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Show statistics for the given docs, or for all docs.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, nil, err
	}

	var ids []int
	for _, arg := range fs.Args() {
		id, err := parseDocId(arg)
		if err != nil {
			return opts, nil, err
		}
		ids = append(ids, id)
	}

	return opts, ids, nil
}

func parseFindArgs(args []string, ui UI) (FindOptions, []string, error) {
	fs := flag.NewFlagSet("find", flag.ContinueOnError)

	var opts FindOptions
	storageFlag(fs, &opts.StoragePath)

	var docOpt optionalInt
	fs.Var(&docOpt, "doc", "Limit the search to the doc with this id")
	fs.Var(&docOpt, "d", "alias for -doc")

	fs.IntVar(&opts.Max, "max", 0, "Maximum number of matched sentences (0 for all)")
	fs.IntVar(&opts.Max, "n", 0, "alias for -max")

	opts.Format = render.DefaultFormat
	formatFlag := &enumFlag{allowed: render.SupportedFormats(), value: &opts.Format}
	fs.Var(formatFlag, "format", "Show whole sentence (all), surrounding of matched words (part), matched lemmas (lemma) or aggregated lemmas (aggr)")
	fs.Var(formatFlag, "f", "alias for -format")

	fs.BoolVar(&opts.NoColor, "no-color", false, "Show matched sentences without color")
	fs.BoolVar(&opts.NoPrefix, "no-prefix", false, "Show matched sentences without the doc prefix")
	fs.BoolVar(&opts.NoPrefix, "x", false, "alias for -no-prefix")
	fs.BoolVar(&opts.JSON, "json", false, "Print the matches as JSON")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s find [options] <expr item> ...\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Find the sentences matching an expression of lemmas (take|get, !not),\n")
		_, _ = fmt.Fprintf(fs.Output(), "  POS tags (NOUN), entities (@drug, @drug:1) and distances (aspirin 3 VERB).\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, nil, err
	}

	opts.Doc = docOpt.value

	if fs.NArg() < 1 {
		return opts, nil, usageError(fs, ui, "find command needs at least one expression item")
	}

	return opts, fs.Args(), nil
}

func parseExportArgs(args []string, ui UI) (ExportOptions, int, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)

	var opts ExportOptions
	storageFlag(fs, &opts.StoragePath)

	opts.Format = exportJSON
	formatFlag := &enumFlag{allowed: []string{exportJSON, exportCoNLL}, value: &opts.Format}
	fs.Var(formatFlag, "format", "Output format: json or conll (CoNLL-U)")
	fs.Var(formatFlag, "f", "alias for -format")
	fs.StringVar(&opts.Output, "o", "", "Output file (default stdout)")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s export [options] <doc_id>\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Export a stored doc as JSON or CoNLL-U.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, 0, err
	}

	if fs.NArg() != 1 {
		return opts, 0, usageError(fs, ui, "export command needs exactly one argument: <doc_id>")
	}

	id, err := parseDocId(fs.Arg(0))
	return opts, id, err
}

func parseLabelsArgs(args []string, ui UI) (LabelsOptions, string, error) {
	fs := flag.NewFlagSet("labels", flag.ContinueOnError)

	var opts LabelsOptions
	storageFlag(fs, &opts.StoragePath)

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s labels [options] [pattern]\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  List the doc labels, optionally only those containing pattern.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, "", err
	}

	if fs.NArg() > 1 {
		return opts, "", usageError(fs, ui, "labels command accepts at most one argument")
	}

	return opts, fs.Arg(0), nil
}

func parseReplArgs(args []string, ui UI) (ReplOptions, error) {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)

	var opts ReplOptions
	storageFlag(fs, &opts.StoragePath)
	fs.BoolVar(&opts.NoColor, "no-color", false, "Show matched sentences without color")

	opts.Format = render.DefaultFormat
	formatFlag := &enumFlag{allowed: render.SupportedFormats(), value: &opts.Format}
	fs.Var(formatFlag, "format", "Initial format of the matches")
	fs.Var(formatFlag, "f", "alias for -format")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s repl [options]\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Enter the interactive query mode.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, err
	}

	if fs.NArg() > 0 {
		return opts, usageError(fs, ui, "repl command accepts no arguments")
	}

	return opts, nil
}

func setupUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: %s [-config file] command [command options] [arguments...]\n", os.Args[0])
		_, _ = fmt.Fprintf(output, "\nDescription:\n")
		_, _ = fmt.Fprintf(output, "  Parse text with inline entity markup into sentences, tokens and entities\n")
		_, _ = fmt.Fprintf(output, "\nCommands:\n")
		_, _ = fmt.Fprintf(output, "  parse     Parse and store text files.\n")
		_, _ = fmt.Fprintf(output, "  doc       List docs or show the sentences of a doc.\n")
		_, _ = fmt.Fprintf(output, "  sentence  Show a sentence with its entities and tokens.\n")
		_, _ = fmt.Fprintf(output, "  stat      Show statistics for docs.\n")
		_, _ = fmt.Fprintf(output, "  find      Find sentences matching an expression.\n")
		_, _ = fmt.Fprintf(output, "  export    Export a doc as JSON or CoNLL-U.\n")
		_, _ = fmt.Fprintf(output, "  labels    List doc labels.\n")
		_, _ = fmt.Fprintf(output, "  repl      Enter interactive query mode.\n")
		_, _ = fmt.Fprintf(output, "  version   Show the version.\n")
		_, _ = fmt.Fprintf(output, "  bash      Output bash completion script.\n")
		_, _ = fmt.Fprintf(output, "  help      Show help for a command.\n")
	}
}
