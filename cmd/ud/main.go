// Command ud is the CLI tool for the treebank toolkit.
// It provides commands for running block pipelines, converting between
// formats, validating trees, and querying corpora.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/k-sap/udgo/core/block"
	"github.com/k-sap/udgo/core/query"
	"github.com/k-sap/udgo/core/sqlite"
	"github.com/k-sap/udgo/core/ud"
	"github.com/k-sap/udgo/internal/blocks"
	"github.com/k-sap/udgo/internal/formats"
	"github.com/k-sap/udgo/internal/logging"
	"github.com/k-sap/udgo/internal/store"

	// Import the block registry so every built-in block registers itself.
	_ "github.com/k-sap/udgo/internal/blocks/all"
	// Import format handlers so they register with the dispatcher.
	_ "github.com/k-sap/udgo/internal/formats/conllu"
	_ "github.com/k-sap/udgo/internal/formats/sentences"
)

const version = "0.1.0"

// CLI defines the command-line interface for ud.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" help:"Log output format (text, json)"`

	// Command groups (noun-first organization)
	Process  ProcessCmd  `cmd:"" help:"Run a block pipeline over a document"`
	Convert  ConvertCmd  `cmd:"" help:"Convert a document between formats"`
	Validate ValidateCmd `cmd:"" help:"Check structural invariants of a document"`
	Grep     GrepCmd     `cmd:"" help:"Print sentences with nodes matching a selector"`
	Stat     StatCmd     `cmd:"" help:"Print document statistics"`
	Blocks   BlocksCmd   `cmd:"" help:"List registered blocks"`
	Store    StoreGroup  `cmd:"" help:"Corpus database operations"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// StoreGroup contains corpus database operations.
type StoreGroup struct {
	Ingest StoreIngestCmd `cmd:"" help:"Ingest a document into the corpus database"`
	List   StoreListCmd   `cmd:"" help:"List documents in the corpus database"`
	Export StoreExportCmd `cmd:"" help:"Export a stored document by id prefix"`
	Search StoreSearchCmd `cmd:"" help:"Search stored words by form or lemma"`
}

func initLogging() {
	level := logging.LevelWarn
	switch CLI.LogLevel {
	case "debug":
		level = logging.LevelDebug
	case "info":
		level = logging.LevelInfo
	case "error":
		level = logging.LevelError
	}
	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)
}

// parseBlockSpec parses one pipeline step of the form
// "util.Normalize" or "util.SplitSentence:sent_id=s4,word_id=3".
func parseBlockSpec(spec string) (block.Block, error) {
	name, rest, hasParams := strings.Cut(spec, ":")
	params := map[string]string{}
	if hasParams {
		for _, pair := range strings.Split(rest, ",") {
			key, value, ok := strings.Cut(pair, "=")
			if !ok || key == "" {
				return nil, fmt.Errorf("block %s: malformed parameter %q (want key=value)", name, pair)
			}
			params[key] = value
		}
	}
	return blocks.New(name, params)
}

func buildPipeline(specs []string) (*block.Pipeline, error) {
	p := block.NewPipeline()
	for _, spec := range specs {
		b, err := parseBlockSpec(spec)
		if err != nil {
			return nil, err
		}
		p.Append(b)
	}
	return p, nil
}

// writeOutput writes doc to the --out path, or to stdout in CoNLL-U when
// no path is given.
func writeOutput(doc *ud.Document, out string) error {
	if out == "" {
		return formats.Get("conllu").Write(os.Stdout, doc)
	}
	return formats.WriteFile(out, doc)
}

// ProcessCmd runs a pipeline of blocks over a document.
type ProcessCmd struct {
	Path   string   `arg:"" help:"Input document" type:"existingfile"`
	Blocks []string `arg:"" help:"Pipeline steps, each name[:key=value,...]"`
	Out    string   `name:"out" short:"o" help:"Output path (stdout if omitted)" type:"path"`
}

func (c *ProcessCmd) Run() error {
	doc, err := formats.ReadFile(c.Path)
	if err != nil {
		return err
	}
	pipeline, err := buildPipeline(c.Blocks)
	if err != nil {
		return err
	}
	if err := pipeline.Run(context.Background(), doc); err != nil {
		return err
	}
	return writeOutput(doc, c.Out)
}

// ConvertCmd converts a document between the registered formats.
type ConvertCmd struct {
	Path string `arg:"" help:"Input document" type:"existingfile"`
	Out  string `name:"out" short:"o" required:"" help:"Output path; the extension selects the format" type:"path"`
}

func (c *ConvertCmd) Run() error {
	doc, err := formats.ReadFile(c.Path)
	if err != nil {
		return err
	}
	return formats.WriteFile(c.Out, doc)
}

// ValidateCmd checks the structural invariants of every tree in a document.
type ValidateCmd struct {
	Paths []string `arg:"" help:"Documents to validate" type:"existingfile"`
}

func (c *ValidateCmd) Run() error {
	failed := 0
	for _, path := range c.Paths {
		doc, err := formats.ReadFile(path)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed++
			continue
		}
		errs := ud.ValidateDocument(doc)
		for _, e := range errs {
			fmt.Printf("%s: %v\n", path, e)
		}
		if len(errs) > 0 {
			failed++
		} else {
			fmt.Printf("%s: OK (%d sentences)\n", path, len(doc.Trees()))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(c.Paths))
	}
	return nil
}

// GrepCmd prints sentences containing nodes that match a selector
// expression such as `upos=VERB & feats.Tense=Past`.
type GrepCmd struct {
	Selector string `arg:"" help:"Selector expression"`
	Path     string `arg:"" help:"Input document" type:"existingfile"`
	Count    bool   `name:"count" short:"c" help:"Print only the number of matching nodes"`
}

func (c *GrepCmd) Run() error {
	sel, err := query.Parse(c.Selector)
	if err != nil {
		return err
	}
	doc, err := formats.ReadFile(c.Path)
	if err != nil {
		return err
	}
	matches := sel.FilterDocument(doc)
	if c.Count {
		fmt.Println(len(matches))
		return nil
	}
	seen := map[*ud.Root]bool{}
	for _, n := range matches {
		tree := n.Root()
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n", tree.SentID(), n.OrdString(), n.Form, n.UPos, n.Deprel)
		if !seen[tree] {
			seen[tree] = true
		}
	}
	fmt.Fprintf(os.Stderr, "%d nodes in %d sentences\n", len(matches), len(seen))
	return nil
}

// StatCmd prints per-document counts and tag distributions.
type StatCmd struct {
	Path string `arg:"" help:"Input document" type:"existingfile"`
}

func (c *StatCmd) Run() error {
	doc, err := formats.ReadFile(c.Path)
	if err != nil {
		return err
	}
	trees := doc.Trees()
	upos := map[string]int{}
	deprel := map[string]int{}
	words := 0
	for _, n := range doc.Nodes() {
		words++
		upos[n.UPos]++
		deprel[n.Deprel]++
	}
	fmt.Printf("bundles:   %d\n", doc.Len())
	fmt.Printf("sentences: %d\n", len(trees))
	fmt.Printf("words:     %d\n", words)
	fmt.Println("upos:")
	printCounts(upos)
	fmt.Println("deprel:")
	printCounts(deprel)
	return nil
}

func printCounts(counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		label := k
		if label == "" {
			label = "_"
		}
		fmt.Printf("  %-12s %d\n", label, counts[k])
	}
}

// BlocksCmd lists every block registered in the binary.
type BlocksCmd struct{}

func (c *BlocksCmd) Run() error {
	for _, name := range blocks.List() {
		fmt.Println(name)
	}
	return nil
}

// StoreIngestCmd ingests a document into the corpus database.
type StoreIngestCmd struct {
	DB   string `name:"db" required:"" help:"Corpus database path" type:"path"`
	Path string `arg:"" help:"Input document" type:"existingfile"`
	Name string `name:"name" help:"Stored name (defaults to the file name)"`
}

func (c *StoreIngestCmd) Run() error {
	doc, err := formats.ReadFile(c.Path)
	if err != nil {
		return err
	}
	s, err := store.Open(c.DB)
	if err != nil {
		return err
	}
	defer s.Close()
	name := c.Name
	if name == "" {
		name = c.Path
	}
	id, err := s.Ingest(context.Background(), doc, name)
	if err != nil {
		return err
	}
	fmt.Printf("Ingested: %s\n", name)
	fmt.Printf("  ID: %s\n", id)
	return nil
}

// StoreListCmd lists the documents in the corpus database.
type StoreListCmd struct {
	DB string `name:"db" required:"" help:"Corpus database path" type:"path"`
}

func (c *StoreListCmd) Run() error {
	s, err := store.OpenReadOnly(c.DB)
	if err != nil {
		return err
	}
	defer s.Close()
	infos, err := s.List(context.Background())
	if err != nil {
		return err
	}
	for _, info := range infos {
		fmt.Printf("%s  %6d sent  %8d words  %s  %s\n",
			info.ID[:12], info.Sentences, info.Words, info.CreatedAt, info.Name)
	}
	return nil
}

// StoreExportCmd writes a stored document back out by id prefix.
type StoreExportCmd struct {
	DB  string `name:"db" required:"" help:"Corpus database path" type:"path"`
	ID  string `arg:"" help:"Document id (unique prefix accepted)"`
	Out string `name:"out" short:"o" help:"Output path (stdout if omitted)" type:"path"`
}

func (c *StoreExportCmd) Run() error {
	s, err := store.OpenReadOnly(c.DB)
	if err != nil {
		return err
	}
	defer s.Close()
	doc, err := s.Load(context.Background(), c.ID)
	if err != nil {
		return err
	}
	return writeOutput(doc, c.Out)
}

// StoreSearchCmd searches stored words by form or lemma.
type StoreSearchCmd struct {
	DB    string `name:"db" required:"" help:"Corpus database path" type:"path"`
	Value string `arg:"" help:"Form or lemma to search for"`
	Lemma bool   `name:"lemma" help:"Match the lemma column instead of the form"`
}

func (c *StoreSearchCmd) Run() error {
	s, err := store.OpenReadOnly(c.DB)
	if err != nil {
		return err
	}
	defer s.Close()
	var hits []store.WordHit
	if c.Lemma {
		hits, err = s.SearchLemma(context.Background(), c.Value)
	} else {
		hits, err = s.SearchForm(context.Background(), c.Value)
	}
	if err != nil {
		return err
	}
	for _, h := range hits {
		fmt.Printf("%s\t%s\t%d\t%s\t%s\t%s\n", h.DocID[:12], h.SentID, h.Ord, h.Form, h.UPos, h.Text)
	}
	fmt.Fprintf(os.Stderr, "%d matches\n", len(hits))
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("ud version %s\n", version)
	info := sqlite.GetInfo()
	fmt.Printf("sqlite driver: %s (%s, %s)\n", info.DriverName, info.DriverType, info.Package)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("ud"),
		kong.Description("Universal Dependencies treebank toolkit"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	initLogging()
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
