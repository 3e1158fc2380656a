package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"hlkit/internal/builtin"
	"hlkit/internal/engine"
	"hlkit/internal/grammar"
	"hlkit/internal/grammarcache"
	"hlkit/internal/lang"
	"hlkit/internal/logger"
	"hlkit/internal/nestable"
	"hlkit/internal/readfile"
	"hlkit/internal/syntaxctl"
	"hlkit/internal/tracing"
	"hlkit/internal/treesitter"
)

// app holds what every command shares once the configuration is read.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config

	out    io.Writer
	errOut io.Writer

	// tui is set for commands that own the terminal. Their logs go to the
	// configured file or nowhere.
	tui bool

	log    *zap.Logger
	tracer *tracing.Provider

	registry *lang.Registry
	cache    *grammarcache.Cache
	ts       *treesitter.Registry
}

type document struct {
	Path    string
	Text    string
	Grammar grammar.Grammar
	// Override is the grammar name given on the command line, if any.
	Override string
}

func newApp(out, errOut io.Writer) *app {
	return &app{v: viper.New(), out: out, errOut: errOut}
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := readConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := SetTheme(cfg.Theme); err != nil {
		return err
	}

	if a.tui && cfg.Log.File == "" {
		a.log = zap.NewNop()
	} else if a.log, err = logger.New(cfg.Log); err != nil {
		return err
	}
	a.tracer, err = tracing.NewProvider(ctx, cfg.Tracing)
	if err != nil {
		return err
	}

	escape, err := nestable.ParseEscapeRule(cfg.Escape)
	if err != nil {
		return fmt.Errorf("escape: %w", err)
	}

	a.ts = treesitter.DefaultRegistry()
	a.registry, err = a.loadRegistry()
	if err != nil {
		// Broken grammar files are reported but do not stop the others.
		a.log.Warn("load grammars", zap.Error(err))
	}
	for _, c := range a.registry.Conflicts() {
		a.log.Debug("grammar association ignored",
			zap.String("kind", string(c.Kind)),
			zap.String("key", c.Key),
			zap.String("winner", c.Winner),
			zap.String("ignored", c.Ignored))
	}

	compile := syntaxctl.RegexCompiler(a.log, escape)
	if strings.EqualFold(cfg.Backend, backendTreeSitter) {
		compile = treesitter.Compiler(a.ts, compile)
	}
	a.cache = grammarcache.New(compile, cfg.Cache.TTL, a.log)
	return nil
}

func (a *app) close(ctx context.Context) error {
	var err error
	if a.tracer != nil {
		err = a.tracer.Shutdown(ctx)
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return err
}

// loadRegistry registers the grammar directory first, then the bundled
// grammars, then the tree-sitter languages. An earlier grammar keeps its
// name and its file associations.
func (a *app) loadRegistry() (*lang.Registry, error) {
	var (
		all  []grammar.Grammar
		errs []error
	)
	if a.cfg.Grammars != "" {
		gs, err := grammar.LoadDir(a.cfg.Grammars)
		all = append(all, gs...)
		errs = append(errs, err)
	}
	gs, err := builtin.Grammars()
	all = append(all, gs...)
	errs = append(errs, err)
	all = append(all, a.ts.Grammars()...)

	reg := lang.NewRegistry()
	for _, g := range all {
		if _, ok := reg.Get(g.Name); ok {
			continue
		}
		reg.Add(g.Sanitized())
	}
	return reg, errors.Join(errs...)
}

// reload re-reads the grammar directory after names changed on disk and
// drops their compiled parsers.
func (a *app) reload(names []string) error {
	for _, name := range names {
		a.cache.Invalidate(name)
	}
	reg, err := a.loadRegistry()
	a.registry = reg
	return err
}

func (a *app) compiler() syntaxctl.Compiler { return a.cache.Compiler() }

func (a *app) controllerOptions() []syntaxctl.Option {
	return []syntaxctl.Option{
		syntaxctl.WithDelays(a.cfg.HighlightDelay, a.cfg.OutlineDelay),
		syntaxctl.WithBootstrapLength(a.cfg.BootstrapLength),
		syntaxctl.WithMinimumParseLength(a.cfg.MinimumParseLength),
		syntaxctl.WithPolicy(a.cfg.policy()),
		syntaxctl.WithStyle(categoryStyle),
		syntaxctl.WithCompiler(a.compiler()),
		syntaxctl.WithTracer(a.tracer.Tracer()),
	}
}

func (a *app) engine() *engine.Engine {
	return &engine.Engine{
		Registry: a.registry,
		Compile:  a.compiler(),
		Policy:   a.cfg.policy(),
		Tracer:   a.tracer.Tracer(),
	}
}

// openDocument reads path and picks its grammar: the one named by
// override, or the one detected from the path and first line.
func (a *app) openDocument(path, override string) (document, error) {
	text, err := readfile.ReadNormalized(path)
	if err != nil {
		return document{}, err
	}
	g, err := a.engine().Grammar(override, path, text)
	if err != nil {
		return document{}, err
	}
	return document{Path: path, Text: text, Grammar: g, Override: override}, nil
}

// loadGrammarArg resolves a lint or info argument: a grammar file, or the
// name of a registered grammar.
func (a *app) loadGrammarArg(arg string) (grammar.Grammar, error) {
	if grammar.IsGrammarFile(arg) {
		return grammar.Load(arg)
	}
	return a.engine().Grammar(arg, "", "")
}
