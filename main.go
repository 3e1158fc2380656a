package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := newApp(out, errOut)

	root := &cobra.Command{
		Use:   "hlkit",
		Short: "Incremental syntax highlighting and outlines",
		Long: `hlkit highlights documents and extracts their outline with declarative
grammars. Grammars are TOML or YAML files; a set of them is bundled and
more are read from the directory named by --grammars.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.tui = cmd.Annotations["tui"] == "true"
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(context.WithoutCancel(cmd.Context()))
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: ./hlkit.yaml or $XDG_CONFIG_HOME/hlkit/hlkit.yaml)")
	flags.String("grammars", "", "directory of grammar files")
	flags.String("theme", "", "color theme (for example: nord, dracula, monokai, github, solarized-dark)")
	flags.String("backend", "", "highlight backend: regex or treesitter")
	flags.String("escape", "", "escape rule for strings and comments: backslash, double or none")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.Bool("trace", false, "record highlight and outline passes with OpenTelemetry")

	for key, flag := range map[string]string{
		"grammars":        "grammars",
		"theme":           "theme",
		"backend":         "backend",
		"escape":          "escape",
		"log.level":       "log-level",
		"log.file":        "log-file",
		"tracing.enabled": "trace",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newHighlightCmd(a),
		newOutlineCmd(a),
		newLintCmd(a),
		newInfoCmd(a),
		newSymbolsCmd(a),
		newEditCmd(a),
		newMCPCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hlkit: %v\n", err)
		os.Exit(1)
	}
}
