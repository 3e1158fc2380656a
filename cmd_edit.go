package main

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"
)

func newEditCmd(a *app) *cobra.Command {
	var grammarName string
	cmd := &cobra.Command{
		Use:   "edit FILE",
		Short: "Edit FILE with live highlighting and an outline pane",
		Long: `edit opens FILE in a small terminal editor. Highlights and the outline
are kept current in the background while you type. Grammar files changed
in the --grammars directory are reloaded without restarting. A missing
FILE is created on the first save.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"tui": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.openDocument(args[0], grammarName)
			if errors.Is(err, fs.ErrNotExist) {
				doc.Path, doc.Override = args[0], grammarName
				doc.Grammar, err = a.engine().Grammar(grammarName, doc.Path, "")
			}
			if err != nil {
				return err
			}
			return runEditor(cmd.Context(), a, doc)
		},
	}
	cmd.Flags().StringVarP(&grammarName, "grammar", "g", "", "grammar name (default: detect from the file)")
	return cmd
}
