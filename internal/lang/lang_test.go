package lang

import (
	"testing"

	"github.com/stretchr/testify/require"

	"hlkit/internal/grammar"
)

func testRegistry() *Registry {
	return NewRegistry(
		grammar.Grammar{Name: "Shell", FileMap: grammar.FileMap{
			Extensions:   []string{"sh", "bash"},
			Filenames:    []string{".bashrc", "PKGBUILD"},
			Interpreters: []string{"sh", "bash", "zsh"},
		}},
		grammar.Grammar{Name: "Python", FileMap: grammar.FileMap{
			Extensions:   []string{"py", ".pyw"},
			Interpreters: []string{"python"},
		}},
		grammar.Grammar{Name: "Archive", FileMap: grammar.FileMap{Extensions: []string{"tar.gz"}}},
		grammar.Grammar{Name: "ZSH", FileMap: grammar.FileMap{
			Extensions:   []string{"zsh", "SH"},
			Interpreters: []string{"zsh"},
		}},
	)
}

func TestForPath(t *testing.T) {
	r := testRegistry()

	tests := []struct {
		path string
		want string
		kind MatchKind
	}{
		{"/home/u/.bashrc", "Shell", ByFilename},
		{"PKGBUILD", "Shell", ByFilename},
		{"run.sh", "Shell", ByExtension},
		{"RUN.SH", "Shell", ByExtension},
		{"tool.pyw", "Python", ByExtension},
		{"x.tar.gz", "Archive", ByExtension},
		{"conf.zsh", "ZSH", ByExtension},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			g, kind, ok := r.ForPath(tc.path)
			require.True(t, ok)
			require.Equal(t, tc.want, g.Name)
			require.Equal(t, tc.kind, kind)
		})
	}

	for _, path := range []string{"Makefile", ".profile", "file.gz", "noext"} {
		_, _, ok := r.ForPath(path)
		require.False(t, ok, path)
	}
}

func TestConflicts(t *testing.T) {
	r := testRegistry()
	require.ElementsMatch(t, []Conflict{
		{Kind: ByExtension, Key: "sh", Winner: "Shell", Ignored: "ZSH"},
		{Kind: ByInterpreter, Key: "zsh", Winner: "Shell", Ignored: "ZSH"},
	}, r.Conflicts())
}

func TestInterpreter(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"#!/bin/sh", "sh", true},
		{"#! /usr/bin/python3 -u", "python3", true},
		{"#!/usr/bin/env python", "python", true},
		{"#!/usr/bin/env -S LC_ALL=C bash -e", "bash", true},
		{"#!/usr/bin/env", "", false},
		{"#!", "", false},
		{"print('hi')", "", false},
	}
	for _, tc := range tests {
		got, ok := Interpreter(tc.line)
		require.Equal(t, tc.ok, ok, tc.line)
		require.Equal(t, tc.want, got, tc.line)
	}
}

func TestDetect(t *testing.T) {
	r := testRegistry()

	require.Equal(t, "Python", r.Detect("script", "#!/usr/bin/env python3.12").Name)
	require.Equal(t, "Shell", r.Detect("script", "#!/bin/zsh").Name)
	require.Equal(t, "Shell", r.Detect("a.sh", "#!/usr/bin/python").Name)
	require.Equal(t, grammar.None.Name, r.Detect("notes", "hello").Name)
}

func TestNames(t *testing.T) {
	r := testRegistry()
	require.Equal(t, []string{"Archive", "Python", "Shell", "ZSH"}, r.Names())
	require.Equal(t, 4, r.Len())

	g, ok := r.Get("Python")
	require.True(t, ok)
	require.Equal(t, []string{"py", ".pyw"}, g.FileMap.Extensions)
}
