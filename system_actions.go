package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// editorTemplates maps editor binaries to the arguments that jump to a
// location. Terminal editors take over the terminal until they exit.
var editorTemplates = map[string]struct {
	args     string
	terminal bool
}{
	"vi":    {`+{line} "{file}"`, true},
	"vim":   {`"+call cursor({line}, {col})" "{file}"`, true},
	"nvim":  {`"+call cursor({line}, {col})" "{file}"`, true},
	"nano":  {`+{line},{col} "{file}"`, true},
	"micro": {`"{target}"`, true},
	"hx":    {`"{target}"`, true},
	"emacs": {`+{line}:{col} "{file}"`, true},
	"code":  {`-g "{target}"`, false},
	"zed":   {`"{target}"`, false},
	"subl":  {`"{target}"`, false},
}

// openLocation opens path at line and col. editorCmd is a template with
// {file} {line} {col} {target} placeholders; without one $VISUAL or
// $EDITOR is used, then the platform opener.
func openLocation(path string, line int, col int, editorCmd string) error {
	target := fmt.Sprintf("%s:%d:%d", path, line, col)

	terminal := false
	if strings.TrimSpace(editorCmd) == "" {
		editorCmd, terminal = editorFromEnv()
	}
	if editorCmd != "" {
		name, args, err := buildEditorCommand(editorCmd, path, line, col, target)
		if err != nil {
			return err
		}
		if _, err := exec.LookPath(name); err != nil {
			return fmt.Errorf("editor command not found: %s", name)
		}
		cmd := exec.Command(name, args...)
		if terminal {
			cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
			return cmd.Run()
		}
		return cmd.Start()
	}

	commands, unavailable := openFileCommands(path)
	for _, c := range commands {
		if _, err := exec.LookPath(c[0]); err == nil {
			return exec.Command(c[0], c[1:]...).Start()
		}
	}
	return unavailable
}

func editorFromEnv() (string, bool) {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		editor := strings.TrimSpace(os.Getenv(key))
		if editor == "" {
			continue
		}
		parts, err := splitCommandLine(editor)
		if err != nil || len(parts) == 0 {
			continue
		}
		name := strings.TrimSuffix(filepath.Base(parts[0]), ".exe")
		if t, ok := editorTemplates[name]; ok {
			return editor + " " + t.args, t.terminal
		}
		return editor + ` "{file}"`, true
	}
	return "", false
}

func buildEditorCommand(template string, file string, line int, col int, target string) (string, []string, error) {
	parts, err := splitCommandLine(strings.TrimSpace(template))
	if err != nil {
		return "", nil, err
	}
	if len(parts) == 0 {
		return "", nil, fmt.Errorf("editor command is empty")
	}

	repl := strings.NewReplacer(
		"{file}", file,
		"{line}", fmt.Sprint(line),
		"{col}", fmt.Sprint(col),
		"{target}", target,
	)
	for i := range parts {
		parts[i] = repl.Replace(parts[i])
	}

	return parts[0], parts[1:], nil
}

func splitCommandLine(input string) ([]string, error) {
	var parts []string
	var current strings.Builder

	tokenActive := false
	inSingle := false
	inDouble := false

	flush := func() {
		if !tokenActive {
			return
		}
		parts = append(parts, current.String())
		current.Reset()
		tokenActive = false
	}

	for _, r := range input {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			tokenActive = true
		case r == '"' && !inSingle:
			inDouble = !inDouble
			tokenActive = true
		case (r == ' ' || r == '\t' || r == '\n' || r == '\r') && !inSingle && !inDouble:
			flush()
		default:
			current.WriteRune(r)
			tokenActive = true
		}
	}

	if inSingle || inDouble {
		return nil, fmt.Errorf("editor command has unclosed quote")
	}

	flush()
	return parts, nil
}

func copyToClipboard(s string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility found (install wl-copy, xclip, or xsel)")
	}
	return clipboard.WriteAll(s)
}

func openFileCommands(path string) ([][]string, error) {
	switch runtime.GOOS {
	case "darwin":
		return [][]string{{"open", path}}, fmt.Errorf("no editor configured and open is unavailable")
	case "linux":
		return [][]string{{"xdg-open", path}}, fmt.Errorf("no editor configured and xdg-open is unavailable")
	case "windows":
		return [][]string{{"explorer.exe", path}, {"cmd", "/C", "start", "", path}}, fmt.Errorf("no editor configured and explorer is unavailable")
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}
