package main

import (
	"os"

	"github.com/google/renameio/v2"
	"github.com/google/shlex"
	"github.com/pkg/errors"

	"github.com/aretext/markedit/config"
	"github.com/aretext/markedit/languages/markdown"
)

// runCommand splits line the way a shell would (so a quoted path with
// spaces works) and dispatches the first word as a command name.
func (e *Editor) runCommand(line string) {
	args, err := shlex.Split(line)
	if err != nil {
		e.setStatus("parsing command: %v", err)
		return
	}
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case "q", "quit":
		e.quit = true
	case "open":
		if len(args) < 2 {
			e.setStatus("usage: open <path>")
			return
		}
		e.openFile(args[1])
	case "save", "w":
		path := e.path
		if len(args) >= 2 {
			path = args[1]
		}
		e.saveFile(path)
	case "palette":
		if len(args) < 2 {
			e.setStatus("usage: palette <path>")
			return
		}
		e.loadPaletteFile(args[1])
	case "dump":
		path := "markedit-tree.sexpr"
		if len(args) >= 2 {
			path = args[1]
		}
		e.dumpTree(path)
	default:
		e.setStatus("unknown command %q", args[0])
	}
}

func (e *Editor) openFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		e.setStatus("opening %q: %v", path, err)
		return
	}
	e.doc = markdown.NewParsedAttributedString(string(data))
	e.path = path
	e.cursor = 0
	e.setStatus("opened %q", path)
}

func (e *Editor) saveFile(path string) {
	if path == "" {
		e.setStatus("no path to save to; use :save <path>")
		return
	}
	if err := writeFileAtomically(path, e.doc.Raw.String()); err != nil {
		e.setStatus("saving %q: %v", path, err)
		return
	}
	e.path = path
	e.setStatus("saved %q", path)
}

func (e *Editor) loadPaletteFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		e.setStatus("loading palette %q: %v", path, err)
		return
	}
	palette, err := config.ParsePalette(data)
	if err != nil {
		e.setStatus("parsing palette %q: %v", path, err)
		return
	}
	e.palette = palette
	e.setStatus("loaded palette %q", path)
}

func (e *Editor) dumpTree(path string) {
	tree, ok := e.doc.Raw.Tree()
	if !ok {
		e.setStatus("no parse tree to dump (%v)", e.doc.Raw.Err())
		return
	}
	dump := tree.SExpr(e.doc.Raw)
	if err := writeFileAtomically(path, dump); err != nil {
		e.setStatus("dumping tree to %q: %v", path, err)
		return
	}
	e.setStatus("dumped tree to %q", path)
}

// writeFileAtomically mirrors the teacher's renameio-based save: write
// to a temp file in the target's directory, then atomically rename it
// into place, so a crash mid-write never leaves a half-written file at
// path.
func writeFileAtomically(path string, content string) error {
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0644), renameio.WithExistingPermissions())
	if err != nil {
		return errors.Wrap(err, "renameio.NewPendingFile")
	}
	defer pf.Cleanup()

	if _, err := pf.Write([]byte(content)); err != nil {
		return errors.Wrap(err, "PendingFile.Write")
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return errors.Wrap(err, "PendingFile.CloseAtomicallyReplace")
	}
	return nil
}
