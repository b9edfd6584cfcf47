// Command markedit is a minimal terminal demo of the markedit core: it
// opens a file (or starts with an empty scratch document), parses and
// formats it against the default languages/markdown grammar, and lets
// the user edit it live, redrawing only in response to terminal
// events. It exists to exercise the domain dependencies a host editor
// would wire in (tcell, go-runewidth, shlex, renameio, the XDG/YAML
// palette) - it is not itself part of the core's contract.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/aretext/markedit/config"
)

var (
	logpathFlag  = flag.String("log", "", "log to file")
	noconfigFlag = flag.Bool("noconfig", false, "use the default palette instead of loading/creating one")
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	if *logpathFlag != "" {
		logFile, err := os.Create(*logpathFlag)
		if err != nil {
			exitWithError(err)
		}
		defer logFile.Close()
		log.SetOutput(logFile)
	} else {
		log.SetOutput(io.Discard)
	}

	palette, err := config.LoadOrCreatePalette(*noconfigFlag)
	if err != nil {
		exitWithError(err)
	}

	path := flag.Arg(0)
	var initial string
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			initial = string(data)
		} else if !os.IsNotExist(err) {
			exitWithError(err)
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		exitWithError(err)
	}
	if err := screen.Init(); err != nil {
		exitWithError(err)
	}
	defer screen.Fini()

	editor := NewEditor(screen, path, initial, palette)
	editor.RunEventLoop()
}

func printUsage() {
	f := flag.CommandLine.Output()
	fmt.Fprintf(f, "Usage: %s [options...] [path]\n", os.Args[0])
	flag.PrintDefaults()
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "%v\n", err)
	os.Exit(1)
}
