package main

import (
	"fmt"
	"log"
	"unicode/utf16"

	"github.com/gdamore/tcell/v2"

	"github.com/aretext/markedit/config"
	"github.com/aretext/markedit/languages/markdown"
	"github.com/aretext/markedit/richtext"
)

// mode is which keystrokes the editor is currently interpreting: plain
// document edits, or a ":"-prefixed command line.
type mode int

const (
	modeNormal mode = iota
	modeCommand
)

// Editor is a terminal-based demo editor over a single
// richtext.ParsedAttributedString, styled by a config.Palette.
type Editor struct {
	screen        tcell.Screen
	doc           *richtext.ParsedAttributedString
	palette       config.Palette
	path          string
	cursor        uint32 // visible offset
	mode          mode
	cmdBuffer     string
	statusMsg     string
	quit          bool
	termEventChan chan tcell.Event
}

// NewEditor constructs an Editor over initial content, parsed against
// the default Markdown grammar.
func NewEditor(screen tcell.Screen, path string, initial string, palette config.Palette) *Editor {
	return &Editor{
		screen:        screen,
		doc:           markdown.NewParsedAttributedString(initial),
		palette:       palette,
		path:          path,
		termEventChan: make(chan tcell.Event, 1),
	}
}

// RunEventLoop draws the document, then processes terminal events
// until a command (":q"/":quit") sets the quit flag.
func (e *Editor) RunEventLoop() {
	e.redraw()

	go e.pollTermEvents()

	for {
		event := <-e.termEventChan
		e.handleTermEvent(event)
		if e.quit {
			log.Printf("quit flag set, exiting event loop\n")
			return
		}
		e.redraw()
	}
}

func (e *Editor) pollTermEvents() {
	for {
		e.termEventChan <- e.screen.PollEvent()
	}
}

func (e *Editor) handleTermEvent(event tcell.Event) {
	switch event := event.(type) {
	case *tcell.EventKey:
		log.Printf("key event %v rune %q\n", event.Key(), event.Rune())
		if e.mode == modeCommand {
			e.handleCommandKey(event)
		} else {
			e.handleNormalKey(event)
		}
	case *tcell.EventResize:
		e.screen.Sync()
	}
}

func (e *Editor) handleNormalKey(event *tcell.EventKey) {
	switch event.Key() {
	case tcell.KeyRune:
		if event.Rune() == ':' {
			e.mode = modeCommand
			e.cmdBuffer = ""
			return
		}
		e.insertRune(event.Rune())
	case tcell.KeyEnter:
		e.insertRune('\n')
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.deleteBackward()
	case tcell.KeyLeft:
		if e.cursor > 0 {
			e.cursor--
		}
	case tcell.KeyRight:
		if e.cursor < e.doc.VisibleLen() {
			e.cursor++
		}
	case tcell.KeyUp:
		e.cursor = moveVertical(e.doc.Visible(), e.cursor, -1)
	case tcell.KeyDown:
		e.cursor = moveVertical(e.doc.Visible(), e.cursor, 1)
	case tcell.KeyCtrlC:
		e.quit = true
	}
}

func (e *Editor) handleCommandKey(event *tcell.EventKey) {
	switch event.Key() {
	case tcell.KeyEscape:
		e.mode = modeNormal
	case tcell.KeyEnter:
		e.mode = modeNormal
		e.runCommand(e.cmdBuffer)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(e.cmdBuffer); n > 0 {
			e.cmdBuffer = e.cmdBuffer[:n-1]
		}
	case tcell.KeyRune:
		e.cmdBuffer += string(event.Rune())
	}
}

// insertRune inserts r at the cursor and advances the cursor past it.
// Surrogate-pair runes advance by two code units, matching the
// document's UTF-16 indexing.
func (e *Editor) insertRune(r rune) {
	units := utf16.Encode([]rune{r})
	e.doc.Replace(e.cursor, e.cursor, units)
	e.cursor += uint32(len(units))
}

// deleteBackward removes the single code unit before the cursor. This
// can split a surrogate pair for an astral character; a fuller editor
// would measure the preceding grapheme instead.
func (e *Editor) deleteBackward() {
	if e.cursor == 0 {
		return
	}
	e.doc.Replace(e.cursor-1, e.cursor, nil)
	e.cursor--
}

// cursorMarkup names the innermost markup construct enclosing the
// cursor, for display in the status line, preferring the most
// specific match (an emphasis span over its enclosing paragraph).
func (e *Editor) cursorMarkup() string {
	path := e.doc.PathTo(e.cursor)
	if _, ok := path.InnermostOfType(markdown.TypeEmphasis); ok {
		return "italic"
	}
	if _, ok := path.InnermostOfType(markdown.TypeHeader); ok {
		return "header"
	}
	if _, ok := path.InnermostOfType(markdown.TypeThematicBreak); ok {
		return "thematic break"
	}
	return ""
}

func (e *Editor) statusLine() string {
	if e.mode == modeCommand {
		return ":" + e.cmdBuffer
	}
	if markup := e.cursorMarkup(); markup != "" {
		return fmt.Sprintf("%s [%s]", e.statusMsg, markup)
	}
	return e.statusMsg
}

func (e *Editor) setStatus(format string, args ...interface{}) {
	e.statusMsg = fmt.Sprintf(format, args...)
}

func (e *Editor) redraw() {
	draw(e.screen, e.doc, e.palette, e.cursor, e.statusLine())
}
