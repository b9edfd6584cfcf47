package main

import (
	"fmt"
	"unicode/utf16"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/aretext/markedit/attrs"
	"github.com/aretext/markedit/config"
	"github.com/aretext/markedit/richtext"
)

// styleFor resolves an attribute descriptor to a tcell.Style via the
// palette, keying the lookup on the descriptor's string form since
// descriptors are opaque to this package (spec.md §4.F).
func styleFor(palette config.Palette, desc attrs.Descriptor) tcell.Style {
	sc := palette.StyleFor(fmt.Sprintf("%v", desc))
	s := tcell.StyleDefault
	if sc.Fg != "" {
		s = s.Foreground(tcell.GetColor(sc.Fg))
	}
	if sc.Bg != "" {
		s = s.Background(tcell.GetColor(sc.Bg))
	}
	return s.Bold(sc.Bold).Italic(sc.Italic).Underline(sc.Underline)
}

// draw renders doc's visible text, wrapping at the screen width and
// styling each rune from doc's attribute array, then positions the
// cursor and draws a one-line status/command bar at the bottom.
func draw(screen tcell.Screen, doc *richtext.ParsedAttributedString, palette config.Palette, cursor uint32, status string) {
	screen.Clear()
	width, height := screen.Size()
	if height < 2 {
		screen.Show()
		return
	}
	textHeight := height - 1

	col, row := 0, 0
	var offset uint32
	cursorCol, cursorRow := 0, 0
	for _, r := range doc.Visible() {
		if offset == cursor {
			cursorCol, cursorRow = col, row
		}
		units := utf16.Encode([]rune{r})

		if r == '\n' {
			row++
			col = 0
			offset += uint32(len(units))
			continue
		}

		w := runewidth.RuneWidth(r)
		if col+w > width {
			row++
			col = 0
		}
		if row < textHeight {
			style := tcell.StyleDefault
			if desc, _, _, ok := doc.Attributes().AttrsAt(offset); ok {
				style = styleFor(palette, desc)
			}
			screen.SetContent(col, row, r, nil, style)
		}
		col += w
		offset += uint32(len(units))
	}
	if offset == cursor {
		cursorCol, cursorRow = col, row
	}

	drawStatusLine(screen, height-1, width, status)
	screen.ShowCursor(cursorCol, cursorRow)
	screen.Show()
}

func drawStatusLine(screen tcell.Screen, row, width int, status string) {
	style := tcell.StyleDefault.Dim(true)
	col := 0
	for _, r := range status {
		if col >= width {
			break
		}
		screen.SetContent(col, row, r, nil, style)
		col += runewidth.RuneWidth(r)
	}
}

// moveVertical returns the visible offset reached by moving dy lines
// up or down from cursor, preserving column as closely as the target
// line's length allows.
func moveVertical(visible string, cursor uint32, dy int) uint32 {
	var lines [][]uint32
	var current []uint32
	var offset uint32
	for _, r := range visible {
		if r == '\n' {
			current = append(current, offset)
			lines = append(lines, current)
			current = nil
			offset++
			continue
		}
		current = append(current, offset)
		offset += uint32(len(utf16.Encode([]rune{r})))
	}
	current = append(current, offset)
	lines = append(lines, current)

	lineIdx, col := 0, 0
find:
	for i, line := range lines {
		for j, off := range line {
			if off == cursor {
				lineIdx, col = i, j
				break find
			}
		}
	}

	newLine := lineIdx + dy
	if newLine < 0 {
		newLine = 0
	}
	if newLine >= len(lines) {
		newLine = len(lines) - 1
	}
	line := lines[newLine]
	if col >= len(line) {
		col = len(line) - 1
	}
	if col < 0 {
		col = 0
	}
	return line[col]
}
