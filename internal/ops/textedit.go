package ops

import (
	"sort"
	"strings"

	"github.com/dshills/leta/internal/lspproto"
)

// splitKeepEnds splits s into lines, keeping the trailing "\n" (or "\r\n")
// on every line but the last, so joinLines(splitKeepEnds(s)) == s.
func splitKeepEnds(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

func joinLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
	}
	return b.String()
}

// sortEditsDescending orders edits so the one with the latest start
// position comes first, making them safe to apply in sequence against a
// single mutable line slice.
func sortEditsDescending(edits []lspproto.TextEdit) {
	sort.Slice(edits, func(i, j int) bool {
		a, b := edits[i].Range.Start, edits[j].Range.Start
		if a.Line != b.Line {
			return a.Line > b.Line
		}
		return a.Character > b.Character
	})
}

// applyOneEdit replaces the text between e.Range.Start and e.Range.End
// with e.NewText. Per the LSP spec, Range.Character counts UTF-16 code
// units, not bytes or runes, so columns are resolved with
// utf16OffsetToByte rather than a plain rune walk (otherwise a symbol
// name containing an astral-plane character would splice at the wrong
// byte for an edit landing inside it).
func applyOneEdit(lines []string, e lspproto.TextEdit) []string {
	startLine, endLine := e.Range.Start.Line, e.Range.End.Line
	if startLine < 0 || startLine >= len(lines) || endLine < 0 || endLine >= len(lines) {
		return lines
	}

	startByte := utf16OffsetToByte(lines[startLine], e.Range.Start.Character)
	endByte := utf16OffsetToByte(lines[endLine], e.Range.End.Character)

	prefix := lines[startLine][:startByte]
	suffix := lines[endLine][endByte:]
	replaced := prefix + e.NewText + suffix

	out := make([]string, 0, len(lines)-(endLine-startLine))
	out = append(out, lines[:startLine]...)
	out = append(out, splitKeepEnds(replaced)...)
	out = append(out, lines[endLine+1:]...)
	return out
}

// utf16OffsetToByte converts an LSP Character offset (UTF-16 code units)
// within line to a byte offset, accounting for surrogate pairs on
// non-BMP runes.
func utf16OffsetToByte(line string, utf16Offset int) int {
	if utf16Offset <= 0 {
		return 0
	}
	units := 0
	for i, r := range line {
		if units >= utf16Offset {
			return i
		}
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
	}
	return len(line)
}
