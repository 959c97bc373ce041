package ops

import (
	"context"
	"os"
	"strings"
)

// ShowParams is show's input (§4.7, §6).
type ShowParams struct {
	SymbolExpr   string `json:"symbolExpr"`
	ContextLines int    `json:"contextLines,omitempty"`
	HeadLimit    int    `json:"headLimit,omitempty"`
}

// Show implements the show operation: the symbol's body from its
// selection-range start to the end of its enclosing range, plus
// ContextLines of surrounding context.
func (h *Handlers) Show(ctx context.Context, p ShowParams) (*ShowResult, error) {
	resolved, _, err := h.resolveExpr(ctx, p.SymbolExpr)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(resolved.Path)
	if err != nil {
		return nil, errIO(err)
	}
	lines := strings.Split(string(content), "\n")
	start, end := computeShowWindow(resolved.SelectionRange.Start.Line, resolved.Range.End.Line, p.ContextLines, p.HeadLimit, len(lines))

	var text strings.Builder
	for i := start; i <= end && i < len(lines); i++ {
		text.WriteString(lines[i])
		if i < end {
			text.WriteByte('\n')
		}
	}

	return &ShowResult{
		Path:      h.relPath(resolved.Path),
		StartLine: start + 1,
		EndLine:   end + 1,
		Text:      text.String(),
	}, nil
}

// computeShowWindow derives the [start, end] line range (0-indexed,
// inclusive) to display: selStart minus contextLines of lead-in, through
// rangeEnd, clamped to headLimit and to the file's actual line count.
func computeShowWindow(selStart, rangeEnd, contextLines, headLimit, lineCount int) (start, end int) {
	start = selStart - contextLines
	if start < 0 {
		start = 0
	}
	end = rangeEnd
	if headLimit > 0 && end-start+1 > headLimit {
		end = start + headLimit - 1
	}
	if end >= lineCount {
		end = lineCount - 1
	}
	if end < start {
		end = start
	}
	return start, end
}
