package view

import "github.com/mattn/go-runewidth"

// DefaultLineWidth is the label line budget in terminal cells. It matches a
// 100 unit wide node at a 12 unit font.
const DefaultLineWidth = 16

// MaxLines is the number of label lines shown under a node.
const MaxLines = 2

// Ellipsis marks a label that did not fit in MaxLines.
const Ellipsis = "..."

// Lines splits a title into display lines of roughly equal length, about
// width cells each as measured by go-runewidth, and keeps the first
// MaxLines. When lines are dropped the last kept line ends in [Ellipsis].
// An empty title has no lines.
//
// The chunk count is the title's display width divided by width, rounded up,
// and the title is then cut into that many runs of equal rune count. Wide
// runes (CJK, emoji) count double toward the width.
func Lines(title string, width int) []string {
	if title == "" {
		return []string{}
	}
	if width <= 0 {
		width = DefaultLineWidth
	}

	runes := []rune(title)
	total := runewidth.StringWidth(title)
	count := max(1, ceilDiv(total, width))
	size := ceilDiv(len(runes), count)

	var chunks []string
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}

	if len(chunks) <= MaxLines {
		return chunks
	}
	out := chunks[:MaxLines:MaxLines]
	out[MaxLines-1] += Ellipsis
	return out
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
