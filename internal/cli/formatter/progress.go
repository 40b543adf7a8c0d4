package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a progress bar like [████░░░░]  45% for a
// percentage in 0..100. Green above 66, yellow from 33, red below.
func RenderProgress(pct float64, width int) string {
	pct = min(max(pct, 0), 100)
	width = max(width, 2)

	filled := min(int(pct/100*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct < 33:
		style = StyleRed
	case pct < 66:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct)
}

// Bar renders value as a run of blocks scaled against total.
func Bar(value, total, width int) string {
	if total <= 0 || value <= 0 {
		return ""
	}
	n := value * width / total
	if n == 0 {
		n = 1
	}
	return strings.Repeat(filledBlock, min(n, width))
}
