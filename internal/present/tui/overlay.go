package tui

import (
	"github.com/charmbracelet/lipgloss/v2"
)

// renderOverlay composes a centered modal on top of the given base view string.
func renderOverlay(base, fg string, termW, termH int) string {
	if termW <= 0 {
		termW = 80
	}
	if termH <= 0 {
		termH = 24
	}
	overlayW := lipgloss.Width(fg)
	overlayH := lipgloss.Height(fg)
	x := max(0, (termW-overlayW)/2)
	y := max(0, (termH-overlayH)/2)

	dimBase := lipgloss.NewStyle().Faint(true).Render(base)
	baseLayer := lipgloss.NewLayer(dimBase).
		Width(termW).
		Height(termH)
	fgLayer := lipgloss.NewLayer(fg).
		Width(overlayW).
		Height(overlayH).
		X(x).
		Y(y)

	return lipgloss.NewCanvas(baseLayer, fgLayer).Render()
}

// modalBox sizes a bordered modal to a share of the terminal and returns
// the style plus the inner content size.
func modalBox(termW, termH int, wFrac, hFrac float64, padX, padY int) (lipgloss.Style, int, int) {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	w := int(float64(termW) * wFrac)
	if termW < 80 {
		w = termW - 4
	}
	if w < 40 {
		w = max(32, termW-2)
	}
	h := int(float64(termH) * hFrac)
	if termH < 20 {
		h = termH - 2
	}
	if h < 8 {
		h = max(6, termH-1)
	}
	box := lipgloss.NewStyle().
		Width(w).
		Height(h).
		Padding(padY, padX).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63"))
	innerW := max(10, w-2-padX*2)
	innerH := max(3, h-2-padY*2)
	return box, innerW, innerH
}
