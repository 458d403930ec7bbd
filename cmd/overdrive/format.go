package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/bft-labs/overdrive/internal/registry"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#005F87", Dark: "#5FAFD7"})
	nameStyle  = lipgloss.NewStyle().Width(24)
	typeStyle  = lipgloss.NewStyle().Width(8).Faint(true)
	valueStyle = lipgloss.NewStyle().Width(8).Align(lipgloss.Right).Bold(true)
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// renderValues prints one registry section. Styling is applied only when
// writing to a terminal.
func renderValues(w io.Writer, title string, vals []registry.Value, styled bool) {
	if !styled {
		fmt.Fprintf(w, "%s:\n", title)
		for _, v := range vals {
			fmt.Fprintf(w, "  %-24s %-8s %8d\n", v.Key(), v.Type, v.Value)
		}
		return
	}

	fmt.Fprintln(w, titleStyle.Render(title))
	for _, v := range vals {
		fmt.Fprintf(w, "  %s%s%s\n",
			nameStyle.Render(v.Key()),
			typeStyle.Render(v.Type),
			valueStyle.Render(fmt.Sprint(v.Value)),
		)
	}
}
