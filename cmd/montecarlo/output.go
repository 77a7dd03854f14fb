package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rovshanmuradov/montecarlo/internal/ui/style"
)

type row struct {
	label string
	value string
}

func printSummary(w io.Writer, title string, rows []row) {
	var b strings.Builder
	b.WriteString(style.Title().Render(title))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(style.Label().Render(r.label))
		b.WriteString(style.Value().Render(r.value))
		b.WriteString("\n")
	}
	fmt.Fprint(w, b.String())
}
