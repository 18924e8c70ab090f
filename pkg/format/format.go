// Package format provides pt-BR display formatting for currency, numbers,
// and entity status labels shown by the CLI and API.
package format

import (
	"fmt"
	"strings"
)

var statusLabels = map[string]string{
	"active":    "Ativo",
	"inactive":  "Inativo",
	"suspended": "Suspenso",
	"paused":    "Pausado",
	"ended":     "Finalizado",
}

// Currency formats a value as Brazilian Real, e.g. "R$ 1.234,56".
func Currency(value float64) string {
	return "R$ " + decimal(value)
}

// Number formats an integer with pt-BR thousands separators, e.g. "1.234.567".
func Number(value int) string {
	neg := value < 0
	if neg {
		value = -value
	}
	s := group(fmt.Sprintf("%d", value))
	if neg {
		return "-" + s
	}
	return s
}

// StatusText translates an account or product status into its pt-BR label.
// Unknown statuses pass through unchanged.
func StatusText(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

func decimal(value float64) string {
	neg := value < 0
	if neg {
		value = -value
	}
	s := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(s, ".", 2)
	out := group(parts[0]) + "," + parts[1]
	if neg {
		return "-" + out
	}
	return out
}

// group inserts "." thousands separators into a digit string.
func group(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(digits[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
