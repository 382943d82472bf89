package invoice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/agency-billing/internal/domain"
)

// DefaultPadding dígitos de la secuencia cuando la configuración no indica otro valor.
const DefaultPadding = 3

// FormatNumber genera el número legible <PREFIX>-<YEAR>-<SEQ>, ej. INV-2024-001.
func FormatNumber(prefix string, year, seq, padding int) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" || strings.Contains(prefix, "-") {
		return "", fmt.Errorf("%w: prefijo %q inválido", domain.ErrInvalidInput, prefix)
	}
	if year < 1000 || year > 9999 || seq <= 0 {
		return "", fmt.Errorf("%w: año o secuencia inválidos", domain.ErrInvalidInput)
	}
	if padding <= 0 {
		padding = DefaultPadding
	}
	return fmt.Sprintf("%s-%04d-%0*d", prefix, year, padding, seq), nil
}

// ParseNumber descompone un número generado por FormatNumber.
func ParseNumber(number string) (prefix string, year, seq int, err error) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 || parts[0] == "" {
		return "", 0, 0, fmt.Errorf("%w: número %q", domain.ErrInvalidInput, number)
	}
	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: año en %q", domain.ErrInvalidInput, number)
	}
	seq, err = strconv.Atoi(parts[2])
	if err != nil || seq <= 0 {
		return "", 0, 0, fmt.Errorf("%w: secuencia en %q", domain.ErrInvalidInput, number)
	}
	return parts[0], year, seq, nil
}
