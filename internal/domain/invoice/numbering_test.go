package invoice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agency-billing/internal/domain"
	"github.com/jhoicas/agency-billing/internal/domain/invoice"
)

func TestFormatNumber(t *testing.T) {
	n, err := invoice.FormatNumber("inv", 2024, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-007", n)

	n, err = invoice.FormatNumber("AG", 2025, 1234, 3)
	require.NoError(t, err)
	assert.Equal(t, "AG-2025-1234", n)

	_, err = invoice.FormatNumber("", 2024, 1, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = invoice.FormatNumber("A-B", 2024, 1, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = invoice.FormatNumber("INV", 2024, 0, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseNumber(t *testing.T) {
	prefix, year, seq, err := invoice.ParseNumber("INV-2024-012")
	require.NoError(t, err)
	assert.Equal(t, "INV", prefix)
	assert.Equal(t, 2024, year)
	assert.Equal(t, 12, seq)

	_, _, _, err = invoice.ParseNumber("INV2024")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
