package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"bank-reconciliation-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDocument(t *testing.T) {
	t.Run("writes a pdf", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderDocument(&buf, ComposeSections(fullReport())))

		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
		assert.Contains(t, buf.String(), "%%EOF")
	})

	t.Run("report without rows still renders the title page", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderDocument(&buf, ComposeSections(&models.ReconciliationReport{})))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	})

	t.Run("non latin text does not fail", func(t *testing.T) {
		sections := ComposeSections(fullReport())
		sections[2].Rows = append(sections[2].Rows,
			Row{"Date": "2024-02-09", "Description": "Café Zürich €", "Amount": 3},
			Row{"Date": "2024-02-10", "Description": strings.Repeat("Señor Müller Ærø ", 20), "Amount": 4},
			Row{"Date": "2024-02-11", "Description": "日本", "Amount": 5},
		)

		var buf bytes.Buffer
		require.NotPanics(t, func() {
			assert.NoError(t, RenderDocument(&buf, sections))
		})
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	})

	t.Run("malformed section writes nothing", func(t *testing.T) {
		sections := ComposeSections(fullReport())
		sections[1].Columns = nil

		var buf bytes.Buffer
		err := RenderDocument(&buf, sections)

		var rErr *RenderError
		require.True(t, errors.As(err, &rErr))
		assert.Zero(t, buf.Len())
	})
}

func TestUnencodable(t *testing.T) {
	sections := ComposeSections(fullReport())
	assert.Zero(t, unencodable(sections))

	sections[2].Rows = append(sections[2].Rows,
		Row{"Description": "Café €", "Amount": 1},
		Row{"Description": "日本", "Amount": 2},
	)
	assert.Equal(t, 1, unencodable(sections))
}
