package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadTable_CSVWithBOMAndSemicolons(t *testing.T) {
	data := "\ufeffNombre;Apellido;Notas\nAna;Diaz;\"vino, queso\"\n"

	rows, err := ReadTable("clientes.csv", strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Nombre", "Apellido", "Notas"},
		{"Ana", "Diaz", "vino, queso"},
	}, rows)
}

func TestReadTable_XLSXFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"First Name", "Last Name"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Ana", "Diaz"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := ReadTable("Clientes.XLSX", &buf)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"First Name", "Last Name"}, {"Ana", "Diaz"}}, rows)
}

func TestReadTable_UnsupportedExtension(t *testing.T) {
	_, err := ReadTable("clientes.xls", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
