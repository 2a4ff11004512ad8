package tabular

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSVDir_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dataset")
	require.NoError(t, WriteCSVDir(dir, fixture))
	assertFixtureDataset(t, NewCSVDir(dir))
}

func TestWriteWorkbook_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.xlsx")
	require.NoError(t, WriteWorkbook(path, fixture))

	wb, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer wb.Close()
	assertFixtureDataset(t, wb)

	_, err = wb.Table("Sheet1")
	assert.ErrorIs(t, err, ErrTableMissing)
}

func TestWriteWorkbook_Empty(t *testing.T) {
	assert.Error(t, WriteWorkbook(filepath.Join(t.TempDir(), "empty.xlsx"), nil))
}

func TestHeader(t *testing.T) {
	for _, name := range Tables {
		assert.NotEmpty(t, Header(name), name)
	}
	assert.Nil(t, Header("inventory"))

	h := Header(TableDemand)
	h[0] = "changed"
	assert.Equal(t, "sku", Header(TableDemand)[0])
}
