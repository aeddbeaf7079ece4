package sheets

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWorkbookRoundTrips(t *testing.T) {
	data, err := WriteWorkbook("Leads",
		[]string{"Client Name", "Contact Number", "Email"},
		[][]string{
			{"Asha Rao", "5550100", "asha@example.com"},
			{"Ben Cruz", "5550101", ""},
		})
	require.NoError(t, err)

	table, err := ReadWorkbook(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"client_name", "contact_number", "email"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Ben Cruz", table.Rows[1][0])
}
