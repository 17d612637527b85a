package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialiseRow(t *testing.T) {
	header := []string{"Room", "Rate", ""}

	tests := []struct {
		name string
		row  []string
		want string
	}{
		{"all cells", []string{"Deluxe", "240"}, "Room: Deluxe | Rate: 240"},
		{"skips empty cells", []string{"Suite", "  "}, "Room: Suite"},
		{"unnamed column", []string{"Twin", "180", "sea view"}, "Room: Twin | Rate: 180 | column 3: sea view"},
		{"beyond header", []string{"A", "B", "C", "D"}, "Room: A | Rate: B | column 3: C | column 4: D"},
		{"empty row", []string{"", ""}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SerialiseRow(header, tt.row))
		})
	}
}

func TestBlocks(t *testing.T) {
	sheets := []Sheet{
		{
			Name: "Rates",
			Rows: [][]string{
				{},
				{"Room", "Rate"},
				{"Deluxe", "240"},
				{"", ""},
				{"Suite", "410"},
				{"Twin", "180"},
			},
		},
		{Name: "Empty", Rows: [][]string{{"", ""}}},
		{Name: "Contacts", Rows: [][]string{{"Name", "Extension"}}},
	}

	blocks := Blocks("rates.xlsx", sheets, 2)
	require.Len(t, blocks, 3)

	assert.Equal(t, "Rates", blocks[0].Heading)
	assert.Equal(t, 1, blocks[0].Position)
	assert.Equal(t, "Room: Deluxe | Rate: 240\nRoom: Suite | Rate: 410", blocks[0].Text)

	assert.Equal(t, "Rates", blocks[1].Heading)
	assert.Equal(t, 2, blocks[1].Position)
	assert.Equal(t, "Room: Twin | Rate: 180", blocks[1].Text)

	assert.Equal(t, "Contacts", blocks[2].Heading)
	assert.Equal(t, 3, blocks[2].Position)
	assert.Equal(t, "Name | Extension", blocks[2].Text)

	for _, b := range blocks {
		assert.Equal(t, "rates.xlsx", b.DocumentID)
	}
}

func TestBlocks_DefaultRowsPerBlock(t *testing.T) {
	rows := [][]string{{"n"}}
	for i := 0; i < 120; i++ {
		rows = append(rows, []string{"v"})
	}

	blocks := Blocks("x", []Sheet{{Name: "S", Rows: rows}}, 0)
	assert.Len(t, blocks, 3)
}
