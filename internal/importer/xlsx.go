package importer

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var zipMagic = []byte("PK\x03\x04")

func isXLSX(content []byte) bool {
	return bytes.HasPrefix(content, zipMagic)
}

// readSheet returns the non-empty rows of the workbook's first sheet. Excel drops
// trailing empty cells, so rows may be shorter than the header.
func readSheet(content []byte) ([]sourceRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("open workbook: no sheets")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var rows []sourceRow

	for i, r := range cells {
		if blank(r) {
			continue
		}

		rows = append(rows, sourceRow{line: i + 1, cells: r})
	}

	return rows, nil
}
