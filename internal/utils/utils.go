package utils

import (
	"encoding/csv"
	"os"
	"strings"
)

// ReadSymbolsFromCSV reads stock symbols from a CSV file. The first column
// holds the symbol; a header row is skipped.
func ReadSymbolsFromCSV(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var symbols []string
	for i, record := range records {
		if i == 0 || len(record) == 0 {
			continue // Skip header
		}
		symbol := strings.ToUpper(strings.TrimSpace(record[0]))
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	}

	return symbols, nil
}
