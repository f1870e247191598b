package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a catalog from path. Files ending in .yaml or .yml are read
// as YAML; anything else is read as CSV.
func LoadFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(f)
	default:
		return ParseCSV(f)
	}
}

// ParseYAML decodes a catalog of the form:
//
//	items:
//	  - sku: A
//	    price: 50
//	    deals: ["3A for 130"]
func ParseYAML(r io.Reader) (Catalog, error) {
	var cat Catalog
	if err := yaml.NewDecoder(r).Decode(&cat); err != nil {
		return Catalog{}, fmt.Errorf("parse YAML catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

// ParseCSV reads records of the form "sku,price,deals". The deals column is
// optional and may hold several deals separated by commas, in which case the
// field must be quoted. A leading header row is skipped.
func ParseCSV(r io.Reader) (Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var cat Catalog
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Catalog{}, fmt.Errorf("read catalog: %w", err)
		}
		if line == 1 && isHeader(record) {
			continue
		}
		if len(record) < 2 || len(record) > 3 {
			return Catalog{}, fmt.Errorf("%w: line %d: expected 2 or 3 fields, got %d", ErrInvalidCatalog, line, len(record))
		}

		price, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return Catalog{}, fmt.Errorf("%w: line %d: price %q is not an integer", ErrInvalidCatalog, line, record[1])
		}

		item := Item{SKU: strings.TrimSpace(record[0]), Price: price}
		if len(record) == 3 {
			item.Deals = splitDeals(record[2])
		}
		cat.Items = append(cat.Items, item)
	}

	if err := cat.Validate(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

func isHeader(record []string) bool {
	if len(record) < 2 {
		return false
	}
	_, err := strconv.Atoi(strings.TrimSpace(record[1]))
	return err != nil && strings.EqualFold(strings.TrimSpace(record[1]), "price")
}

func splitDeals(raw string) []string {
	var deals []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			deals = append(deals, part)
		}
	}
	return deals
}
