package parsers

import (
	"fmt"
	"path/filepath"
	"strings"
)

// GetParser selects a parser implementation from the uploaded filename's
// extension.
func GetParser(filename string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return &JSONParser{}, nil
	case ".xlsx", ".xlsm", ".xls":
		return &WorkbookParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}
