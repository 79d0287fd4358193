package parsers

import (
	"errors"
	"io"

	"github.com/herry-chi/dashboard-operation-lifex/src/models"
)

// Sentinel errors for parsing failures. Handlers map these to HTTP
// status codes with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrInvalidStructure  = errors.New("invalid file structure")
	ErrParsingFailed     = errors.New("file parsing failed")
)

// Parser reads an uploaded deals export and returns normalized records.
type Parser interface {
	Parse(r io.Reader) ([]models.Deal, error)
}
