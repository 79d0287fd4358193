package parsers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/herry-chi/dashboard-operation-lifex/src/models"
)

// JSONParser reads a deals export saved as JSON. Accepts either a bare
// array of records or an object wrapping the array under "deals".
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader) ([]models.Deal, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading json upload: %v", ErrParsingFailed, err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		var wrapper struct {
			Deals []map[string]any `json:"deals"`
		}
		if err2 := json.Unmarshal(data, &wrapper); err2 != nil || wrapper.Deals == nil {
			return nil, fmt.Errorf("%w: expected an array of deal records", ErrInvalidStructure)
		}
		rows = wrapper.Deals
	}

	return normalizeRecords(rows), nil
}
