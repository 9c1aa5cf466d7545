package pipeline

import (
	"fmt"

	"github.com/dvloznov/bank-ingest/internal/config"
)

// rowSchema is the validated positional layout of a raw export row, built
// from the configured column descriptor.
type rowSchema struct {
	width      int
	dateIdx    int
	amountIdx  int
	descIdx    int
	dateLayout string
}

func newRowSchema(columns []config.Column, dateLayout string) (*rowSchema, error) {
	s := &rowSchema{
		width:      len(columns),
		dateIdx:    -1,
		amountIdx:  -1,
		descIdx:    -1,
		dateLayout: dateLayout,
	}

	for i, col := range columns {
		switch col.Type {
		case "date":
			if s.dateIdx != -1 {
				return nil, fmt.Errorf("newRowSchema: duplicate date column at %d", i)
			}
			s.dateIdx = i
		case "float":
			if s.amountIdx != -1 {
				return nil, fmt.Errorf("newRowSchema: duplicate float column at %d", i)
			}
			s.amountIdx = i
		case "string":
			if s.descIdx != -1 {
				return nil, fmt.Errorf("newRowSchema: duplicate string column at %d", i)
			}
			s.descIdx = i
		case "skip":
		default:
			return nil, fmt.Errorf("newRowSchema: column %d (%s): unknown type %q", i, col.Name, col.Type)
		}
	}

	if s.dateIdx == -1 || s.amountIdx == -1 || s.descIdx == -1 {
		return nil, fmt.Errorf("newRowSchema: columns must include a date, a float and a string field")
	}
	if s.dateLayout == "" {
		return nil, fmt.Errorf("newRowSchema: date layout is required")
	}

	return s, nil
}
