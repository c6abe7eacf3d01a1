package economy

import (
	"fmt"

	"github.com/villageworks/villagecraft/pkg/errors"
)

// CostKind discriminates the priced-requirement union.
type CostKind string

const (
	CostCurrency CostKind = "currency"
	CostPoints   CostKind = "points"
	CostItem     CostKind = "item"
)

// CostEntry is one priced requirement. Entries are built from configuration
// once at load time and validated there, never at payment time.
type CostEntry struct {
	Kind   CostKind `yaml:"kind"`
	Amount int64    `yaml:"amount"`
	Item   string   `yaml:"item,omitempty"`
}

func (c CostEntry) Validate() error {
	switch c.Kind {
	case CostCurrency, CostPoints:
		if c.Amount < 0 {
			return errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("%s cost amount must be >= 0, got %d", c.Kind, c.Amount))
		}
	case CostItem:
		if c.Amount < 0 {
			return errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("item cost amount must be >= 0, got %d", c.Amount))
		}
		if c.Item == "" {
			return errors.New(errors.ErrCodeValidationFailed, "item cost requires a non-empty item identifier")
		}
	default:
		return errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("unknown cost kind %q", c.Kind))
	}
	return nil
}

// ValidateCosts validates a whole cost list, reporting the first invalid
// entry with its index.
func ValidateCosts(costs []CostEntry) error {
	for i, c := range costs {
		if err := c.Validate(); err != nil {
			return errors.Wrap(err, errors.ErrCodeValidationFailed, fmt.Sprintf("cost entry %d", i))
		}
	}
	return nil
}

// Describe maps a cost list to user-facing lines. It is a pure function and
// degrades gracefully for unrecognized kinds.
func Describe(costs []CostEntry) []string {
	lines := make([]string, 0, len(costs))
	for _, c := range costs {
		switch c.Kind {
		case CostCurrency:
			lines = append(lines, fmt.Sprintf("%d coins", c.Amount))
		case CostPoints:
			lines = append(lines, fmt.Sprintf("%d points", c.Amount))
		case CostItem:
			lines = append(lines, fmt.Sprintf("%d x %s", c.Amount, c.Item))
		default:
			lines = append(lines, fmt.Sprintf("%d x %s (unknown)", c.Amount, string(c.Kind)))
		}
	}
	return lines
}
