package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/garyellow/agri-advisor-go/internal/crop"
	"github.com/garyellow/agri-advisor-go/internal/intent"
	"github.com/garyellow/agri-advisor-go/internal/storage"
)

// RowSource supplies stored overrides.
type RowSource interface {
	KnowledgeRows(ctx context.Context) ([]storage.KnowledgeRow, error)
}

// Load returns the built-in table with src's rows applied and validated.
// A nil src yields the built-in table.
func Load(ctx context.Context, src RowSource) (Table, error) {
	base := Builtin()
	if src == nil {
		return base, nil
	}
	stored, err := src.KnowledgeRows(ctx)
	if err != nil {
		return Table{}, fmt.Errorf("knowledge: read overrides: %w", err)
	}
	rows, err := fromStorage(stored)
	if err != nil {
		return Table{}, err
	}
	t, err := base.WithOverrides(rows)
	if err != nil {
		return Table{}, fmt.Errorf("knowledge: apply overrides: %w", err)
	}
	if err := Validate(t); err != nil {
		return Table{}, fmt.Errorf("knowledge: invalid table: %w", err)
	}
	return t, nil
}

func fromStorage(stored []storage.KnowledgeRow) ([]Row, error) {
	rows := make([]Row, 0, len(stored))
	for _, s := range stored {
		label, ok := intent.Parse(s.Intent)
		if !ok {
			return nil, fmt.Errorf("knowledge: %w: %q", errUnknownIntent, s.Intent)
		}
		var name crop.Name
		if strings.TrimSpace(s.Crop) != "" {
			if name, ok = crop.Parse(s.Crop); !ok {
				return nil, fmt.Errorf("knowledge: %w: %q", errUnknownCrop, s.Crop)
			}
		}
		rows = append(rows, Row{Intent: label, Crop: name, Kind: Kind(s.Kind), Text: s.Text})
	}
	return rows, nil
}

// ToStorage converts rows for persistence.
func ToStorage(rows []Row) []storage.KnowledgeRow {
	out := make([]storage.KnowledgeRow, len(rows))
	for i, r := range rows {
		out[i] = storage.KnowledgeRow{
			Intent: string(r.Intent),
			Crop:   string(r.Crop),
			Kind:   string(r.Kind),
			Text:   r.Text,
		}
	}
	return out
}
