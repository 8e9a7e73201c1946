package slots

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrBadSchedule marks a malformed schedule file. The HTTP layer maps it to
// a validation failure.
var ErrBadSchedule = errors.New("slots: invalid schedule file")

// requiredColumns must all be present in the CSV header, in any order.
var requiredColumns = []string{"medic_id", "start_time", "end_time"}

// Importer loads medic schedules from CSV into the slot inventory. Each row
// becomes one unreserved slot.
type Importer struct {
	store Store
}

// NewImporter creates a schedule importer writing to store.
func NewImporter(store Store) *Importer {
	if store == nil {
		panic("slots: store required")
	}
	return &Importer{store: store}
}

// Import parses the CSV stream and inserts one slot per row. It fails on
// the first malformed row; rows already inserted stay (the count tells the
// caller how far it got).
func (im *Importer) Import(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("%w: missing header", ErrBadSchedule)
	}
	col, err := headerIndex(header)
	if err != nil {
		return 0, err
	}

	var batch []Slot
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%w: line %d: %v", ErrBadSchedule, line, err)
		}

		medicID, err := uuid.Parse(strings.TrimSpace(record[col["medic_id"]]))
		if err != nil {
			return 0, fmt.Errorf("%w: line %d: bad medic_id", ErrBadSchedule, line)
		}
		start, err := time.Parse(time.RFC3339, strings.TrimSpace(record[col["start_time"]]))
		if err != nil {
			return 0, fmt.Errorf("%w: line %d: bad start_time", ErrBadSchedule, line)
		}
		end, err := time.Parse(time.RFC3339, strings.TrimSpace(record[col["end_time"]]))
		if err != nil {
			return 0, fmt.Errorf("%w: line %d: bad end_time", ErrBadSchedule, line)
		}

		slot := Slot{MedicID: medicID, StartsAt: start.UTC(), EndsAt: end.UTC()}
		if err := slot.Validate(); err != nil {
			return 0, fmt.Errorf("%w: line %d: %v", ErrBadSchedule, line, err)
		}
		batch = append(batch, slot)
	}

	if len(batch) == 0 {
		return 0, fmt.Errorf("%w: no rows", ErrBadSchedule)
	}
	return im.store.CreateBatch(ctx, batch)
}

func headerIndex(header []string) (map[string]int, error) {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrBadSchedule, required)
		}
	}
	return col, nil
}
