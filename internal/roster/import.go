// Package roster parses bulk player uploads. Operators export rosters from
// spreadsheets with loosely standardized column names, so the header row is
// normalized and common aliases are accepted before rows are loaded.
package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"auction-arena/internal/store"
)

var ErrMissingNameColumn = errors.New("missing_name_column")

var headerAliases = map[string]string{
	"player_name": "name",
	"player":      "name",
	"price":       "base_price",
}

// Parse reads a CSV roster and returns the player rows it contains.
func Parse(r io.Reader) ([]store.NewPlayer, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, raw := range header {
		name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		cols[name] = i
	}
	nameIdx, ok := cols["name"]
	if !ok {
		return nil, ErrMissingNameColumn
	}

	field := func(record []string, col string) string {
		idx, ok := cols[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	out := make([]store.NewPlayer, 0, 64)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		name := strings.TrimSpace(record[nameIdx])
		if name == "" {
			continue
		}
		p := store.NewPlayer{Name: name}
		if v := field(record, "base_price"); v != "" {
			price, err := parseMoney(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: base_price %q: %w", line, v, err)
			}
			p.BasePrice = price
		}
		if v := field(record, "category"); v != "" {
			p.Category = &v
		}
		if v := field(record, "role"); v != "" {
			role := strings.ToUpper(v)
			p.Role = &role
		}
		if v := field(record, "points"); v != "" {
			n, err := strconv.ParseInt(v, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: points %q: %w", line, v, err)
			}
			pts := int32(n)
			p.Points = &pts
		}
		out = append(out, p)
	}
	return out, nil
}

// parseMoney accepts plain integers and spreadsheet-style decimals like
// "1500000.0", truncating any fractional part.
func parseMoney(v string) (int64, error) {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// Import parses the roster and inserts the rows under projectID.
func Import(ctx context.Context, st *store.Store, projectID string, r io.Reader) (int, error) {
	players, err := Parse(r)
	if err != nil {
		return 0, err
	}
	if len(players) == 0 {
		return 0, nil
	}
	return st.InsertPlayers(ctx, projectID, players)
}
