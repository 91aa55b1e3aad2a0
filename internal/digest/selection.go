package digest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// TableSelection is the set of columns a caller picked from one table.
type TableSelection struct {
	Table   string
	Columns []string
}

// Selection maps table names to selected columns, in the order the caller
// listed the tables.
type Selection []TableSelection

// UnmarshalJSON decodes {"table": ["col", ...], ...} keeping key order.
// A list of bare table names is rejected.
func (s *Selection) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("tables must be an object mapping table names to column lists")
	}

	out := Selection{}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		table, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected table key %v", tok)
		}
		if seen[table] {
			return fmt.Errorf("table %q listed more than once", table)
		}
		seen[table] = true

		var columns []string
		if err := dec.Decode(&columns); err != nil {
			return fmt.Errorf("columns of table %q: %w", table, err)
		}
		out = append(out, TableSelection{Table: table, Columns: columns})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = out
	return nil
}
