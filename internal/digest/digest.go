// Package digest builds the column-filtered schema summary that is handed to
// the generation service.
package digest

import (
	"context"
	"fmt"
	"strings"

	"datamodeler/internal/database"
)

// Block is the digest entry of one table.
type Block struct {
	Table   string
	Columns []database.Column
}

// Digest is an ordered list of table blocks.
type Digest []Block

// Render formats the digest as plain text:
//
//	Table: users
//	- id: integer
//	- email: text
//
// Blocks are separated by a blank line. An empty digest renders as "".
func (d Digest) Render() string {
	var b strings.Builder
	for i, block := range d {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Table: %s\n", block.Table)
		for _, col := range block.Columns {
			fmt.Fprintf(&b, "- %s: %s\n", col.Name, col.Type)
		}
	}
	return b.String()
}

// Build describes every selected table through catalog and keeps only the
// selected columns, in catalog order. A failing table fails the whole build.
func Build(ctx context.Context, catalog database.Catalog, conn database.DatabaseConfig, sel Selection) (Digest, error) {
	d := make(Digest, 0, len(sel))

	for _, ts := range sel {
		columns, err := catalog.DescribeTable(ctx, conn, ts.Table)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", ts.Table, err)
		}

		wanted := make(map[string]struct{}, len(ts.Columns))
		for _, name := range ts.Columns {
			wanted[name] = struct{}{}
		}

		block := Block{Table: ts.Table, Columns: []database.Column{}}
		for _, col := range columns {
			if _, ok := wanted[col.Name]; ok {
				block.Columns = append(block.Columns, col)
			}
		}
		d = append(d, block)
	}

	return d, nil
}
