package db

import (
	"context"
	"fmt"
)

// RequiredTables lists every table the API reads or writes.
var RequiredTables = []string{
	"inventory",
	"showroom",
	"investors",
	"buyers",
	"contracts",
	"installments",
	"title_transfers",
	"settings",
	"users",
	"outbox_events",
}

// MissingTables reports which of tables do not exist. With no arguments it
// checks RequiredTables.
func (c *Client) MissingTables(ctx context.Context, tables ...string) ([]string, error) {
	if len(tables) == 0 {
		tables = RequiredTables
	}
	migrator := c.conn.WithContext(ctx).Migrator()
	missing := []string{}
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("probe schema: %w", err)
		}
		if !migrator.HasTable(table) {
			missing = append(missing, table)
		}
	}
	return missing, nil
}
