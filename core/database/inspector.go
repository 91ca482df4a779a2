package database

import (
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"
)

// Column is one column of a table as reported by the database.
type Column struct {
	Field string
	Type  string
}

// TableColumns lists the columns of a table with lower-cased names and types.
// A table that does not exist has no columns.
func TableColumns(db *gorm.DB, table string) ([]Column, error) {
	var columns []Column

	if db.Dialector.Name() == DriverSQLite {
		var rows []struct {
			Name string
			Type string
		}
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", table)).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
		}
		for _, r := range rows {
			columns = append(columns, Column{Field: r.Name, Type: r.Type})
		}
	} else {
		var rows []struct {
			Field string
			Type  string
		}
		if err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", table)).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
		}
		for _, r := range rows {
			columns = append(columns, Column{Field: r.Field, Type: r.Type})
		}
	}

	for i := range columns {
		columns[i].Field = strings.ToLower(columns[i].Field)
		columns[i].Type = strings.ToLower(columns[i].Type)
	}
	return columns, nil
}

// MissingColumns returns the names in want that the table does not have.
func MissingColumns(db *gorm.DB, table string, want []string) ([]string, error) {
	columns, err := TableColumns(db, table)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, name := range want {
		found := slices.ContainsFunc(columns, func(c Column) bool {
			return c.Field == strings.ToLower(name)
		})
		if !found {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
