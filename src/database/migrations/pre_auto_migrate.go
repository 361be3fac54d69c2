package migrations

import (
	"database/sql"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// legacyNumericColumns were exported as text by the hosted backend the journal
// was migrated from.
var legacyNumericColumns = []string{"rr", "risk_percentage", "pnl_dollar"}

// PrepareLegacyTradeColumns converts text-typed numeric columns on trades to
// double precision, turning empty strings into NULL, so that AutoMigrate does
// not fail on the type change. Postgres only.
func PrepareLegacyTradeColumns(db *gorm.DB) error {
	for _, column := range legacyNumericColumns {
		columnType, exists, err := lookupColumnType(db, "trades", column)
		if err != nil {
			return fmt.Errorf("inspect trades.%s: %w", column, err)
		}

		if !exists || !isStringy(columnType) {
			continue
		}

		if err := db.Exec(castNumericColumnSQL("trades", column)).Error; err != nil {
			return fmt.Errorf("convert trades.%s to double precision: %w", column, err)
		}
	}

	return nil
}

func castNumericColumnSQL(table, column string) string {
	return fmt.Sprintf(
		"ALTER TABLE %s ALTER COLUMN %s TYPE double precision USING NULLIF(TRIM(%s), '')::double precision",
		table, column, column,
	)
}

func lookupColumnType(db *gorm.DB, table, column string) (dataType string, exists bool, err error) {
	row := db.Raw(
		`SELECT data_type FROM information_schema.columns WHERE table_name = ? AND column_name = ?`,
		table,
		column,
	).Row()

	if scanErr := row.Scan(&dataType); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, scanErr
	}

	return dataType, true, nil
}

func isStringy(dataType string) bool {
	dataType = strings.ToLower(dataType)
	return strings.Contains(dataType, "char") || dataType == "text"
}
