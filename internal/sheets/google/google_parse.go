package google

import (
	"fmt"
	"strconv"
	"strings"

	"budgetsip/internal/core"
)

// Column layout of the expenses sheet: A id, B date, C amount, D category,
// E note, F payment mode. Row 1 may hold a header.
const lastColumn = "F"

// expenseRow renders e in sheet column order.
func expenseRow(e core.Expense) []interface{} {
	amount, _ := e.Amount.Float64()
	return []interface{}{e.ID, e.Date.String(), amount, e.Category, e.Note, e.PaymentMode}
}

// findRow returns the 1-based row whose column A holds id, or 0 when absent.
func findRow(values [][]interface{}, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want {
			return i + 1
		}
	}
	return 0
}

// rowRange returns the A1 range covering one expense row.
func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", sheet, row, lastColumn, row)
}
