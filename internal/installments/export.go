package installments

import (
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	"github.com/angelmondragon/dealerdesk-backend/pkg/export"
)

var exportHeaders = []string{"#", "تاريخ الاستحقاق", "قيمة القسط", "الحالة", "تاريخ السداد"}

// ExportTable lays out a contract's schedule in due-date order.
func ExportTable(list []models.Installment) export.Table {
	rows := make([][]any, 0, len(list))
	for i, inst := range list {
		var paid any
		if inst.PaidDate != nil {
			paid = *inst.PaidDate
		}
		rows = append(rows, []any{i + 1, inst.DueDate, inst.Amount, inst.Status.Label(), paid})
	}
	return export.Table{Sheet: "Installments", Headers: exportHeaders, Rows: rows}
}
