package buyers

import (
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	"github.com/angelmondragon/dealerdesk-backend/pkg/export"
)

// ExportBase is the download filename prefix for the buyers directory.
const ExportBase = "buyers_list"

var exportHeaders = []string{"الاسم", "رقم التليفون", "الرقم القومي", "الوظيفة", "العنوان"}

// ExportTable lays out the buyers directory for CSV/XLSX download.
func ExportTable(list []models.Buyer) export.Table {
	rows := make([][]any, 0, len(list))
	for _, b := range list {
		rows = append(rows, []any{b.Name, b.Phone, b.IDNumber, b.Job, b.Address})
	}
	return export.Table{Sheet: "Buyers", Headers: exportHeaders, Rows: rows}
}
