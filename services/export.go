package services

import (
	"bytes"
	"fmt"
	"lessonbook_app_go/models"

	"github.com/xuri/excelize/v2"
)

const reservationsSheet = "Reservations"

var reservationColumns = []string{
	"Date", "Start", "End", "Hours", "Customer", "Email", "Phone", "Amount", "Status", "Source", "Notes",
}

// ExportReservationsXLSX renders reservations as a spreadsheet
func ExportReservationsXLSX(reservations []models.ScheduledReservation, currency string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reservationsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(reservationColumns))
	for i, col := range reservationColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(reservationsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		f.SetRowStyle(reservationsSheet, 1, 1, style)
	}

	for i, r := range reservations {
		phone := ""
		if r.Customer.Phone != nil {
			phone = *r.Customer.Phone
		}
		hours, _ := r.Hours.Float64()
		amount, _ := r.AmountPaid.Float64()
		row := []interface{}{
			FormatDate(r.Date), r.StartTime, r.EndTime, hours,
			r.Customer.Name, r.Customer.Email, phone,
			amount, string(r.PaymentStatus), r.Source, r.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(reservationsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if currency != "" {
		f.SetCellValue(reservationsSheet, "H1", "Amount ("+currency+")")
	}
	f.SetColWidth(reservationsSheet, "E", "F", 28)
	f.SetColWidth(reservationsSheet, "K", "K", 40)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
