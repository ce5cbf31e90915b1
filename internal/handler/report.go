package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/repository"
)

type ReportHandler struct {
	Repo repository.ReportRepository
}

func (h ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/collections/export", h.exportCollections)
}

func (h ReportHandler) exportCollections(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateQuery(r, "startDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	to, err := parseDateQuery(r, "endDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate")
		return
	}
	rows, err := h.Repo.Collections(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	suffix := time.Now().Format("20060102")
	switch r.URL.Query().Get("format") {
	case "", "xlsx", "excel":
		data, err := exportCollectionsXLSX(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"collections_%s.xlsx\"", suffix))
		_, _ = w.Write(data)
	case "csv":
		data, err := exportCollectionsCSV(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"collections_%s.csv\"", suffix))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

func collectionRowValues(row repository.CollectionRow) []any {
	installment := ""
	if row.InstallmentNumber != nil {
		installment = strconv.Itoa(*row.InstallmentNumber)
	}
	amount := ""
	if row.AmountPaid != nil {
		amount = row.AmountPaid.StringFixed(2)
	}
	return []any{
		row.RecordedAt.Format("2006-01-02 15:04"),
		row.ClientName,
		row.CollectorName,
		row.DebtID,
		installment,
		row.Status,
		amount,
		row.Notes,
	}
}

func exportCollectionsCSV(rows []repository.CollectionRow) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"recorded_at", "client", "collector", "debt_id", "installment", "status", "amount_paid", "notes"})
	for _, row := range rows {
		values := collectionRowValues(row)
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = fmt.Sprint(v)
		}
		_ = w.Write(record)
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportCollectionsXLSX(rows []repository.CollectionRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Collections"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"Recorded At", "Client", "Collector", "Debt ID", "Installment", "Status", "Amount Paid", "Notes"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for i, row := range rows {
		for c, v := range collectionRowValues(row) {
			cell, _ := excelize.CoordinatesToCellName(c+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "C", 24)
	_ = f.SetColWidth(sheet, "D", "D", 38)
	_ = f.SetColWidth(sheet, "E", "G", 14)
	_ = f.SetColWidth(sheet, "H", "H", 36)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "H1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
