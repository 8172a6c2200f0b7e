package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// Invoice is one driver's page of the weekly PDF.
type Invoice struct {
	Driver     DriverWeekly
	Tasks      []TaskRow
	Deductions *DeductionSummary
}

// PDFDocument is a weekly earnings document with one page per invoice.
type PDFDocument struct {
	CompanyName string
	Currency    string
	WeekStart   string
	WeekEnd     string
	GeneratedAt time.Time
	Invoices    []Invoice
}

var invoiceColumns = []struct {
	title string
	width float64
	align string
}{
	{"Date", 24, "L"},
	{"Time", 14, "C"},
	{"Title", 52, "L"},
	{"Location", 50, "L"},
	{"Status", 26, "C"},
	{"Price", 24, "R"},
}

// WritePDF renders doc to w.
func WritePDF(w io.Writer, doc PDFDocument) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s weekly earnings %s", doc.CompanyName, doc.WeekStart), true)
	pdf.SetCreator("myfleet", true)
	if !doc.GeneratedAt.IsZero() {
		pdf.SetCreationDate(doc.GeneratedAt)
		pdf.SetModificationDate(doc.GeneratedAt)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if len(doc.Invoices) == 0 {
		pdf.AddPage()
		writeHeading(pdf, tr, doc, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, tr("No drivers in this period."), "", 1, "L", false, 0, "")
	}

	for _, inv := range doc.Invoices {
		pdf.AddPage()
		writeInvoice(pdf, tr, doc, inv)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return pdf.Output(w)
}

func writeHeading(pdf *fpdf.Fpdf, tr func(string) string, doc PDFDocument, subtitle string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(doc.CompanyName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Week %s to %s", doc.WeekStart, doc.WeekEnd)), "", 1, "L", false, 0, "")
	if subtitle != "" {
		pdf.CellFormat(0, 6, tr(subtitle), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func writeInvoice(pdf *fpdf.Fpdf, tr func(string) string, doc PDFDocument, inv Invoice) {
	d := inv.Driver.Driver
	s := inv.Driver.WeeklyStats
	writeHeading(pdf, tr, doc, fmt.Sprintf("Driver: %s (ID %s)", d.Name, d.PersonalID))

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(31, 78, 121)
	pdf.SetTextColor(255, 255, 255)
	for _, col := range invoiceColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range inv.Tasks {
		values := []string{row.Date, row.Time, row.Title, row.Location, row.Status, FormatMoney(row.Price)}
		for i, col := range invoiceColumns {
			pdf.CellFormat(col.width, 6, tr(truncate(values[i], int(col.width/1.9))), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	money := func(v float64) string {
		if doc.Currency == "" {
			return FormatMoney(v)
		}
		return doc.Currency + " " + FormatMoney(v)
	}
	lines := [][2]string{
		{"Completed tasks", fmt.Sprint(s.CompletedTasks)},
		{"Accepted tasks", fmt.Sprint(s.AcceptedTasks)},
		{"Pending tasks", fmt.Sprint(s.PendingTasks)},
		{"Days worked", fmt.Sprint(s.DaysWorked)},
		{"Average per day", money(s.AveragePerDay)},
		{"Rating", fmt.Sprintf("%.2f", s.Rating)},
		{"Total earnings", money(s.Earnings)},
	}
	if inv.Deductions != nil {
		lines = append(lines,
			[2]string{"Weekly deductions (info)", money(inv.Deductions.WeeklyTotal)},
			[2]string{"Monthly deductions (info)", money(inv.Deductions.MonthlyTotal)},
			[2]string{"One-time deductions (info)", money(inv.Deductions.OneTimeTotal)},
		)
	}

	for i, line := range lines {
		style := ""
		if i == 6 {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(60, 6, tr(line[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, tr(line[1]), "", 1, "R", false, 0, "")
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if max < 4 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
