package reports

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/susp3kt93/myfleet-sub000/internal/models"
)

const unassigned = "Unassigned"

// TaskRow is one flattened task line shared by the CSV, XLSX and PDF exports.
type TaskRow struct {
	Date        string
	Time        string
	DriverID    string
	Driver      string
	PersonalID  string
	Title       string
	Description string
	Location    string
	Price       float64
	Status      string
}

var TaskHeader = []string{"Date", "Time", "Driver", "Driver ID", "Title", "Description", "Location", "Price", "Status"}

func (r TaskRow) Fields() []string {
	return []string{
		r.Date,
		r.Time,
		r.Driver,
		r.PersonalID,
		r.Title,
		r.Description,
		r.Location,
		FormatMoney(r.Price),
		r.Status,
	}
}

// TaskRows flattens tasks ordered by date, time, then driver name.
func TaskRows(tasks []*models.Task, drivers []*models.User) []TaskRow {
	byID := make(map[string]*models.User, len(drivers))
	for _, d := range drivers {
		byID[d.ID.Hex()] = d
	}

	rows := make([]TaskRow, 0, len(tasks))
	for _, t := range tasks {
		row := TaskRow{
			Date:        t.ScheduledDate.String(),
			Time:        t.ScheduledTime,
			Driver:      unassigned,
			Title:       t.Title,
			Description: t.Description,
			Location:    t.Location,
			Price:       t.Price,
			Status:      string(t.Status),
		}
		if t.AssignedToID != nil {
			row.DriverID = t.AssignedToID.Hex()
			if d, ok := byID[row.DriverID]; ok {
				row.Driver = d.Name
				row.PersonalID = d.PersonalID
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		if rows[i].Time != rows[j].Time {
			return rows[i].Time < rows[j].Time
		}
		return rows[i].Driver < rows[j].Driver
	})
	return rows
}

// WriteCSV writes a header and one line per row. Every field is wrapped in
// double quotes and embedded quotes are doubled.
func WriteCSV(w io.Writer, rows []TaskRow) error {
	bw := bufio.NewWriter(w)
	if err := writeQuotedLine(bw, TaskHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeQuotedLine(bw, row.Fields()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeQuotedLine(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quote(f)); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FormatMoney renders v with exactly two decimals.
func FormatMoney(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', 2, 64)
}
