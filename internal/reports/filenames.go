package reports

import (
	"fmt"
	"regexp"
)

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func CSVFilename(weekStart string) string {
	return fmt.Sprintf("tasks-%s.csv", weekStart)
}

func XLSXFilename(weekStart string) string {
	return fmt.Sprintf("tasks-%s.xlsx", weekStart)
}

// InvoiceFilename keys a single-driver invoice by personal id and week start.
func InvoiceFilename(personalID, weekStart string) string {
	if personalID == "" {
		personalID = "driver"
	}
	return fmt.Sprintf("invoice-%s-%s.pdf", unsafeFilename.ReplaceAllString(personalID, "_"), weekStart)
}

func WeeklyPDFFilename(weekStart string) string {
	return fmt.Sprintf("weekly-report-%s.pdf", weekStart)
}
