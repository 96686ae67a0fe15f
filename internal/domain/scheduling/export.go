package scheduling

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"
)

var exportHeader = []string{
	"Patient", "Doctor", "Date", "Time", "Status", "Patient Address", "Doctor Address", "CreatedAt",
}

// ExportCSV renders the filtered admin listing, unpaginated, as CSV. The
// whole document is built before returning so callers can still report a
// failure as an error response.
func (s *Service) ExportCSV(ctx context.Context, f ListFilter) ([]byte, error) {
	appts, _, err := s.ListAll(ctx, f, 0, 0)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, a := range appts {
		created := ""
		if a.CreatedAt != nil {
			created = a.CreatedAt.UTC().Format(time.RFC3339)
		}
		if err := cw.Write([]string{
			a.PatientName, a.DoctorName, a.Date, a.Time, string(a.Status),
			a.PatientAddress, a.DoctorAddress, created,
		}); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
