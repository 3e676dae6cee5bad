package dms

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

// csvHeader matches the columns users see in the app.
var csvHeader = []string{"Name", "Platform", "Sent Date", "Follow-up Date", "Status", "Note"}

// ExportCSV writes all of the owner's DMs as CSV, ordered the same way the
// list endpoint orders them. Dates are day-granular.
func (s *Service) ExportCSV(ctx context.Context, ownerID uint, w io.Writer) error {
	dms, err := s.List(ctx, ownerID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, dm := range dms {
		row := []string{
			dm.Name,
			string(dm.Platform),
			dm.SentDate.Format("2006-01-02"),
			dm.FollowupDate.Format("2006-01-02"),
			string(dm.Status),
			dm.Note,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
