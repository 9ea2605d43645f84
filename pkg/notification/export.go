package notification

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// csvHeader is the column layout of ExportCSV.
var csvHeader = []string{
	"id", "user_id", "type", "channel", "priority",
	"title", "content", "is_read", "is_dismissed",
	"sent_at", "read_at", "created_at",
}

// ExportCSV writes ns as CSV with a header row.
func ExportCSV(w io.Writer, ns []Notification) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range ns {
		n := &ns[i]
		record := []string{
			n.ID,
			n.UserID,
			string(n.Type),
			string(n.Channel),
			string(n.Priority),
			n.Title,
			n.Content,
			fmt.Sprintf("%t", n.IsRead),
			fmt.Sprintf("%t", n.IsDismissed),
			formatTimePtr(n.SentAt),
			formatTimePtr(n.ReadAt),
			n.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportJSON writes ns as an indented JSON array.
func ExportJSON(w io.Writer, ns []Notification) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ns); err != nil {
		return fmt.Errorf("failed to encode notifications: %w", err)
	}
	return nil
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
