package output

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/law-makers/linkclean/pkg/models"
)

var csvHeader = []string{
	"index", "input", "cleaned_url", "modified", "error", "timestamp", "domain",
	"discovered_keys", "title", "description", "site_name", "image_url", "icon_url",
	"preview_message", "duration_ms",
}

// WriteCSV writes one row per batch item
func WriteCSV(w io.Writer, items []models.BatchItem) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, item := range items {
		r := item.Result
		row := []string{
			strconv.Itoa(item.Index),
			item.Input,
			r.CleanedURL,
			strconv.FormatBool(r.WasModified),
			string(r.ErrorKind),
			r.TimestampDisplay(),
			item.Domain,
			strings.Join(r.DiscoveredKeys, " "),
		}

		var rec models.PreviewRecord
		var message string
		if item.Preview != nil {
			message = item.Preview.Message
			if item.Preview.Record != nil {
				rec = *item.Preview.Record
			}
		}
		row = append(row,
			rec.Title, rec.Description, rec.SiteName, rec.ImageURL, rec.IconURL,
			message,
			strconv.FormatInt(item.Duration, 10),
		)

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveCSV writes batch items to a CSV file
func SaveCSV(items []models.BatchItem, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, items)
}
