// package formatter renders sync results as a terminal summary or a report file (Markdown, CSV, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/spotsync/internal/services"
	"github.com/desertthunder/spotsync/internal/tasks"
)

// Unknown stands in for empty account fields.
const Unknown = "Unknown"

// AccountLine formats an account as "Display Name (id)".
func AccountLine(a *services.Account) string {
	if a == nil {
		return Unknown
	}
	return fmt.Sprintf("%s (%s)", orUnknown(a.DisplayName), orUnknown(a.ID))
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

// ExportToText writes the end-of-run summary: one line per category.
func ExportToText(result *tasks.Result) ([]byte, error) {
	var buf bytes.Buffer

	if result.DryRun {
		buf.WriteString("Dry run: nothing was written to the target account.\n")
	}
	buf.WriteString(fmt.Sprintf("Source: %s\n", AccountLine(result.Source)))
	buf.WriteString(fmt.Sprintf("Target: %s\n\n", AccountLine(result.Target)))

	for _, cr := range result.Categories {
		buf.WriteString(fmt.Sprintf("%-12s %5d in source, %5d in target, %5d added\n",
			cr.Category.Title()+":", cr.SourceCount, cr.TargetCount, len(cr.Added)))
	}

	if pr := result.Playlists; pr != nil {
		buf.WriteString(fmt.Sprintf("%-12s %5d in source, %5d in target, %5d added\n",
			tasks.Playlists.Title()+":", pr.SourceCount, pr.TargetCount, len(pr.Created)))
		for _, cp := range pr.Created {
			buf.WriteString(fmt.Sprintf("  + %s (%d tracks)%s\n", cp.Name, cp.Tracks, partialNote(cp)))
		}
		if len(pr.Empty) > 0 {
			buf.WriteString(fmt.Sprintf("  skipped %d empty: %s\n", len(pr.Empty), strings.Join(pr.Empty, ", ")))
		}
	}

	if !result.Finished.IsZero() && !result.Started.IsZero() {
		buf.WriteString(fmt.Sprintf("\nFinished in %s\n", result.Finished.Sub(result.Started).Round(time.Millisecond)))
	}
	return buf.Bytes(), nil
}

// WriteSummary writes [ExportToText] output to w.
func WriteSummary(w io.Writer, result *tasks.Result) error {
	data, err := ExportToText(result)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ExportToMarkdown renders a report listing every added ID per category.
func ExportToMarkdown(result *tasks.Result) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Library sync report\n\n")
	if !result.Started.IsZero() {
		buf.WriteString(fmt.Sprintf("**Started**: %s\n", result.Started.Format(time.RFC3339)))
	}
	buf.WriteString(fmt.Sprintf("**Source**: %s\n", AccountLine(result.Source)))
	buf.WriteString(fmt.Sprintf("**Target**: %s\n", AccountLine(result.Target)))
	if result.DryRun {
		buf.WriteString("**Mode**: dry run\n")
	}
	buf.WriteString("\n")

	buf.WriteString("| Category | Source | Target | Added |\n")
	buf.WriteString("|---|---:|---:|---:|\n")
	for _, cr := range result.Categories {
		buf.WriteString(fmt.Sprintf("| %s | %d | %d | %d |\n", cr.Category.Title(), cr.SourceCount, cr.TargetCount, len(cr.Added)))
	}
	if pr := result.Playlists; pr != nil {
		buf.WriteString(fmt.Sprintf("| %s | %d | %d | %d |\n", tasks.Playlists.Title(), pr.SourceCount, pr.TargetCount, len(pr.Created)))
	}

	for _, cr := range result.Categories {
		if len(cr.Added) == 0 {
			continue
		}
		buf.WriteString(fmt.Sprintf("\n## %s\n\n", cr.Category.Title()))
		for _, id := range cr.Added {
			buf.WriteString(fmt.Sprintf("- `%s`\n", id))
		}
	}

	if pr := result.Playlists; pr != nil && (len(pr.Created) > 0 || len(pr.Empty) > 0) {
		buf.WriteString(fmt.Sprintf("\n## %s\n\n", tasks.Playlists.Title()))
		for i, cp := range pr.Created {
			buf.WriteString(fmt.Sprintf("%d. %s (%d tracks)%s\n", i+1, cp.Name, cp.Tracks, partialNote(cp)))
		}
		if len(pr.Empty) > 0 {
			buf.WriteString("\n**Skipped (empty)**:\n\n")
			for _, name := range pr.Empty {
				buf.WriteString(fmt.Sprintf("- %s\n", name))
			}
		}
	}

	return buf.Bytes(), nil
}

func partialNote(cp tasks.PlaylistCopy) string {
	if cp.Partial {
		return " [incomplete: adding tracks failed]"
	}
	return ""
}

// uri builds the Spotify URI of an item in category c.
func uri(c tasks.Category, id string) string {
	kind := map[tasks.Category]string{
		tasks.Tracks:    "track",
		tasks.Albums:    "album",
		tasks.Artists:   "artist",
		tasks.Playlists: "playlist",
	}[c]
	return "spotify:" + kind + ":" + id
}

// ExportToCSV writes one row per added item with columns: Category, ID, URI.
// Playlists use their target ID, or the source ID in a dry run.
func ExportToCSV(result *tasks.Result) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Category", "ID", "URI"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, cr := range result.Categories {
		for _, id := range cr.Added {
			if err := writer.Write([]string{cr.Category.String(), id, uri(cr.Category, id)}); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}
	if pr := result.Playlists; pr != nil {
		for _, cp := range pr.Created {
			id := cp.TargetID
			if id == "" {
				id = cp.SourceID
			}
			if err := writer.Write([]string{tasks.Playlists.String(), id, uri(tasks.Playlists, id)}); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteReport writes the result to path. The extension picks the format: .csv, .txt, otherwise Markdown.
func WriteReport(path string, result *tasks.Result) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		data, err = ExportToCSV(result)
	case ".txt":
		data, err = ExportToText(result)
	default:
		data, err = ExportToMarkdown(result)
	}
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// AccountDetails formats an account as "Display Name (ID: id, Email: email)".
func AccountDetails(a *services.Account) string {
	if a == nil {
		return Unknown
	}
	return fmt.Sprintf("%s (ID: %s, Email: %s)", orUnknown(a.DisplayName), orUnknown(a.ID), orUnknown(a.Email))
}
