// package formatter exports playlists to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/shared"
)

// Format names an export format.
type Format string

const (
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "txt"
)

// Formats lists the supported export formats.
var Formats = []Format{JSON, CSV, Markdown, Text}

// ParseFormat accepts a format name or common alias (md, text).
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "txt", "text", "":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, name)
	}
}

// Extension returns the file extension, with the leading dot.
func (f Format) Extension() string {
	if f == Markdown {
		return ".md"
	}
	return "." + string(f)
}

// Export renders playlist in format.
func Export(playlist *models.Playlist, format Format) ([]byte, error) {
	switch format {
	case JSON:
		return ExportToJSON(playlist)
	case CSV:
		return ExportToCSV(playlist)
	case Markdown:
		return ExportToMarkdown(playlist)
	case Text:
		return ExportToText(playlist)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// ExportToJSON renders the playlist with every entry and its contact, indented.
func ExportToJSON(playlist *models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlist, true)
}

// ExportToCSV converts a playlist to CSV with columns: Position, Title, Artist, Album, Duration, URI, Contact
func ExportToCSV(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artist", "Album", "Duration", "URI", "Contact"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, e := range playlist.Entries {
		record := []string{
			strconv.Itoa(i + 1),
			e.Song.Title,
			e.Song.Artist,
			e.Song.Album,
			shared.FormatDuration(e.Song.DurationMS),
			e.Song.Key(),
			e.Contact.DisplayName(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to Markdown, crediting the contact behind each song
func ExportToMarkdown(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", playlist.Name)
	fmt.Fprintf(&buf, "**Songs**: %d\n", playlist.Len())
	if !playlist.CreatedAt.IsZero() {
		fmt.Fprintf(&buf, "**Created**: %s\n", playlist.CreatedAt.Format(time.DateOnly))
	}
	if playlist.Location != "" {
		fmt.Fprintf(&buf, "**Location**: %s\n", playlist.Location)
	}

	buf.WriteString("\n## Songs\n\n")
	for i, e := range playlist.Entries {
		albumPart := ""
		if e.Song.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", e.Song.Album)
		}
		fmt.Fprintf(&buf, "%d. %s%s [%s] _for %s_\n",
			i+1, e.Song.String(), albumPart, shared.FormatDuration(e.Song.DurationMS), e.Contact.DisplayName())
	}
	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text
func ExportToText(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", playlist.Name)
	if playlist.Location != "" {
		fmt.Fprintf(&buf, "Location: %s\n", playlist.Location)
	}
	fmt.Fprintf(&buf, "Songs: %d\n\n", playlist.Len())

	for i, e := range playlist.Entries {
		fmt.Fprintf(&buf, "%d. %s (%s)\n", i+1, e.Song.String(), e.Contact.DisplayName())
	}
	return buf.Bytes(), nil
}

// WriteExport renders playlist in format and writes it to path.
//
// An empty path defaults to {playlist name}{extension} in the working directory; parent
// directories are created as needed. Returns the path written.
func WriteExport(playlist *models.Playlist, format Format, path string) (string, error) {
	if path == "" {
		path = Filename(playlist.Name) + format.Extension()
	}

	data, err := Export(playlist, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return path, nil
}

var unsafeFilename = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Filename turns a playlist name into a lowercase, dash-separated file name.
func Filename(name string) string {
	slug := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		return "playlist"
	}
	return slug
}

// WriteHistory writes one aligned row per stored playlist: ID, name, songs/target, created, location.
func WriteHistory(w io.Writer, playlists []*models.PersistedPlaylist) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSONGS\tCREATED\tLOCATION")
	for _, p := range playlists {
		location := p.Location()
		if location == "" {
			location = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\t%s\n",
			p.ID(), p.Name(), p.SongCount(), p.TargetCount(), p.CreatedAt().Local().Format(time.DateTime), location)
	}
	return tw.Flush()
}

// WriteContacts writes one aligned row per contact: ID, first name, full name.
func WriteContacts(w io.Writer, contacts []models.Contact) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFIRST NAME\tNAME")
	for _, c := range contacts {
		first := c.FirstName
		if first == "" {
			first = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, first, c.DisplayName())
	}
	return tw.Flush()
}
