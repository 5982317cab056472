// package formatter provides functions to export recommendation results to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tunesift/tunesift/internal/models"
	"github.com/tunesift/tunesift/internal/shared"
)

// ExportToCSV converts a RecommendResult to CSV format with columns: Rank, Track, Artist, Similarity, Tags, Reason, Preview, LastFM
func ExportToCSV(result *models.RecommendResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "Track", "Artist", "Similarity", "Tags", "Reason", "Preview", "LastFM"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range result.Items {
		record := []string{
			strconv.Itoa(item.Rank),
			item.Track,
			item.Artist,
			similarityString(item),
			strings.Join(item.Tags, "; "),
			item.Reason,
			item.PreviewURL,
			item.LastFMURL,
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

// ExportToMarkdown converts a RecommendResult to Markdown format with optional cover image
func ExportToMarkdown(result *models.RecommendResult, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", headline(result)))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if result.Message != "" {
		buf.WriteString(fmt.Sprintf("**%s**\n\n", result.Message))
	}

	buf.WriteString(fmt.Sprintf("**Mode**: %s\n", result.Mode))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(result.Items)))

	buf.WriteString("## Tracks\n\n")
	for _, item := range result.Items {
		title := fmt.Sprintf("%s - %s", item.Artist, item.Track)
		if item.LastFMURL != "" {
			title = fmt.Sprintf("[%s](%s)", title, item.LastFMURL)
		}

		simPart := ""
		if sim := similarityString(item); sim != "" {
			simPart = fmt.Sprintf(" [%s]", sim)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s\n", item.Rank, title, simPart))

		if item.Reason != "" {
			buf.WriteString(fmt.Sprintf("   - %s\n", item.Reason))
		}
		if item.PreviewURL != "" {
			buf.WriteString(fmt.Sprintf("   - [Preview](%s)\n", item.PreviewURL))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a RecommendResult to plain text format
func ExportToText(result *models.RecommendResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Query: %s\n", result.QueryRaw))
	if result.Message != "" {
		buf.WriteString(fmt.Sprintf("%s\n", result.Message))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(result.Items)))

	for _, item := range result.Items {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", item.Rank, item.Artist, item.Track))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of the result metadata (without items)
func ToMetadataJSON(result *models.RecommendResult) ([]byte, error) {
	metadata := struct {
		Mode           models.Mode `json:"mode"`
		ResolvedTrack  string      `json:"resolved_track,omitempty"`
		ResolvedArtist string      `json:"resolved_artist,omitempty"`
		QueryRaw       string      `json:"query_raw"`
		Message        string      `json:"message"`
		Items          int         `json:"items"`
	}{
		Mode:           result.Mode,
		ResolvedTrack:  result.ResolvedTrack,
		ResolvedArtist: result.ResolvedArtist,
		QueryRaw:       result.QueryRaw,
		Message:        result.Message,
		Items:          len(result.Items),
	}
	return shared.MarshalJSON(metadata, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a result to CSV format with accompanying metadata JSON file.
//
// Defaults to a slug of the query as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(result *models.RecommendResult, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = Slug(result.QueryRaw)
	}

	csvData, err := ExportToCSV(result)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(result)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a result to Markdown format in a dedicated directory.
//
// Directory name defaults to a slug of the query.
// The imageURL parameter is optional - if provided, attempts to download the cover image
// (typically the artwork of the top-ranked item).
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(result *models.RecommendResult, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = Slug(result.QueryRaw)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	exportResult := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := fmt.Sprintf("%s/%s", outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				exportResult.CoverImage = coverImagePath
				exportResult.Files = append(exportResult.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(result, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	exportResult.Files = append(exportResult.Files, mdFile)

	return exportResult, nil
}

// WriteTextExport exports a result to plain text format.
//
// Defaults to {slug}_tracks.txt as the filename.
func WriteTextExport(result *models.RecommendResult, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_tracks.txt", Slug(result.QueryRaw))
	}

	textData, err := ExportToText(result)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

// Slug converts free text into a filesystem-friendly base name. Empty or
// fully non-alphanumeric input falls back to "recommendations".
func Slug(text string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "recommendations"
	}
	return slug
}

// headline picks the most specific identity for the Markdown title.
func headline(result *models.RecommendResult) string {
	switch {
	case result.ResolvedTrack != "" && result.ResolvedArtist != "":
		return fmt.Sprintf("Recommendations for %s - %s", result.ResolvedTrack, result.ResolvedArtist)
	case result.ResolvedArtist != "":
		return fmt.Sprintf("Recommendations for %s", result.ResolvedArtist)
	default:
		return "Recommendations"
	}
}

func similarityString(item models.TrackRecommendation) string {
	if item.Similarity == nil {
		return ""
	}
	return strconv.FormatFloat(*item.Similarity, 'f', 2, 64)
}
