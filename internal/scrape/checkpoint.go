// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCheckpointMissing is returned when a stage's input checkpoint does
// not exist. The stage is skipped for that year only.
var ErrCheckpointMissing = errors.New("checkpoint file not found")

// PageHTMLPath is the raw listing page saved for a year.
func PageHTMLPath(workDir string, year int) string {
	return filepath.Join(workDir, fmt.Sprintf("page_%d.html", year))
}

// PapersPath is the listing checkpoint (PaperRecord array).
func PapersPath(workDir string, year int) string {
	return filepath.Join(workDir, fmt.Sprintf("papers_%d.json", year))
}

// PDFLinksPath is the resolution checkpoint (PdfLinkRecord array).
func PDFLinksPath(workDir string, year int) string {
	return filepath.Join(workDir, fmt.Sprintf("pdf_links_%d.json", year))
}

// UpdatedPath is the classified output (ClassifiedPaperRecord array).
func UpdatedPath(workDir string, year int) string {
	return filepath.Join(workDir, fmt.Sprintf("pdf_links_%d_updated.json", year))
}

// PDFDir is the download directory for a year.
func PDFDir(workDir string, year int) string {
	return filepath.Join(workDir, fmt.Sprintf("pdf_%d", year))
}

// PDFPath is where the PDF for title is stored.
func PDFPath(workDir string, year int, title string) string {
	return filepath.Join(PDFDir(workDir, year), SanitizeFilename(title)+".pdf")
}

// WriteJSON writes v as an indented JSON array, replacing any previous
// content of path. Non-ASCII text and HTML characters are written as-is.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	return WriteFile(path, buf.Bytes())
}

// ReadJSON decodes the checkpoint at path into v. A missing file yields
// an error wrapping ErrCheckpointMissing.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrCheckpointMissing, path)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// WriteFile writes data to a temporary file next to path and renames it
// into place, so readers never observe a partial checkpoint or PDF.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".scrape-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
