// Package archive reads and writes backup archive files. Two formats are
// supported: a zip bundle and gzip-compressed JSON. The payload in both is
// the same JSON export envelope.
package archive

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/pgzip"

	"github.com/stocktrack/stockkeeper/internal/models"
)

// ExportVersion is written into every archive for forward compatibility.
const ExportVersion = "1.0"

// entryName is the payload file name inside zip archives.
const entryName = "export.json"

// Export is the JSON envelope stored inside every backup archive.
type Export struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exportedAt"`
	Items        []models.Item       `json:"items"`
	AuditEntries []models.AuditEntry `json:"auditEntries,omitempty"`
}

// Filename builds the archive file name for a backup taken at ts.
func Filename(t models.BackupType, format models.BackupFormat, ts time.Time) string {
	return fmt.Sprintf("backup-%s-%s.%s",
		strings.ToLower(string(t)), ts.UTC().Format("20060102-150405"), format)
}

// Write stores the export at path in the given format and returns the
// file size and hex-encoded SHA-256 checksum of the written archive.
func Write(path string, format models.BackupFormat, exp *Export) (int64, string, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, "", fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	cw := &countingWriter{w: io.MultiWriter(f, h)}

	switch format {
	case models.FormatZip:
		err = writeZip(cw, exp)
	case models.FormatJSONGz:
		err = writeGzip(cw, exp)
	default:
		err = fmt.Errorf("unknown backup format %q", format)
	}
	if err != nil {
		return 0, "", err
	}
	return cw.n, hex.EncodeToString(h.Sum(nil)), nil
}

func writeZip(w io.Writer, exp *Export) error {
	zw := zip.NewWriter(w)
	entry, err := zw.Create(entryName)
	if err != nil {
		return fmt.Errorf("create zip entry: %w", err)
	}
	if err := json.NewEncoder(entry).Encode(exp); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return zw.Close()
}

func writeGzip(w io.Writer, exp *Export) error {
	gz := pgzip.NewWriter(w)
	if err := json.NewEncoder(gz).Encode(exp); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return gz.Close()
}

// Read loads and decodes the export stored at path in the given format.
func Read(path string, format models.BackupFormat) (*Export, error) {
	switch format {
	case models.FormatZip:
		return readZip(path)
	case models.FormatJSONGz:
		return readGzip(path)
	default:
		return nil, fmt.Errorf("unknown backup format %q", format)
	}
}

func readZip(path string) (*Export, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != entryName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open zip entry: %w", err)
		}
		defer rc.Close()
		return decode(rc)
	}
	return nil, fmt.Errorf("zip archive has no %s entry", entryName)
}

func readGzip(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()
	return decode(gz)
}

func decode(r io.Reader) (*Export, error) {
	var exp Export
	if err := json.NewDecoder(r).Decode(&exp); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	return &exp, nil
}

// Checksum returns the hex-encoded SHA-256 of the file at path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash archive: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
