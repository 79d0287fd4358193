package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"unicode"
)

var ErrFileValidation = errors.New("file validation failed")

// allowedContentTypes are the media types accepted for deal uploads.
// Browsers are inconsistent about JSON and XLSX types, hence the aliases.
var allowedContentTypes = map[string]bool{
	"application/json": true,
	"text/json":        true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel":  true,
	"application/octet-stream":  true,
	"text/plain":                true,
}

// xlsxMagic is the ZIP local-file-header signature; XLSX files are ZIP
// containers.
var xlsxMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// ValidateUpload checks the declared content type and the file's leading
// bytes against the extension before any parsing happens.
func ValidateUpload(file multipart.File, header *multipart.FileHeader) error {
	declared := header.Header.Get("Content-Type")
	if declared != "" {
		mediaType := strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
		if !allowedContentTypes[mediaType] {
			return fmt.Errorf("%w: content type %q not allowed", ErrFileValidation, declared)
		}
	}

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%w: could not read file head: %v", ErrFileValidation, err)
	}
	buf = buf[:n]

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: could not rewind file: %v", ErrFileValidation, err)
	}

	name := strings.ToLower(header.Filename)
	switch {
	case strings.HasSuffix(name, ".json"):
		if !looksLikeJSON(buf) {
			return fmt.Errorf("%w: file does not look like JSON", ErrFileValidation)
		}
	case strings.HasSuffix(name, ".xlsx"), strings.HasSuffix(name, ".xlsm"):
		if !bytes.HasPrefix(buf, xlsxMagic) {
			return fmt.Errorf("%w: file does not look like an Excel workbook", ErrFileValidation)
		}
	case strings.HasSuffix(name, ".xls"):
		// Legacy .xls uses the OLE compound-file signature.
		if !bytes.HasPrefix(buf, []byte{0xD0, 0xCF, 0x11, 0xE0}) && !bytes.HasPrefix(buf, xlsxMagic) {
			return fmt.Errorf("%w: file does not look like an Excel workbook", ErrFileValidation)
		}
	default:
		return fmt.Errorf("%w: unsupported file extension", ErrFileValidation)
	}

	// Cross-check with sniffed type for the workbook formats.
	sniffed := http.DetectContentType(buf)
	if strings.HasSuffix(name, ".xlsx") && !strings.Contains(sniffed, "zip") && sniffed != "application/octet-stream" {
		return fmt.Errorf("%w: detected content type %q does not match extension", ErrFileValidation, sniffed)
	}

	return nil
}

// looksLikeJSON skips leading whitespace and checks for an array or
// object opener.
func looksLikeJSON(buf []byte) bool {
	for _, b := range buf {
		if unicode.IsSpace(rune(b)) {
			continue
		}
		return b == '[' || b == '{'
	}
	return false
}
