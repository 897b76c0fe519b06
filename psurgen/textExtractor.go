package psurgen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/openpv/psur-generator/docx"
)

// A bad path or an unknown format is a misconfiguration, not a data-quality
// problem, so these are the only hard failures the extractor reports.
var (
	ErrFileNotFound      = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// ExtractText normalizes a source document to plain text, dispatching on the
// file extension. RTF sources go through the encoding fallback chain and the
// control-word stripper; DOCX sources contribute their paragraph text joined
// by newlines.
func ExtractText(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".rtf":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return rtfToText(decodeWithFallback(raw)), nil
	case ".docx":
		doc, err := docx.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return doc.Text(), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// decodeWithFallback decodes raw bytes with a fixed ordered list of
// encodings and keeps the first clean result. Latin-1 comes last because it
// accepts every byte sequence.
func decodeWithFallback(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	if s, ok := decodeUTF16(raw); ok {
		return s
	}
	if s, ok := decodeWindows1252(raw); ok {
		return s
	}
	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	return string(out)
}

// decodeUTF16 accepts the input only when it starts with a byte order mark.
func decodeUTF16(raw []byte) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	hasBOM := (raw[0] == 0xFF && raw[1] == 0xFE) || (raw[0] == 0xFE && raw[1] == 0xFF)
	if !hasBOM {
		return "", false
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// decodeWindows1252 rejects input that maps onto undefined code points,
// which decode to the replacement rune.
func decodeWindows1252(raw []byte) (string, bool) {
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	s := string(out)
	if strings.ContainsRune(s, utf8.RuneError) {
		return "", false
	}
	return s, true
}
