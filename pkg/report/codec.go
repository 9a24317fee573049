package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatPlot Format = "plot"

	// CompressedSuffix turns on lz4 frame compression for WriteFile.
	CompressedSuffix = ".lz4"

	reportFileMode = 0o644
)

// ErrUnknownFormat is returned for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// lz4Magic is the little-endian lz4 frame magic number 0x184D2204.
var lz4Magic = []byte{0x04, 0x22, 0x4D, 0x18}

// Formats lists the supported format names.
func Formats() []string {
	return []string{string(FormatJSON), string(FormatYAML), string(FormatPlot)}
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatYAML, FormatPlot:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}
}

// FormatFromPath infers the format from a file extension, ignoring a
// trailing CompressedSuffix. Unknown extensions fall back to JSON.
func FormatFromPath(path string) Format {
	base := strings.TrimSuffix(strings.ToLower(path), CompressedSuffix)

	switch filepath.Ext(base) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".html", ".htm":
		return FormatPlot
	default:
		return FormatJSON
	}
}

// Encode writes doc to w in the given format.
func Encode(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(doc)
		if err != nil {
			return fmt.Errorf("encode json report: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		err := enc.Encode(doc)
		if err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}

		return enc.Close()
	case FormatPlot:
		return RenderPlot(w, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Decode reads a JSON or YAML document, optionally lz4-compressed. The
// encoding is detected from the content.
func Decode(r io.Reader) (Document, error) {
	data, err := readPlain(r)
	if err != nil {
		return Document{}, err
	}

	var doc Document

	if looksLikeJSON(data) {
		err = json.Unmarshal(data, &doc)
		if err != nil {
			return Document{}, fmt.Errorf("decode json report: %w", err)
		}

		return doc, nil
	}

	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		return Document{}, fmt.Errorf("decode yaml report: %w", err)
	}

	return doc, nil
}

// WriteFile encodes doc to path, lz4-compressing when path ends in
// CompressedSuffix. The document is written to a temporary file in the same
// directory and renamed into place, so a failed encode leaves path untouched.
func WriteFile(path string, doc Document, format Format) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	tmp := f.Name()

	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	err = encodeTo(f, path, doc, format)
	if err != nil {
		return err
	}

	err = f.Chmod(reportFileMode)
	if err != nil {
		return fmt.Errorf("chmod report file: %w", err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("close report file: %w", err)
	}

	err = os.Rename(tmp, path)
	if err != nil {
		return fmt.Errorf("replace report file: %w", err)
	}

	return nil
}

func encodeTo(w io.Writer, path string, doc Document, format Format) error {
	buffered := bufio.NewWriter(w)

	if !strings.HasSuffix(strings.ToLower(path), CompressedSuffix) {
		err := Encode(buffered, doc, format)
		if err != nil {
			return err
		}

		return buffered.Flush()
	}

	zw := lz4.NewWriter(buffered)

	err := Encode(zw, doc, format)
	if err != nil {
		return err
	}

	err = zw.Close()
	if err != nil {
		return fmt.Errorf("finish lz4 frame: %w", err)
	}

	return buffered.Flush()
}

// ReadFile decodes the document stored at path.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open report file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// readPlain reads all of r, transparently inflating an lz4 frame.
func readPlain(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	if !bytes.HasPrefix(data, lz4Magic) {
		return data, nil
	}

	plain, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("decompress report: %w", err)
	}

	return plain, nil
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")

	return len(trimmed) > 0 && trimmed[0] == '{'
}
