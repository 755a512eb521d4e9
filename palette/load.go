package palette

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/crossstitch/colorspace"
)

var ErrEmpty = errors.New("palette: no entries")

// Load reads a thread table from path. Files ending in ".zst" are
// zstd-compressed. See Read for the record format.
func Load(path string) (Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("palette: %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}
	p, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("palette: %s: %w", path, err)
	}
	return p, nil
}

// Read parses CSV records of the form
//
//	label,#rrggbb
//	label,r,g,b
//
// An optional first row whose first field is "label" is skipped. Lines
// starting with ';' are comments.
func Read(r io.Reader) (Palette, error) {
	cr := csv.NewReader(r)
	cr.Comment = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var p Palette
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "label") {
			continue
		}
		e, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", line, err)
		}
		p = append(p, e)
	}
	if len(p) == 0 {
		return nil, ErrEmpty
	}
	return p, nil
}

func parseRecord(rec []string) (Entry, error) {
	label := strings.TrimSpace(rec[0])
	switch len(rec) {
	case 2:
		c, err := colorful.Hex(strings.TrimSpace(rec[1]))
		if err != nil {
			return Entry{}, err
		}
		return FromColorful(label, c), nil
	case 4:
		var rgb colorspace.RGB
		for i := range 3 {
			v, err := strconv.Atoi(strings.TrimSpace(rec[i+1]))
			if err != nil {
				return Entry{}, err
			}
			if v < 0 || v > 255 {
				return Entry{}, fmt.Errorf("channel %d out of range: %d", i, v)
			}
			rgb[i] = v
		}
		return NewEntry(label, rgb), nil
	default:
		return Entry{}, fmt.Errorf("want 2 or 4 fields, got %d", len(rec))
	}
}
