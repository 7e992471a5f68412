package ioformats

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abraham-mv/huon-test/internal/models"
)

// BagLine is one saved record: the markup of each page of a registration,
// keyed by page label.
type BagLine struct {
	Site  string            `json:"site"`
	RID   string            `json:"rid"`
	RDate time.Time         `json:"rdate,omitempty"`
	Pages map[string]string `json:"pages"`
}

// Bag converts the line into the form site extraction reads.
func (l BagLine) Bag(retrieved time.Time, crawlID string) models.Bag {
	b := models.NewBag(l.RID, l.RDate)
	for label, markup := range l.Pages {
		b.Pages[label] = models.Page{
			Label:     label,
			Content:   []byte(markup),
			RID:       l.RID,
			RDate:     l.RDate,
			Retrieved: retrieved,
			CrawlID:   crawlID,
		}
	}
	return b
}

// ReadBags reads saved records from NDJSON, one BagLine per line, or from a
// CSV manifest with header columns site, rid, label and path, where path
// names an HTML file relative to the manifest. Manifest rows sharing site
// and rid form one record.
func ReadBags(path string) ([]BagLine, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return readCSV(path)
	case ".ndjson", ".jsonl":
		return readNDJSON(path)
	default:
		// try csv then ndjson
		if bags, err := readCSV(path); err == nil && len(bags) > 0 {
			return bags, nil
		}
		return readNDJSON(path)
	}
}

var manifestColumns = []string{"site", "rid", "label", "path"}

func readCSV(path string) ([]BagLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}
	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range manifestColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("csv must contain a %q header column", c)
		}
	}

	dir := filepath.Dir(path)
	var out []BagLine
	index := map[string]int{}
	for n, row := range rows[1:] {
		get := func(c string) string {
			if i := cols[c]; i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		site, rid, label, file := get("site"), get("rid"), get("label"), get("path")
		if site == "" || label == "" || file == "" {
			continue
		}
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, file)
		}
		markup, err := os.ReadFile(file) //nolint:gosec // manifest-listed page
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		key := site + "\x00" + rid
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, BagLine{Site: site, RID: rid, Pages: map[string]string{}})
		}
		out[i].Pages[label] = string(markup)
	}
	return out, nil
}

func readNDJSON(path string) ([]BagLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadNDJSON(f)
}

// ReadNDJSON decodes one BagLine per non-empty line of r.
func ReadNDJSON(r io.Reader) ([]BagLine, error) {
	var out []BagLine
	sc := bufio.NewScanner(r)
	// registration pages run well past the default token size
	sc.Buffer(make([]byte, 0, 64*1024), 32*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var bl BagLine
		if err := json.Unmarshal([]byte(line), &bl); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		out = append(out, bl)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no records found in ndjson")
	}
	return out, nil
}

// WriteNDJSON writes any JSON-marshalable items as NDJSON to w.
func WriteNDJSON[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}

// RecordWriter streams records as NDJSON.
type RecordWriter struct {
	enc *json.Encoder
}

func NewRecordWriter(w io.Writer) *RecordWriter {
	return &RecordWriter{enc: json.NewEncoder(w)}
}

func (w *RecordWriter) Write(rec models.Record) error {
	return w.enc.Encode(rec)
}
