package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shashiranjanraj/bodega/pkg/storage"
)

// Export is where an exported report ended up.
type Export struct {
	Path string
	URL  string
	Rows int
}

// ExportPath names the file for a run of report at t.
func ExportPath(report string, source Source, t time.Time) string {
	return fmt.Sprintf("reports/%s/%s-%s.json", report, t.UTC().Format("20060102T150405Z"), source)
}

// Export runs the report and writes the result as indented JSON to disk.
func (s *Service) Export(ctx context.Context, disk storage.Disk, name string, source Source, p Params) (*Export, error) {
	res, err := s.Run(ctx, name, source, p)
	if err != nil {
		return nil, err
	}
	body, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("reports: encode %s: %w", name, err)
	}
	path := ExportPath(name, res.Source, time.Now())
	if err := disk.Put(ctx, path, body); err != nil {
		return nil, err
	}
	return &Export{Path: path, URL: disk.URL(path), Rows: res.Count}, nil
}
