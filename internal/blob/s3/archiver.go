package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// ReportArchiver implements domain.ReportArchiver. Each run is stored as a
// JSON document, and its good offers additionally as JSONL so they can be
// queried with S3 Select or loaded into analytics tools.
type ReportArchiver struct {
	writer domain.BlobWriter
}

var _ domain.ReportArchiver = (*ReportArchiver)(nil)

// NewReportArchiver creates a ReportArchiver.
func NewReportArchiver(writer domain.BlobWriter) *ReportArchiver {
	return &ReportArchiver{writer: writer}
}

// ArchiveReport uploads report and returns the key of the report document.
// Offer files larger than one multipart part are sent as multipart uploads.
func (a *ReportArchiver) ArchiveReport(ctx context.Context, report domain.RunReport) (string, error) {
	doc, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("s3blob: marshal report %s: %w", report.ID, err)
	}

	key := reportPath(report)
	if err := a.writer.Put(ctx, key, bytes.NewReader(doc), "application/json"); err != nil {
		return "", fmt.Errorf("s3blob: upload report %s: %w", report.ID, err)
	}

	if len(report.Offers) == 0 {
		return key, nil
	}

	lines, err := marshalJSONL(report.Offers)
	if err != nil {
		return "", fmt.Errorf("s3blob: marshal offers %s: %w", report.ID, err)
	}
	offersKey := offersPath(report)
	if int64(len(lines)) > minPartSize {
		err = a.writer.PutMultipart(ctx, offersKey, bytes.NewReader(lines), minPartSize)
	} else {
		err = a.writer.Put(ctx, offersKey, bytes.NewReader(lines), "application/x-ndjson")
	}
	if err != nil {
		return "", fmt.Errorf("s3blob: upload offers %s: %w", report.ID, err)
	}
	return key, nil
}

// reportPath partitions report documents by day:
//
//	runs/2025/01/31/<id>.json
func reportPath(r domain.RunReport) string {
	return fmt.Sprintf("runs/%s/%s.json", r.StartedAt.UTC().Format("2006/01/02"), r.ID)
}

// offersPath partitions offer files by month:
//
//	offers/2025-01/<id>.jsonl
func offersPath(r domain.RunReport) string {
	return fmt.Sprintf("offers/%s/%s.jsonl", r.StartedAt.UTC().Format("2006-01"), r.ID)
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
