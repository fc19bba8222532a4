package domain

import (
	"context"
	"io"
)

// BlobWriter uploads data to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}

// ReportArchiver stores finished run reports in cold storage.
type ReportArchiver interface {
	ArchiveReport(ctx context.Context, report RunReport) (string, error)
}
