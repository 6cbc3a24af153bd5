package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	gosync "sync"
	"time"

	"cvsync/core/storage"

	"github.com/hashicorp/go-multierror"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrReportNotFound is returned when an archived report does not exist.
var ErrReportNotFound = errors.New("report not found")

const reportPrefix = "reports"

// ReportInfo describes one archived report.
type ReportInfo struct {
	ID           string    `json:"id"`
	Direction    Direction `json:"direction"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Archive stores reports as JSON objects under reports/<direction>/<id>.json
// and keeps at most RetainReports per direction.
type Archive struct {
	client storage.Client
	cfg    storage.Config
	logger *zap.Logger

	mu    gosync.Mutex
	ready bool
}

// NewArchive creates an archive sink.
func NewArchive(client storage.Client, cfg storage.Config, logger *zap.Logger) *Archive {
	return &Archive{client: client, cfg: cfg, logger: logger}
}

// Name implements Sink.
func (a *Archive) Name() string { return "archive" }

func objectName(dir Direction, id string) string {
	return path.Join(reportPrefix, string(dir), id+".json")
}

func (a *Archive) ensureBucket(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		return nil
	}
	if err := storage.EnsureBucket(ctx, a.client, a.cfg.Bucket, a.cfg.Region); err != nil {
		return err
	}
	a.ready = true
	return nil
}

// Handle implements Sink.
func (a *Archive) Handle(ctx context.Context, report *Report) error {
	if err := a.ensureBucket(ctx); err != nil {
		return err
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	name := objectName(report.Direction, report.ID)
	_, err = a.client.PutObject(ctx, a.cfg.Bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to store report %s: %w", name, err)
	}
	a.logger.Debug("Report archived", zap.String("object", name))
	return a.prune(ctx, report.Direction)
}

// prune removes the oldest reports beyond the retention limit.
func (a *Archive) prune(ctx context.Context, dir Direction) error {
	if a.cfg.RetainReports <= 0 {
		return nil
	}
	reports, err := a.List(ctx, dir)
	if err != nil {
		return err
	}
	if len(reports) <= a.cfg.RetainReports {
		return nil
	}

	var result *multierror.Error
	for _, info := range reports[a.cfg.RetainReports:] {
		name := objectName(dir, info.ID)
		if err := a.client.RemoveObject(ctx, a.cfg.Bucket, name, minio.RemoveObjectOptions{}); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to remove %s: %w", name, err))
		}
	}
	return result.ErrorOrNil()
}

// List returns the archived reports of one direction, newest first.
func (a *Archive) List(ctx context.Context, dir Direction) ([]ReportInfo, error) {
	prefix := path.Join(reportPrefix, string(dir)) + "/"
	var out []ReportInfo
	for obj := range a.client.ListObjects(ctx, a.cfg.Bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			if storage.IsNotFound(obj.Err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		out = append(out, ReportInfo{
			ID:           strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), ".json"),
			Direction:    dir,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastModified.After(out[j].LastModified)
	})
	return out, nil
}

// Get reads one archived report.
func (a *Archive) Get(ctx context.Context, dir Direction, id string) (*Report, error) {
	name := objectName(dir, id)
	obj, err := a.client.GetObject(ctx, a.cfg.Bucket, name, minio.GetObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, name)
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	defer obj.Close()

	var report Report
	if err := json.NewDecoder(obj).Decode(&report); err != nil {
		// minio surfaces missing keys on first read.
		if storage.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, name)
		}
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return &report, nil
}
