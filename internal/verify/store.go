package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/feed"
)

// ReportObject is the file/object name of the latest report.
const ReportObject = "verification_results.json"

// ErrNoReport is returned when no report has been stored yet.
var ErrNoReport = errors.New("no verification report")

// ReportStore keeps the latest verification report.
type ReportStore interface {
	Save(ctx context.Context, report feed.Report) error
	Latest(ctx context.Context) (feed.Report, error)
}

// FileStore keeps the report as a JSON file in a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Save(_ context.Context, report feed.Report) error {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(s.dir, ReportObject)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace report: %w", err)
	}
	return nil
}

func (s *FileStore) Latest(_ context.Context) (feed.Report, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, ReportObject))
	if errors.Is(err, os.ErrNotExist) {
		return feed.Report{}, ErrNoReport
	}
	if err != nil {
		return feed.Report{}, fmt.Errorf("read report: %w", err)
	}
	return feed.DecodeReport(data)
}

// MinioConfig locates the bucket holding reports.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore keeps the report as an object in an S3-compatible bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects and creates the bucket if it does not exist.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioStore) Save(ctx context.Context, report feed.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, ReportObject, bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("put report: %w", err)
	}
	return nil
}

func (s *MinioStore) Latest(ctx context.Context) (feed.Report, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, ReportObject, minio.GetObjectOptions{})
	if err != nil {
		return feed.Report{}, fmt.Errorf("get report: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return feed.Report{}, ErrNoReport
		}
		return feed.Report{}, fmt.Errorf("read report: %w", err)
	}
	return feed.DecodeReport(data)
}
