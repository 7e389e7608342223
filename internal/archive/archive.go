// Package archive stores nutrition reports in S3 and hands out presigned
// links to them.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pageza/nutriplan/config"
	"github.com/pageza/nutriplan/internal/models"
)

// ErrNotConfigured is returned when report sharing has no bucket
var ErrNotConfigured = errors.New("report archive is not configured")

// DefaultExpiry is used when no link lifetime is configured
const DefaultExpiry = 24 * time.Hour

// ObjectPutter is the part of the S3 client used for uploads
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// URLPresigner is the part of the S3 presign client used for links
type URLPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Archiver uploads reports and returns time-limited links to them
type Archiver interface {
	ArchiveWeeklyReport(ctx context.Context, report *models.WeeklyReport) (string, error)
	ArchiveNutritionReport(ctx context.Context, report *models.NutritionReport) (string, error)
}

var _ Archiver = (*S3Archiver)(nil)

// S3Archiver is an Archiver backed by one S3 bucket
type S3Archiver struct {
	putter    ObjectPutter
	presigner URLPresigner
	bucket    string
	expiry    time.Duration
	logger    *log.Logger
}

// NewS3Archiver creates an archiver. A non-positive expiry selects DefaultExpiry.
func NewS3Archiver(putter ObjectPutter, presigner URLPresigner, bucket string, expiry time.Duration, logger *log.Logger) *S3Archiver {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	if logger == nil {
		logger = log.Default()
	}
	return &S3Archiver{
		putter:    putter,
		presigner: presigner,
		bucket:    bucket,
		expiry:    expiry,
		logger:    logger,
	}
}

// NewFromConfig builds an S3Archiver from application config. It returns
// ErrNotConfigured when no bucket is set.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *log.Logger) (*S3Archiver, error) {
	if cfg.S3Bucket == "" {
		return nil, ErrNotConfigured
	}
	s3Cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return NewS3Archiver(s3Cfg.Client, s3Cfg.Presigner(), s3Cfg.BucketName, cfg.ReportURLExpiry, logger), nil
}

// ObjectKey is where a report for uid covering start..end is stored
func ObjectKey(uid, start, end string) string {
	return path.Join("reports", uid, fmt.Sprintf("%s_%s.json", start, end))
}

func (a *S3Archiver) ArchiveWeeklyReport(ctx context.Context, report *models.WeeklyReport) (string, error) {
	if report == nil {
		return "", errors.New("no weekly report to archive")
	}
	return a.archive(ctx, ObjectKey(report.UID, report.StartDate, report.EndDate), report)
}

func (a *S3Archiver) ArchiveNutritionReport(ctx context.Context, report *models.NutritionReport) (string, error) {
	if report == nil {
		return "", errors.New("no nutrition report to archive")
	}
	return a.archive(ctx, ObjectKey(report.UID, report.StartDate, report.EndDate), report)
}

func (a *S3Archiver) archive(ctx context.Context, key string, report any) (string, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = a.putter.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(a.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign report URL: %w", err)
	}

	a.logger.Printf("Archived report to s3://%s/%s", a.bucket, key)
	return req.URL, nil
}
