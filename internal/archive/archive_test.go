package archive_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutriplan/config"
	"github.com/pageza/nutriplan/internal/archive"
	"github.com/pageza/nutriplan/internal/mocks"
	"github.com/pageza/nutriplan/internal/models"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "reports/u1/2024-01-01_2024-01-07.json", archive.ObjectKey("u1", "2024-01-01", "2024-01-07"))
}

func TestArchiveWeeklyReport(t *testing.T) {
	ctx := context.Background()
	putter := &mocks.MockObjectPutter{}
	presigner := &mocks.MockURLPresigner{}
	report := &models.WeeklyReport{UID: "u1", StartDate: "2024-01-01", EndDate: "2024-01-07", Total: models.NutritionTotals{Calories: 14000}}

	var uploaded []byte
	putter.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "reports-bucket" &&
			*in.Key == "reports/u1/2024-01-01_2024-01-07.json" &&
			*in.ContentType == "application/json"
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(*s3.PutObjectInput)
		uploaded, _ = io.ReadAll(in.Body)
	}).Return(&s3.PutObjectOutput{}, nil)
	presigner.On("PresignGetObject", ctx, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return *in.Key == "reports/u1/2024-01-01_2024-01-07.json"
	})).Return(&v4.PresignedHTTPRequest{URL: "https://example.com/signed"}, nil)

	a := archive.NewS3Archiver(putter, presigner, "reports-bucket", time.Hour, nil)
	url, err := a.ArchiveWeeklyReport(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/signed", url)
	assert.Contains(t, string(uploaded), `"calories":14000`)

	putter.AssertExpectations(t)
	presigner.AssertExpectations(t)
}

func TestArchiveNutritionReport_UploadFailure(t *testing.T) {
	ctx := context.Background()
	putter := &mocks.MockObjectPutter{}
	presigner := &mocks.MockURLPresigner{}

	putter.On("PutObject", ctx, mock.Anything).Return(nil, errors.New("access denied"))

	a := archive.NewS3Archiver(putter, presigner, "reports-bucket", 0, nil)
	_, err := a.ArchiveNutritionReport(ctx, &models.NutritionReport{UID: "u1", StartDate: "2024-01-01", EndDate: "2024-01-31"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload report: access denied")
	presigner.AssertNotCalled(t, "PresignGetObject", mock.Anything, mock.Anything)
}

func TestArchive_NilReport(t *testing.T) {
	a := archive.NewS3Archiver(&mocks.MockObjectPutter{}, &mocks.MockURLPresigner{}, "b", 0, nil)
	_, err := a.ArchiveWeeklyReport(context.Background(), nil)
	assert.Error(t, err)
}

func TestNewFromConfig_NoBucket(t *testing.T) {
	_, err := archive.NewFromConfig(context.Background(), config.Default(), nil)
	assert.ErrorIs(t, err, archive.ErrNotConfigured)
}
