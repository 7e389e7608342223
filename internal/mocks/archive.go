package mocks

import (
	"context"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/nutriplan/internal/archive"
	"github.com/pageza/nutriplan/internal/models"
)

// MockObjectPutter is a mock implementation of archive.ObjectPutter
type MockObjectPutter struct {
	mock.Mock
}

func (m *MockObjectPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

// MockURLPresigner is a mock implementation of archive.URLPresigner
type MockURLPresigner struct {
	mock.Mock
}

func (m *MockURLPresigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*v4.PresignedHTTPRequest), args.Error(1)
}

// MockArchiver is a mock implementation of archive.Archiver
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) ArchiveWeeklyReport(ctx context.Context, report *models.WeeklyReport) (string, error) {
	args := m.Called(ctx, report)
	return args.String(0), args.Error(1)
}

func (m *MockArchiver) ArchiveNutritionReport(ctx context.Context, report *models.NutritionReport) (string, error) {
	args := m.Called(ctx, report)
	return args.String(0), args.Error(1)
}

var (
	_ archive.ObjectPutter = (*MockObjectPutter)(nil)
	_ archive.URLPresigner = (*MockURLPresigner)(nil)
	_ archive.Archiver     = (*MockArchiver)(nil)
)
