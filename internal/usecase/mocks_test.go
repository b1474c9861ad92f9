package usecase_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"ssim-converter-service/internal/domain/entity"
	"ssim-converter-service/internal/usecase"
)

type MockTimezoneRepository struct {
	mock.Mock
}

func (m *MockTimezoneRepository) ListOffsets(ctx context.Context) (map[string]entity.UTCOffset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]entity.UTCOffset), args.Error(1)
}

type MockAircraftRepository struct {
	mock.Mock
}

func (m *MockAircraftRepository) ListMappings(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

type MockAirlineRepository struct {
	mock.Mock
}

func (m *MockAirlineRepository) GetByCode(ctx context.Context, code string) (*entity.Airline, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Airline), args.Error(1)
}

type MockConversionRunRepository struct {
	mock.Mock
}

func (m *MockConversionRunRepository) Save(ctx context.Context, run *entity.ConversionRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockConversionRunRepository) FindByID(ctx context.Context, id string) (*entity.ConversionRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ConversionRun), args.Error(1)
}

func (m *MockConversionRunRepository) FindRecent(ctx context.Context, limit int) ([]*entity.ConversionRun, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*entity.ConversionRun), args.Error(1)
}

type MockScheduleStore struct {
	mock.Mock
}

func (m *MockScheduleStore) Save(ctx context.Context, name string, w io.WriterTo) (string, error) {
	args := m.Called(ctx, name, w)
	return args.String(0), args.Error(1)
}

type MockEmailRepository struct {
	mock.Mock
}

func (m *MockEmailRepository) Save(ctx context.Context, email *entity.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockEmailRepository) FindByEmailID(ctx context.Context, emailID string) (*entity.Email, error) {
	args := m.Called(ctx, emailID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Email), args.Error(1)
}

func (m *MockEmailRepository) FindByEmailIDs(ctx context.Context, emailIDs []string) (map[string]*entity.Email, error) {
	args := m.Called(ctx, emailIDs)
	return args.Get(0).(map[string]*entity.Email), args.Error(1)
}

func (m *MockEmailRepository) FindByStatus(ctx context.Context, status string, limit int) ([]*entity.Email, error) {
	args := m.Called(ctx, status, limit)
	return args.Get(0).([]*entity.Email), args.Error(1)
}

func (m *MockEmailRepository) GetLastEmail(ctx context.Context) (*entity.Email, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Email), args.Error(1)
}

func (m *MockEmailRepository) UpdateStatusByEmailID(ctx context.Context, emailID string, status string, startedAt time.Time) error {
	args := m.Called(ctx, emailID, status, startedAt)
	return args.Error(0)
}

func (m *MockEmailRepository) MarkAsProcessedByEmailID(ctx context.Context, emailID, status, errorDetail string, runIDs []string) error {
	args := m.Called(ctx, emailID, status, errorDetail, runIDs)
	return args.Error(0)
}

func (m *MockEmailRepository) ResetProcessingEmails(ctx context.Context, staleAfter time.Duration) (int64, error) {
	args := m.Called(ctx, staleAfter)
	return args.Get(0).(int64), args.Error(1)
}

type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Convert(ctx context.Context, req usecase.ConvertRequest) (*usecase.ConvertResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ConvertResult), args.Error(1)
}
