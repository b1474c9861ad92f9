package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ssim-converter-service/internal/domain/entity"
	"ssim-converter-service/internal/usecase"
	"ssim-converter-service/pkg/logger"
)

func attachmentNamed(name string) interface{} {
	return mock.MatchedBy(func(req usecase.ConvertRequest) bool {
		return req.Name == name && req.Source == usecase.SourceEmail && req.Store
	})
}

func scheduleEmail(attachments ...string) *entity.Email {
	e := &entity.Email{EmailID: "msg-1", Subject: "TS09 schedule"}
	for _, a := range attachments {
		e.Attachments = append(e.Attachments, entity.Attachment{Filename: a, Data: []byte("x")})
	}
	return e
}

func TestEmailOrchestrator_SkipsWithoutSpreadsheet(t *testing.T) {
	emails := new(MockEmailRepository)
	conv := new(MockConverter)
	emails.On("MarkAsProcessedByEmailID", mock.Anything, "msg-1", entity.StatusSkipped, "no spreadsheet attachment", []string(nil)).Return(nil)

	o := usecase.NewEmailOrchestrator(emails, conv, nil, time.Minute, nil, logger.NewNop())
	require.NoError(t, o.ProcessEmail(context.Background(), scheduleEmail("notes.pdf")))

	emails.AssertExpectations(t)
	conv.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything)
}

func TestEmailOrchestrator_PartialFailure(t *testing.T) {
	emails := new(MockEmailRepository)
	conv := new(MockConverter)

	emails.On("UpdateStatusByEmailID", mock.Anything, "msg-1", entity.StatusProcessing, mock.AnythingOfType("time.Time")).Return(nil)
	conv.On("Convert", mock.Anything, attachmentNamed("week36.xlsx")).Return(&usecase.ConvertResult{RunID: "run-1"}, nil)
	conv.On("Convert", mock.Anything, attachmentNamed("week37.csv")).
		Return(&usecase.ConvertResult{RunID: "run-2"}, usecase.ErrNoValidRows)
	emails.On("MarkAsProcessedByEmailID", mock.Anything, "msg-1", entity.StatusCompleted,
		"week37.csv: no valid rows", []string{"run-1", "run-2"}).Return(nil)

	o := usecase.NewEmailOrchestrator(emails, conv, []string{"TS"}, time.Minute, nil, logger.NewNop())
	require.NoError(t, o.ProcessEmail(context.Background(), scheduleEmail("week36.xlsx", "readme.txt", "week37.csv")))

	emails.AssertExpectations(t)
	conv.AssertNumberOfCalls(t, "Convert", 2)
}

func TestEmailOrchestrator_AllFailed(t *testing.T) {
	emails := new(MockEmailRepository)
	conv := new(MockConverter)

	emails.On("UpdateStatusByEmailID", mock.Anything, "msg-1", entity.StatusProcessing, mock.Anything).Return(nil)
	conv.On("Convert", mock.Anything, mock.Anything).Return(nil, usecase.ErrUnreadableInput)
	emails.On("MarkAsProcessedByEmailID", mock.Anything, "msg-1", entity.StatusFailed,
		"broken.xlsx: unreadable input", []string(nil)).Return(nil)

	o := usecase.NewEmailOrchestrator(emails, conv, nil, time.Minute, nil, logger.NewNop())
	require.NoError(t, o.ProcessEmail(context.Background(), scheduleEmail("broken.xlsx")))
	emails.AssertExpectations(t)
}

func TestEmailOrchestrator_StatusUpdateFails(t *testing.T) {
	emails := new(MockEmailRepository)
	conv := new(MockConverter)
	emails.On("UpdateStatusByEmailID", mock.Anything, "msg-1", entity.StatusProcessing, mock.Anything).Return(errors.New("timeout"))

	o := usecase.NewEmailOrchestrator(emails, conv, nil, time.Minute, nil, logger.NewNop())
	err := o.ProcessEmail(context.Background(), scheduleEmail("week36.xlsx"))
	assert.ErrorContains(t, err, "failed to update status")
	conv.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything)
}

func TestEmailOrchestrator_ProcessPendingEmails(t *testing.T) {
	emails := new(MockEmailRepository)
	conv := new(MockConverter)

	emails.On("ResetProcessingEmails", mock.Anything, 15*time.Minute).Return(int64(1), nil)
	emails.On("FindByStatus", mock.Anything, entity.StatusPending, 100).Return([]*entity.Email{
		scheduleEmail("week36.xlsx"),
		{EmailID: "msg-2"},
	}, nil)
	emails.On("UpdateStatusByEmailID", mock.Anything, "msg-1", entity.StatusProcessing, mock.Anything).Return(nil)
	conv.On("Convert", mock.Anything, mock.Anything).Return(&usecase.ConvertResult{RunID: "run-1"}, nil)
	emails.On("MarkAsProcessedByEmailID", mock.Anything, "msg-1", entity.StatusCompleted, "", []string{"run-1"}).Return(nil)
	emails.On("MarkAsProcessedByEmailID", mock.Anything, "msg-2", entity.StatusSkipped, mock.Anything, mock.Anything).Return(nil)

	o := usecase.NewEmailOrchestrator(emails, conv, nil, 15*time.Minute, nil, logger.NewNop())
	require.NoError(t, o.ProcessPendingEmails(context.Background()))
	emails.AssertExpectations(t)
}

func TestEmailOrchestrator_ProcessPendingEmails_FindFails(t *testing.T) {
	emails := new(MockEmailRepository)
	emails.On("ResetProcessingEmails", mock.Anything, time.Minute).Return(int64(0), errors.New("down"))
	emails.On("FindByStatus", mock.Anything, entity.StatusPending, 100).Return([]*entity.Email(nil), errors.New("down"))

	o := usecase.NewEmailOrchestrator(emails, new(MockConverter), nil, time.Minute, nil, logger.NewNop())
	assert.ErrorContains(t, o.ProcessPendingEmails(context.Background()), "failed to find pending emails")
}
