package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"ssim-converter-service/internal/domain/entity"
	"ssim-converter-service/internal/domain/repository"
	"ssim-converter-service/pkg/logger"
	"ssim-converter-service/pkg/metrics"
)

const pendingBatchSize = 100

// Converter is the part of ScheduleConverter the orchestrator needs
type Converter interface {
	Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error)
}

// EmailOrchestrator converts the spreadsheet attachments of inbox emails
type EmailOrchestrator struct {
	emailRepo  repository.EmailRepository
	converter  Converter
	carriers   []string
	staleAfter time.Duration
	metrics    *metrics.Metrics
	logger     logger.Logger
}

// NewEmailOrchestrator creates a new email orchestrator. carriers restricts
// generated files to those operators; empty keeps every operator.
func NewEmailOrchestrator(
	emailRepo repository.EmailRepository,
	converter Converter,
	carriers []string,
	staleAfter time.Duration,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *EmailOrchestrator {
	return &EmailOrchestrator{
		emailRepo:  emailRepo,
		converter:  converter,
		carriers:   carriers,
		staleAfter: staleAfter,
		metrics:    metrics,
		logger:     logger,
	}
}

// ProcessEmail converts every spreadsheet attached to one email. The email
// is COMPLETED when at least one attachment converted, FAILED otherwise.
func (o *EmailOrchestrator) ProcessEmail(ctx context.Context, email *entity.Email) error {
	attachments := email.SpreadsheetAttachments()
	if len(attachments) == 0 {
		o.logger.Debug("No spreadsheet attachment",
			"subject", email.Subject,
			"emailID", email.EmailID)

		// Not an error, just nothing to convert
		return o.emailRepo.MarkAsProcessedByEmailID(ctx, email.EmailID,
			entity.StatusSkipped, "no spreadsheet attachment", nil)
	}

	o.logger.Info("Processing email",
		"emailID", email.EmailID,
		"subject", email.Subject,
		"attachments", len(attachments))

	// Mark as processing
	if err := o.emailRepo.UpdateStatusByEmailID(ctx, email.EmailID, entity.StatusProcessing, time.Now()); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	var (
		runIDs    []string
		failures  []string
		converted int
	)
	for _, a := range attachments {
		result, err := o.converter.Convert(ctx, ConvertRequest{
			Name:     a.Filename,
			Data:     bytes.NewReader(a.Data),
			Carriers: o.carriers,
			Source:   SourceEmail,
			EmailID:  email.EmailID,
			Store:    true,
		})
		if result != nil && result.RunID != "" {
			runIDs = append(runIDs, result.RunID)
		}
		if err != nil {
			o.logger.Error("Attachment failed to convert",
				"emailID", email.EmailID,
				"attachment", a.Filename,
				"error", err)
			failures = append(failures, fmt.Sprintf("%s: %v", a.Filename, err))
			continue
		}
		converted++
	}

	status := entity.StatusCompleted
	if converted == 0 {
		status = entity.StatusFailed
	}
	if o.metrics != nil {
		o.metrics.EmailsProcessed.Inc()
	}

	// Failures are recorded on the email; other emails continue
	if err := o.emailRepo.MarkAsProcessedByEmailID(ctx, email.EmailID, status, strings.Join(failures, "; "), runIDs); err != nil {
		o.logger.Error("Failed to mark email as processed", "emailID", email.EmailID, "error", err)
		return err
	}

	o.logger.Info("Email processed",
		"emailID", email.EmailID,
		"status", status,
		"converted", converted,
		"failed", len(failures))
	return nil
}

// ProcessPendingEmails processes any emails that were missed or interrupted
func (o *EmailOrchestrator) ProcessPendingEmails(ctx context.Context) error {
	// Reset stale processing emails
	if _, err := o.emailRepo.ResetProcessingEmails(ctx, o.staleAfter); err != nil {
		o.logger.Error("Failed to reset stale emails", "error", err)
	}

	emails, err := o.emailRepo.FindByStatus(ctx, entity.StatusPending, pendingBatchSize)
	if err != nil {
		return fmt.Errorf("failed to find pending emails: %w", err)
	}

	if len(emails) == 0 {
		return nil
	}

	o.logger.Info("Processing pending emails", "count", len(emails))

	for _, email := range emails {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := o.ProcessEmail(ctx, email); err != nil {
			o.logger.Error("Failed to process pending email",
				"emailID", email.EmailID,
				"error", err)
		}
	}

	return nil
}
