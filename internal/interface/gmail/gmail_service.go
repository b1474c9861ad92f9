package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"ssim-converter-service/internal/domain/entity"
	"ssim-converter-service/internal/domain/repository"
	"ssim-converter-service/internal/interface/spreadsheet"
	"ssim-converter-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// EmailProcessor converts stored emails
type EmailProcessor interface {
	ProcessEmail(ctx context.Context, email *entity.Email) error
	ProcessPendingEmails(ctx context.Context) error
}

// attachmentFetcher downloads an attachment body by ID
type attachmentFetcher func(ctx context.Context, messageID, attachmentID string) (string, error)

// GmailService polls Gmail for schedule emails and hands them to the processor
type GmailService struct {
	gmailService    *gmail.Service
	emailRepo       repository.EmailRepository
	processor       EmailProcessor
	fetchAttachment attachmentFetcher
	keywords        []string
	logger          logger.Logger
	pollInterval    time.Duration
}

// NewGmailService creates a new Gmail service. processor may be nil, in
// which case emails are only stored and picked up by the pending loop.
func NewGmailService(
	ctx context.Context,
	tokenSource oauth2.TokenSource,
	emailRepo repository.EmailRepository,
	processor EmailProcessor,
	keywords []string,
	logger logger.Logger,
	pollInterval time.Duration,
) (*GmailService, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	s := &GmailService{
		gmailService: service,
		emailRepo:    emailRepo,
		processor:    processor,
		keywords:     keywords,
		logger:       logger,
		pollInterval: pollInterval,
	}
	s.fetchAttachment = s.downloadAttachment
	return s, nil
}

// StartPolling polls Gmail until ctx is cancelled
func (s *GmailService) StartPolling(ctx context.Context) {
	// Process any pending emails on startup
	if s.processor != nil {
		if err := s.processor.ProcessPendingEmails(ctx); err != nil {
			s.logger.Error("Failed to process pending emails on startup", "error", err)
		}
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Gmail polling stopped")
			return
		case <-ticker.C:
			s.logger.Info("Polling Gmail for new emails")
			if err := s.FetchEmails(ctx); err != nil {
				s.logger.Error("Error polling Gmail", "error", err)
			}
		}
	}
}

// FetchEmails stores new schedule emails and processes them immediately
func (s *GmailService) FetchEmails(ctx context.Context) error {
	lastEmail, err := s.emailRepo.GetLastEmail(ctx)
	if err != nil {
		s.logger.Error("Failed to get last email", "error", err)
	}

	var fetchFrom time.Time
	hasLastEmail := lastEmail != nil && !lastEmail.ReceivedAt.IsZero()
	if hasLastEmail {
		fetchFrom = lastEmail.ReceivedAt
	} else {
		fetchFrom = time.Now().AddDate(0, 0, -30)
		s.logger.Info("No previous emails, using default start date",
			"startDate", fetchFrom.Format("2006-01-02 15:04:05 UTC"))
	}

	query := buildQuery(fetchFrom, hasLastEmail)
	s.logger.Info("Querying Gmail", "query", query)

	var messages []*gmail.Message
	err = s.gmailService.Users.Messages.List("me").Q(query).Pages(ctx, func(resp *gmail.ListMessagesResponse) error {
		messages = append(messages, resp.Messages...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}

	if len(messages) == 0 {
		s.logger.Debug("No new messages found")
		return nil
	}

	emailIDs := make([]string, len(messages))
	for i, msg := range messages {
		emailIDs[i] = msg.Id
	}

	existingEmails, err := s.emailRepo.FindByEmailIDs(ctx, emailIDs)
	if err != nil {
		s.logger.Error("Failed to batch check existing emails", "error", err)
		existingEmails = make(map[string]*entity.Email)
	}

	newCount := 0
	skippedCount := 0
	for _, msg := range messages {
		// Skip if already in database
		if _, exists := existingEmails[msg.Id]; exists {
			skippedCount++
			continue
		}

		fullMsg, err := s.gmailService.Users.Messages.Get("me", msg.Id).Context(ctx).Do()
		if err != nil {
			s.logger.Error("Failed to get message", "emailID", msg.Id, "error", err)
			continue
		}

		email, err := s.convertToEmail(ctx, fullMsg)
		if err != nil {
			s.logger.Error("Failed to convert message", "emailID", msg.Id, "error", err)
			continue
		}

		if !MatchesSubject(email.Subject, s.keywords) {
			s.logger.Debug("Email doesn't match subject filter", "subject", email.Subject)
			continue
		}

		if err := s.emailRepo.Save(ctx, email); err != nil {
			s.logger.Error("Failed to save email", "emailID", msg.Id, "error", err)
			continue
		}
		newCount++

		s.logger.Info("Stored schedule email",
			"subject", email.Subject,
			"emailID", email.EmailID,
			"attachments", len(email.Attachments),
			"receivedAt", email.ReceivedAt.Format("2006-01-02 15:04:05 UTC"))

		if s.processor != nil {
			if err := s.processor.ProcessEmail(ctx, email); err != nil {
				s.logger.Error("Failed to process email", "emailID", email.EmailID, "error", err)
			}
		}
	}

	s.logger.Info("Email fetch completed",
		"totalFromGmail", len(messages),
		"alreadyInDB", skippedCount,
		"newEmails", newCount)

	return nil
}

// buildQuery restricts the listing to recent mail with attachments. When a
// previous email exists the window reaches back 3 days to catch stragglers.
func buildQuery(from time.Time, hasLastEmail bool) string {
	if hasLastEmail {
		from = from.AddDate(0, 0, -3)
	}
	return fmt.Sprintf("has:attachment after:%s", from.Format("2006/01/02"))
}

// MatchesSubject reports whether subject contains any keyword, ignoring
// case. No keywords accepts every subject.
func MatchesSubject(subject string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	subject = strings.ToLower(subject)
	for _, k := range keywords {
		if k != "" && strings.Contains(subject, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// convertToEmail converts a Gmail message to our domain entity
func (s *GmailService) convertToEmail(ctx context.Context, msg *gmail.Message) (*entity.Email, error) {
	if msg.Payload == nil {
		return nil, fmt.Errorf("message %s has no payload", msg.Id)
	}

	email := &entity.Email{
		EmailID:       msg.Id,
		Labels:        msg.LabelIds,
		ProcessStatus: entity.StatusPending,
		ReceivedAt:    time.UnixMilli(msg.InternalDate).UTC(),
	}

	// Extract header information
	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			email.From = header.Value
		case "To":
			email.To = header.Value
		case "Subject":
			email.Subject = header.Value
		}
	}

	for _, part := range attachmentParts(msg.Payload) {
		if !spreadsheet.Supported(part.Filename) {
			continue
		}
		data, err := s.partData(ctx, msg.Id, part)
		if err != nil {
			s.logger.Warn("Failed to read attachment",
				"emailID", msg.Id,
				"attachment", part.Filename,
				"error", err)
			continue
		}
		email.Attachments = append(email.Attachments, entity.Attachment{
			Filename:    part.Filename,
			ContentType: part.MimeType,
			Data:        data,
		})
	}

	return email, nil
}

// attachmentParts walks nested multipart bodies for parts with a file name
func attachmentParts(part *gmail.MessagePart) []*gmail.MessagePart {
	if part == nil {
		return nil
	}
	var out []*gmail.MessagePart
	if part.Filename != "" && part.Body != nil {
		out = append(out, part)
	}
	for _, p := range part.Parts {
		out = append(out, attachmentParts(p)...)
	}
	return out
}

// partData returns the decoded body of a part. Large attachments are not
// inlined by Gmail and must be downloaded separately.
func (s *GmailService) partData(ctx context.Context, messageID string, part *gmail.MessagePart) ([]byte, error) {
	raw := part.Body.Data
	if raw == "" && part.Body.AttachmentId != "" {
		var err error
		raw, err = s.fetchAttachment(ctx, messageID, part.Body.AttachmentId)
		if err != nil {
			return nil, err
		}
	}
	return decodeBase64URL(raw)
}

func (s *GmailService) downloadAttachment(ctx context.Context, messageID, attachmentID string) (string, error) {
	body, err := s.gmailService.Users.Messages.Attachments.Get("me", messageID, attachmentID).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return body.Data, nil
}

// decodeBase64URL accepts padded and unpadded URL-safe base64
func decodeBase64URL(s string) ([]byte, error) {
	if data, err := base64.URLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
