package entity

import (
	"path/filepath"
	"strings"
	"time"
)

// Inbox process status
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusSkipped    = "SKIPPED"
)

// Email is a schedule e-mail fetched from Gmail
type Email struct {
	EmailID          string       `bson:"emailId"`
	From             string       `bson:"from"`
	To               string       `bson:"to"`
	Subject          string       `bson:"subject"`
	ReceivedAt       time.Time    `bson:"receivedAt"`
	Attachments      []Attachment `bson:"attachments"`
	Labels           []string     `bson:"labels"`
	ProcessedAt      time.Time    `bson:"processedAt"`
	ProcessStatus    string       `bson:"processStatus"`
	ProcessStartedAt time.Time    `bson:"processStartedAt"`
	ErrorDetail      string       `bson:"errorDetail"`
	RunIDs           []string     `bson:"runIds"`
}

// Attachment represents an email attachment
type Attachment struct {
	Filename    string `bson:"filename"`
	ContentType string `bson:"contentType"`
	Data        []byte `bson:"data"`
}

// IsSpreadsheet reports whether the attachment looks like a schedule export
func (a Attachment) IsSpreadsheet() bool {
	switch strings.ToLower(filepath.Ext(a.Filename)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	}
	return false
}

// SpreadsheetAttachments returns the attachments that can be converted
func (e *Email) SpreadsheetAttachments() []Attachment {
	var out []Attachment
	for _, a := range e.Attachments {
		if a.IsSpreadsheet() {
			out = append(out, a)
		}
	}
	return out
}
