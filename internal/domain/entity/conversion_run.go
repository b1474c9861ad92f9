package entity

import "time"

// Run status
const (
	RunSucceeded     = "SUCCEEDED"
	RunNonConformant = "NON_CONFORMANT"
	RunFailed        = "FAILED"
)

// ConversionRun is the persisted report of one file generation
type ConversionRun struct {
	ID                  string    `bson:"_id,omitempty" json:"id"`
	Source              string    `bson:"source" json:"source"`
	EmailID             string    `bson:"emailId,omitempty" json:"emailId,omitempty"`
	Layout              string    `bson:"layout" json:"layout"`
	Carriers            []string  `bson:"carriers" json:"carriers"`
	PeriodStart         time.Time `bson:"periodStart" json:"periodStart"`
	PeriodEnd           time.Time `bson:"periodEnd" json:"periodEnd"`
	RowsRead            int       `bson:"rowsRead" json:"rowsRead"`
	RowsProcessed       int       `bson:"rowsProcessed" json:"rowsProcessed"`
	RowsSkipped         int       `bson:"rowsSkipped" json:"rowsSkipped"`
	ConnectionsResolved int       `bson:"connectionsResolved" json:"connectionsResolved"`
	SelfReferences      int       `bson:"selfReferences" json:"selfReferences"`
	Warnings            []string  `bson:"warnings" json:"warnings"`
	ValidationIssues    []string  `bson:"validationIssues" json:"validationIssues"`
	Conformant          bool      `bson:"conformant" json:"conformant"`
	Status              string    `bson:"status" json:"status"`
	ErrorDetail         string    `bson:"errorDetail,omitempty" json:"errorDetail,omitempty"`
	FileName            string    `bson:"fileName" json:"fileName"`
	Content             string    `bson:"content" json:"-"`
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
}
