package entity

import (
	"time"
)

// Manifest process status
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusSkipped    = "SKIPPED"
)

// Manifest is an inbound manifest staged from the mailbox, waiting to be
// reconciled against the registry
type Manifest struct {
	MessageID        string                 `bson:"messageId"`
	From             string                 `bson:"from"`
	Subject          string                 `bson:"subject"`
	Body             string                 `bson:"body"`
	ReceivedAt       time.Time              `bson:"receivedAt"`
	ProcessStatus    string                 `bson:"processStatus"`
	ProcessStartedAt time.Time              `bson:"processStartedAt"`
	ProcessedAt      time.Time              `bson:"processedAt"`
	ProcessSteps     ProcessSteps           `bson:"processSteps"`
	ErrorDetail      string                 `bson:"errorDetail"`
	ExtractedData    map[string]interface{} `bson:"extractedData"`
}

// ProcessSteps tracks how far the processor got with a staged manifest
type ProcessSteps struct {
	LinesParsed     bool `bson:"linesParsed"`
	GroupsResolved  int  `bson:"groupsResolved"`
	EntriesResolved int  `bson:"entriesResolved"`
	TotalEntries    int  `bson:"totalEntries"`
}
