package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vip-manifest-service/internal/domain/entity"
	"vip-manifest-service/internal/domain/repository"
	"vip-manifest-service/pkg/logger"
)

// WebhookNotifierRepository posts reconciliation summaries to an operator
// endpoint so flagged duplicates reach a human
type WebhookNotifierRepository struct {
	logger      logger.Logger
	endpoint    string
	bearerToken string
	client      *http.Client
}

// NewWebhookNotifierRepository creates a new webhook notifier
func NewWebhookNotifierRepository(endpoint, bearerToken string, logger logger.Logger) repository.NotifierRepository {
	return &WebhookNotifierRepository{
		logger:      logger,
		endpoint:    endpoint,
		bearerToken: bearerToken,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type summaryPayload struct {
	AirportCode string                  `json:"airportCode"`
	Summary     string                  `json:"summary"`
	Processed   int                     `json:"processed"`
	Created     int                     `json:"created"`
	Found       int                     `json:"found"`
	Duplicates  []entity.DuplicateAudit `json:"duplicates"`
	SentAt      string                  `json:"sentAt"`
}

// SendSummary delivers the batch outcome. An unset endpoint disables
// notification silently.
func (r *WebhookNotifierRepository) SendSummary(ctx context.Context, airportCode string, result *entity.ReconcileResult) error {
	if r.endpoint == "" {
		r.logger.Debug("Operator webhook not configured, skipping notification")
		return nil
	}

	payload := summaryPayload{
		AirportCode: airportCode,
		Summary:     result.Summary,
		Processed:   result.Processed,
		Created:     result.Created,
		Found:       result.Found,
		Duplicates:  result.Duplicates,
		SentAt:      time.Now().UTC().Format(time.RFC3339),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearerToken)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("operator webhook returned status %d", resp.StatusCode)
	}

	r.logger.Info("Summary delivered to operator webhook",
		"airportCode", airportCode,
		"duplicates", len(result.Duplicates))
	return nil
}
