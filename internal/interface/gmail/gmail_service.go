package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"vip-manifest-service/internal/domain/entity"
	"vip-manifest-service/internal/domain/repository"
	"vip-manifest-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Service polls the manifest mailbox and stages matching messages for the
// processor
type Service struct {
	gmailService *gmail.Service
	manifestRepo repository.ManifestRepository
	logger       logger.Logger
	pollInterval time.Duration
}

// NewService creates a new Gmail service
func NewService(ctx context.Context, tokenSource oauth2.TokenSource, manifestRepo repository.ManifestRepository, logger logger.Logger, pollInterval time.Duration) (*Service, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &Service{
		gmailService: service,
		manifestRepo: manifestRepo,
		logger:       logger,
		pollInterval: pollInterval,
	}, nil
}

// FetchManifests fetches new manifest emails from the mailbox. Staging is
// idempotent: messages already saved are skipped, and the query window backs
// up a few days past the newest staged manifest to catch stragglers.
func (s *Service) FetchManifests(ctx context.Context) error {
	latest, _ := s.manifestRepo.GetLatest(ctx)

	var fetchFrom time.Time
	var hasLatest bool
	if latest != nil && !latest.ReceivedAt.IsZero() {
		fetchFrom = latest.ReceivedAt
		hasLatest = true
	} else {
		fetchFrom = time.Now().AddDate(0, 0, -30)
	}

	queryDate := fetchFrom
	if hasLatest {
		queryDate = fetchFrom.AddDate(0, 0, -3)
	}

	query := fmt.Sprintf("after:%s", queryDate.Format("2006/01/02"))
	s.logger.Info("Querying mailbox", "query", query)

	resp, err := s.gmailService.Users.Messages.List("me").Q(query).Do()
	if err != nil {
		s.logger.Error("Failed to list messages", "error", err)
		return err
	}

	if len(resp.Messages) == 0 {
		s.logger.Info("No new messages found")
		return nil
	}

	messageIDs := make([]string, len(resp.Messages))
	for i, msg := range resp.Messages {
		messageIDs[i] = msg.Id
	}

	existing, err := s.manifestRepo.FindByMessageIDs(ctx, messageIDs)
	if err != nil {
		s.logger.Error("Failed to batch check staged manifests", "error", err)
		existing = make(map[string]*entity.Manifest)
	}

	staged := 0
	skippedOld := 0
	skippedExisting := 0

	for _, msg := range resp.Messages {
		if _, ok := existing[msg.Id]; ok {
			skippedExisting++
			continue
		}

		fullMsg, err := s.gmailService.Users.Messages.Get("me", msg.Id).Do()
		if err != nil {
			s.logger.Error("Failed to get message", "messageId", msg.Id, "error", err)
			continue
		}

		messageTime := time.Unix(0, fullMsg.InternalDate*int64(time.Millisecond))
		if hasLatest && !messageTime.After(fetchFrom) {
			skippedOld++
			continue
		}

		manifest, err := s.convertToManifest(fullMsg)
		if err != nil {
			s.logger.Error("Failed to convert message", "messageId", msg.Id, "error", err)
			continue
		}
		manifest.ReceivedAt = messageTime

		if !s.FilterPattern(manifest.Subject) {
			s.logger.Debug("Subject does not match manifest filter", "subject", manifest.Subject)
			continue
		}

		if err := s.manifestRepo.Save(ctx, manifest); err != nil {
			s.logger.Error("Failed to stage manifest", "messageId", msg.Id, "error", err)
			continue
		}

		s.logger.Info("Staged new manifest",
			"subject", manifest.Subject,
			"messageId", manifest.MessageID,
			"receivedAt", manifest.ReceivedAt.Format("2006-01-02 15:04:05 UTC"))
		staged++
	}

	s.logger.Info("Mailbox fetch completed",
		"totalFromGmail", len(resp.Messages),
		"alreadyStaged", skippedExisting,
		"skippedOld", skippedOld,
		"staged", staged)

	return nil
}

// StartPolling polls the mailbox until the context is cancelled
func (s *Service) StartPolling(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Mailbox polling stopped")
			return
		case <-ticker.C:
			if err := s.FetchManifests(ctx); err != nil {
				s.logger.Error("Error polling mailbox", "error", err)
			}
		}
	}
}

// FilterPattern accepts only manifest subjects
func (s *Service) FilterPattern(subject string) bool {
	return strings.Contains(strings.ToUpper(subject), "VIP MANIFEST")
}

// convertToManifest converts a Gmail message to a staged manifest, preferring
// the plain-text body
func (s *Service) convertToManifest(msg *gmail.Message) (*entity.Manifest, error) {
	manifest := &entity.Manifest{
		MessageID: msg.Id,
	}

	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			manifest.From = header.Value
		case "Subject":
			manifest.Subject = header.Value
		}
	}

	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(msg.Payload.Body.Data)
		if err != nil {
			return nil, err
		}
		manifest.Body = string(data)
	}

	for _, part := range msg.Payload.Parts {
		if part.MimeType == "text/plain" && part.Body != nil {
			data, err := base64.URLEncoding.DecodeString(part.Body.Data)
			if err != nil {
				continue
			}
			manifest.Body = string(data)
		}
	}

	return manifest, nil
}
