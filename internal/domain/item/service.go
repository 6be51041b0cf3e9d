package item

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const publishTimeout = 3 * time.Second

// Service records purchases, either as submitted or by asking a completion
// model to fill in the missing price and description or vendor URL.
type Service struct {
	repo      Repository
	completer Completer
	prompts   PromptRenderer
	publisher EventPublisher
	log       *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewService wires the item service. completer may be nil when no API key is
// configured; the completion-backed operations then fail with
// ErrCompleterNotConfigured. publisher may be nil.
func NewService(repo Repository, completer Completer, prompts PromptRenderer, publisher EventPublisher, log *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		completer: completer,
		prompts:   prompts,
		publisher: publisher,
		log:       log.Named("item"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// ListForUser returns the user's items, oldest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Item, error) {
	items, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for user %s: %w", userID, err)
	}
	return items, nil
}

// AddItem stores an item whose fields were all supplied by the user.
func (s *Service) AddItem(ctx context.Context, userID string, params AddItemParams) (*Item, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	cost, err := parseCost(params.Cost)
	if err != nil {
		return nil, err
	}

	return s.store(ctx, userID, strings.TrimSpace(params.Description), cost, strings.TrimSpace(params.URL))
}

// AddFromURL asks the model for the description and price of the product
// found at url, then stores the result under that url.
func (s *Service) AddFromURL(ctx context.Context, userID, url string) (*Item, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, &ValidationError{Message: "URL is required"}
	}

	prompt, err := s.prompts.URLExtraction(url)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	result, err := s.complete(ctx, prompt, NoDescriptionFallback)
	if err != nil {
		return nil, err
	}

	return s.store(ctx, userID, result.Value, result.Cost, url)
}

// AddFromDescription asks the model for a vendor URL and price matching the
// description, then stores the result under that description.
func (s *Service) AddFromDescription(ctx context.Context, userID, description string) (*Item, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, &ValidationError{Message: "Description is required"}
	}

	prompt, err := s.prompts.DescriptionLookup(description)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	result, err := s.complete(ctx, prompt, NoURLFallback)
	if err != nil {
		return nil, err
	}

	return s.store(ctx, userID, description, result.Cost, result.Value)
}

func (s *Service) complete(ctx context.Context, prompt, fallback string) (Completion, error) {
	if s.completer == nil {
		return Completion{}, ErrCompleterNotConfigured
	}

	text, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return Completion{}, fmt.Errorf("completion request failed: %w", err)
	}

	result, err := ParseCompletion(text, fallback)
	if err != nil {
		s.log.Warn("Unusable completion response", zap.String("text", text), zap.Error(err))
		return Completion{}, err
	}
	return result, nil
}

func (s *Service) store(ctx context.Context, userID, description string, cost decimal.Decimal, url string) (*Item, error) {
	it := &Item{
		ID:          s.newID(),
		Description: description,
		Cost:        cost,
		Date:        s.now(),
		URL:         url,
		UserID:      userID,
	}

	if err := s.repo.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	s.log.Info("Item created",
		zap.String("item_id", it.ID),
		zap.String("user_id", userID),
		zap.String("cost", it.Cost.String()),
	)

	if s.publisher != nil {
		// The item is already stored, so the event outlives a cancelled
		// request but may not hold the response past publishTimeout.
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.publisher.PublishItemCreated(pubCtx, it); err != nil {
			s.log.Error("Failed to publish item created event", zap.String("item_id", it.ID), zap.Error(err))
		}
	}

	return it, nil
}
