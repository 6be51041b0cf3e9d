package item

import "context"

// Repository defines the interface for item data access
type Repository interface {
	// Create stores a new item. It returns ErrDuplicateItem when the id is taken.
	Create(ctx context.Context, it *Item) error
	// ListByUserID returns the user's items, oldest first.
	ListByUserID(ctx context.Context, userID string) ([]*Item, error)
}

// Completer sends a prompt to a text-completion model and returns the raw text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// PromptRenderer builds the prompts sent to the Completer.
type PromptRenderer interface {
	URLExtraction(url string) (string, error)
	DescriptionLookup(description string) (string, error)
}

// EventPublisher announces newly stored items to other systems.
type EventPublisher interface {
	PublishItemCreated(ctx context.Context, it *Item) error
}
