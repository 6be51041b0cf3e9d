package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pricetrack/internal/domain/item"
	"pricetrack/internal/shared/middleware"
)

type ItemHandler struct {
	items       *item.Service
	maxBodySize int64
	log         *zap.Logger
}

func NewItemHandler(items *item.Service, maxBodySize int64, log *zap.Logger) *ItemHandler {
	return &ItemHandler{items: items, maxBodySize: maxBodySize, log: log.Named("item_handler")}
}

type ItemResponse struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Cost        json.Number `json:"cost"`
	Date        time.Time   `json:"date"`
	URL         string      `json:"url"`
	UserID      string      `json:"userId"`
}

func toItemResponse(it *item.Item) ItemResponse {
	return ItemResponse{
		ID:          it.ID,
		Description: it.Description,
		Cost:        json.Number(it.Cost.String()),
		Date:        it.Date.UTC(),
		URL:         it.URL,
		UserID:      it.UserID,
	}
}

// HandleAddItem stores an item whose description, cost and url were all
// supplied by the user.
func (h *ItemHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	fields, ok := h.decode(w, r, "description", "cost", "url")
	if !ok {
		return
	}

	it, err := h.items.AddItem(r.Context(), userID, item.AddItemParams{
		Description: fields["description"],
		Cost:        fields["cost"],
		URL:         fields["url"],
	})
	if err != nil {
		h.writeItemError(w, userID, err)
		return
	}

	writeJSON(w, http.StatusCreated, toItemResponse(it))
}

// HandleAddURL asks the completion model to price the product at a url.
func (h *ItemHandler) HandleAddURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	fields, ok := h.decode(w, r, "url")
	if !ok {
		return
	}

	it, err := h.items.AddFromURL(r.Context(), userID, fields["url"])
	if err != nil {
		h.writeItemError(w, userID, err)
		return
	}

	writeJSON(w, http.StatusCreated, toItemResponse(it))
}

// HandleAddDescription asks the completion model for a vendor and price
// matching a free-text description.
func (h *ItemHandler) HandleAddDescription(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	fields, ok := h.decode(w, r, "description")
	if !ok {
		return
	}

	it, err := h.items.AddFromDescription(r.Context(), userID, fields["description"])
	if err != nil {
		h.writeItemError(w, userID, err)
		return
	}

	writeJSON(w, http.StatusCreated, toItemResponse(it))
}

// HandleListItems returns the session user's items as JSON.
func (h *ItemHandler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	items, err := h.items.ListForUser(r.Context(), userID)
	if err != nil {
		h.log.Error("Failed to list items", zap.String("user_id", userID), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Error retrieving items")
		return
	}

	response := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		response = append(response, toItemResponse(it))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *ItemHandler) decode(w http.ResponseWriter, r *http.Request, names ...string) (map[string]string, bool) {
	fields, err := decodeFields(w, r, h.maxBodySize, names...)
	if errors.Is(err, errBodyTooLarge) {
		writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return nil, false
	}
	if err != nil {
		h.log.Debug("Rejected request body", zap.Error(err))
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	return fields, true
}

func (h *ItemHandler) writeItemError(w http.ResponseWriter, userID string, err error) {
	var vErr *item.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeMessage(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, item.ErrCompleterNotConfigured):
		h.log.Error("OpenAI API key is not set")
		writeMessage(w, http.StatusInternalServerError, "OpenAI API key is not set")
	default:
		h.log.Warn("Error adding item", zap.String("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, messageResponse{
			Message: "Error adding item",
			Error:   publicError(err),
		})
	}
}

// publicError names the failure without leaking store or upstream details.
func publicError(err error) string {
	switch {
	case errors.Is(err, item.ErrMalformedCompletion):
		return item.ErrMalformedCompletion.Error()
	case errors.Is(err, item.ErrInvalidCost):
		return item.ErrInvalidCost.Error()
	case errors.Is(err, item.ErrDuplicateItem):
		return item.ErrDuplicateItem.Error()
	default:
		return "the item could not be added"
	}
}
