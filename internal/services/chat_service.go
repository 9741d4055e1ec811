package services

import (
	"errors"
	"fmt"
	"strings"

	"sari_pos_backend/internal/models"
	"sari_pos_backend/internal/repositories"
)

var ErrEmptyMessage = errors.New("chat message body is empty")

const (
	maxChatMessageLen   = 1000
	defaultChatPageSize = 50
	maxChatPageSize     = 200
)

// PostMessageRequest is the payload for posting to the staff chat board.
type PostMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// --- ChatService Interface ---

type ChatService interface {
	PostMessage(actorID int64, req PostMessageRequest) (*models.ChatMessage, error)
	ListMessages(afterID int64, limit int) ([]models.ChatMessage, error)
}

type chatService struct {
	chatRepo repositories.ChatRepository
	tx       repositories.TxManager
}

// NewChatService creates a new instance of ChatService.
func NewChatService(cr repositories.ChatRepository, tx repositories.TxManager) ChatService {
	return &chatService{chatRepo: cr, tx: tx}
}

func (s *chatService) PostMessage(actorID int64, req PostMessageRequest) (*models.ChatMessage, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if len(body) > maxChatMessageLen {
		return nil, fmt.Errorf("%w: message exceeds %d characters", ErrValidation, maxChatMessageLen)
	}

	message := models.ChatMessage{
		UserID: actorID,
		Body:   body,
	}

	tx, err := s.tx.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.chatRepo.CreateMessage(tx, &message); err != nil {
		return nil, fmt.Errorf("failed to post chat message: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit chat message: %w", err)
	}
	return &message, nil
}

// ListMessages returns messages strictly after afterID in posting order, so
// clients can poll with the last ID they have seen.
func (s *chatService) ListMessages(afterID int64, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = defaultChatPageSize
	}
	if limit > maxChatPageSize {
		limit = maxChatPageSize
	}
	messages, err := s.chatRepo.GetMessages(afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return messages, nil
}
