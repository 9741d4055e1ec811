package repositories

import (
	"database/sql"
	"fmt"

	"sari_pos_backend/internal/models"
)

// ChatRepository defines the interface for the internal chat board.
type ChatRepository interface {
	CreateMessage(executor SQLExecutor, message *models.ChatMessage) (int64, error)
	GetMessages(afterID int64, limit int) ([]models.ChatMessage, error)
}

type chatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new instance of ChatRepository.
func NewChatRepository(db *sql.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateMessage(executor SQLExecutor, message *models.ChatMessage) (int64, error) {
	query := `INSERT INTO chat_messages (user_id, body, created_at)
	          VALUES ($1, $2, NOW())
	          RETURNING id, created_at`
	err := executor.QueryRow(query, message.UserID, message.Body).Scan(&message.ID, &message.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("%w: creating chat message: %v", ErrDatabaseError, err)
	}
	return message.ID, nil
}

func (r *chatRepository) GetMessages(afterID int64, limit int) ([]models.ChatMessage, error) {
	messages := []models.ChatMessage{}
	query := `SELECT cm.id, cm.user_id, cm.body, cm.created_at, u.username
	          FROM chat_messages cm
	          LEFT JOIN users u ON cm.user_id = u.id
	          WHERE cm.id > $1
	          ORDER BY cm.id ASC
	          LIMIT $2`
	rows, err := r.db.Query(query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: getting chat messages: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var message models.ChatMessage
		var username sql.NullString
		if err := rows.Scan(&message.ID, &message.UserID, &message.Body, &message.CreatedAt, &username); err != nil {
			return nil, fmt.Errorf("%w: scanning chat message: %v", ErrDatabaseError, err)
		}
		if username.Valid {
			name := username.String
			message.Username = &name
		}
		messages = append(messages, message)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating chat messages: %v", ErrDatabaseError, err)
	}
	return messages, nil
}
