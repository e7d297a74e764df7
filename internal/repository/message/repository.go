package message

import (
	"context"

	"farmmarket/internal/domain"
)

type Repository interface {
	Send(ctx context.Context, senderID, receiverID, content string) (*domain.Message, error)
	// Thread returns the full two-way history between userID and partnerID,
	// oldest first, and marks the partner's messages read.
	Thread(ctx context.Context, userID, partnerID string) ([]domain.Message, error)
	Conversations(ctx context.Context, userID string) ([]domain.Conversation, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}
