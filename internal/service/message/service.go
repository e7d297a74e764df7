package message

import (
	"context"
	"strings"

	"farmmarket/internal/domain"
	messagerepo "farmmarket/internal/repository/message"
)

type messageRepo interface {
	Send(ctx context.Context, senderID, receiverID, content string) (*domain.Message, error)
	Thread(ctx context.Context, userID, partnerID string) ([]domain.Message, error)
	Conversations(ctx context.Context, userID string) ([]domain.Conversation, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type Service struct {
	repo  messageRepo
	users userRepo
}

func New(repo messagerepo.Repository, users userRepo) *Service {
	return &Service{repo: repo, users: users}
}

type SendInput struct {
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

func (s *Service) Send(ctx context.Context, senderID string, in SendInput) (*domain.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, domain.Validationf("message content is required")
	}
	if in.ReceiverID == senderID {
		return nil, domain.Validationf("cannot message yourself")
	}
	if _, err := s.users.GetByID(ctx, in.ReceiverID); err != nil {
		return nil, err
	}
	return s.repo.Send(ctx, senderID, in.ReceiverID, content)
}

func (s *Service) Thread(ctx context.Context, userID, partnerID string) ([]domain.Message, error) {
	msgs, err := s.repo.Thread(ctx, userID, partnerID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

func (s *Service) Conversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	convs, err := s.repo.Conversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []domain.Conversation{}
	}
	return convs, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}
