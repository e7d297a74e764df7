package client

import (
	"context"
	"net/http"
	"sync"
	"time"

	"farmmarket/internal/domain"
)

func (c *Client) SendMessage(ctx context.Context, receiverID, content string) (*domain.Message, error) {
	body := map[string]string{"receiver_id": receiverID, "content": content}
	var m domain.Message
	if err := c.do(ctx, http.MethodPost, "/api/messages", body, &m, ""); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) Thread(ctx context.Context, partnerID string) ([]domain.Message, error) {
	var resp struct {
		Messages []domain.Message `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/messages/"+partnerID, nil, &resp, ""); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *Client) Conversations(ctx context.Context) ([]domain.Conversation, error) {
	var resp struct {
		Conversations []domain.Conversation `json:"conversations"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/messages/conversations", nil, &resp, ""); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var resp struct {
		UnreadCount int `json:"unread_count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/messages/unread-count", nil, &resp, ""); err != nil {
		return 0, err
	}
	return resp.UnreadCount, nil
}

// MessagePoller periodically fetches the unread count and invokes the
// callback when it changes. Close stops the poller.
type MessagePoller struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (c *Client) PollUnread(interval time.Duration, onChange func(count int)) *MessagePoller {
	ctx, cancel := context.WithCancel(context.Background())
	p := &MessagePoller{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		last := -1
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			n, err := c.UnreadCount(ctx)
			if err != nil {
				continue
			}
			if n != last {
				last = n
				onChange(n)
			}
		}
	}()
	return p
}

func (p *MessagePoller) Close() {
	p.once.Do(func() {
		p.cancel()
		<-p.done
	})
}
