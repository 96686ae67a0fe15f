package contact

import (
	"context"
	"strings"
)

type Service struct {
	messages MessageRepository
}

func NewService(messages MessageRepository) *Service {
	return &Service{messages: messages}
}

type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*Message, error) {
	m := &Message{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Message: strings.TrimSpace(req.Message),
	}
	if m.Name == "" || m.Email == "" || m.Message == "" {
		return nil, ErrMissingFields
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Message, int, error) {
	return s.messages.List(ctx, limit, offset)
}
