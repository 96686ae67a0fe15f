package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/Sid145V/medical-assistant/internal/platform/telemetry"
)

type Options struct {
	Timeout   time.Duration
	CacheSize int
	CacheTTL  time.Duration
}

type Service struct {
	completer Completer
	timeout   time.Duration
	cache     *expirable.LRU[string, string]
	logger    zerolog.Logger
	metrics   *telemetry.Metrics
}

// NewService builds a chat service. A CacheSize of zero disables the
// first-turn answer cache.
func NewService(completer Completer, opts Options, logger zerolog.Logger) *Service {
	s := &Service{
		completer: completer,
		timeout:   opts.Timeout,
		logger:    logger.With().Str("component", "assistant").Logger(),
	}
	if opts.CacheSize > 0 {
		s.cache = expirable.NewLRU[string, string](opts.CacheSize, nil, opts.CacheTTL)
	}
	return s
}

// SetMetrics attaches optional chat counters.
func (s *Service) SetMetrics(m *telemetry.Metrics) {
	s.metrics = m
}

// normalize folds case and whitespace so trivially different first
// questions share a cache entry.
func normalize(msg string) string {
	return strings.Join(strings.Fields(strings.ToLower(msg)), " ")
}

// Chat returns the assistant's reply. Only request validation fails; any
// completer error is logged and answered with FallbackReply.
func (s *Service) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, ErrEmptyMessage
	}
	for _, t := range req.History {
		if t.Role != RoleUser && t.Role != RoleModel {
			return nil, ErrInvalidRole
		}
	}

	var key string
	if len(req.History) == 0 && s.cache != nil {
		key = normalize(msg)
		if reply, ok := s.cache.Get(key); ok {
			s.metrics.ChatRequest(telemetry.ChatCached)
			return &ChatResponse{Reply: reply}, nil
		}
	}

	turns := make([]Turn, 0, len(req.History)+1)
	turns = append(turns, req.History...)
	turns = append(turns, Turn{Role: RoleUser, Text: msg})

	cctx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reply, err := s.completer.Complete(cctx, SystemInstruction, turns)
	if err != nil {
		s.logger.Error().Err(err).Int("history_turns", len(req.History)).Msg("assistant completion failed")
		s.metrics.ChatRequest(telemetry.ChatFallback)
		return &ChatResponse{Reply: FallbackReply}, nil
	}

	if key != "" {
		s.cache.Add(key, reply)
	}
	s.metrics.ChatRequest(telemetry.ChatAnswered)
	return &ChatResponse{Reply: reply}, nil
}
