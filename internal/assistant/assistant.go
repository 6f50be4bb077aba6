// Package assistant answers campus questions with a Gemini model,
// grounded on the knowledge base and the user's conversation history.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/askcampus/askcampus/internal/knowledge"
	"github.com/askcampus/askcampus/internal/record"
)

// Generator produces one model answer for a prompt. It is implemented
// by geminiGenerator in production and by mocks in tests.
type Generator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
}

// Request is one question for the assistant.
type Request struct {
	UserID   string
	Question string
	Mode     string // chat, qa, analysis; empty = chat
	Language string // BCP 47-ish code; empty = en
	History  []record.Record
}

// Assistant answers questions in one of three modes.
type Assistant struct {
	gen     Generator
	base    *knowledge.Base
	limiter *rate.Limiter
	logger  *slog.Logger
}

// requestsPerSecond caps outbound model calls. The free Gemini tier
// allows 10 requests per minute; one per second with a small burst
// stays well inside paid-tier quotas too.
const requestsPerSecond = 1

// New creates an Assistant on top of an arbitrary Generator.
func New(gen Generator, base *knowledge.Base, logger *slog.Logger) *Assistant {
	if base == nil {
		base = &knowledge.Base{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		gen:     gen,
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 2),
		logger:  logger,
	}
}

// Ask answers one question and returns the finished conversation
// record, ready to persist. The record's mode and language are the
// normalized values actually used.
func (a *Assistant) Ask(ctx context.Context, req Request) (record.Record, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return record.Record{}, fmt.Errorf("ask: %w", record.ErrMissingField)
	}

	mode := req.Mode
	if mode == "" {
		mode = record.DefaultMode
	}
	language := req.Language
	if language == "" {
		language = record.DefaultLanguage
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return record.Record{}, fmt.Errorf("ask: waiting for rate limiter: %w", err)
	}

	system := buildSystemInstruction(mode, language, a.base.Context())
	prompt := buildPrompt(req.History, question)

	answer, err := generateWithRetry(ctx, a.gen, system, prompt, a.logger)
	if err != nil {
		return record.Record{}, fmt.Errorf("ask: %w", err)
	}

	a.logger.Debug("generated answer",
		"user_id", req.UserID,
		"mode", mode,
		"language", language,
		"answer_bytes", len(answer))

	return record.New(question, answer, mode, language), nil
}
