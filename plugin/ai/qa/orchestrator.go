package qa

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	coreerrors "github.com/quillhq/concierge/internal/errors"
	"github.com/quillhq/concierge/plugin/ai"
	"github.com/quillhq/concierge/plugin/ai/cache"
	"github.com/quillhq/concierge/plugin/ai/session"
	"github.com/quillhq/concierge/plugin/ai/timeout"
)

const (
	// NotFoundReply is returned when retrieval confidence is too low to
	// answer without fabricating.
	NotFoundReply = "I couldn't find anything about that in the documents I have. Could you rephrase, or ask about something else?"

	// snippetLength bounds the source excerpt returned with an answer.
	snippetLength = 200

	// cacheKeyPrefix namespaces QA entries in the shared cache.
	cacheKeyPrefix = "qa:"
)

const generatorSystemPrompt = `You are a helpful assistant that answers questions using only the provided document context.

Instructions:
1. If the question can be answered from the context, give a comprehensive answer based on the documents.
2. If the context does not contain the answer, say so politely instead of guessing.
3. Be conversational and concise.`

// pronounPattern flags questions that lean on the previous turn.
var pronounPattern = regexp.MustCompile(`\b(it|that|this|they|them|those|he|she)\b`)

// Config tunes the orchestrator.
type Config struct {
	TopK     int           // passages fed to the generator (default: 4)
	MinScore float64       // similarity floor for answering (default: 0.35)
	CacheTTL time.Duration // answer cache lifetime (default: 10m)
}

// Orchestrator implements the retrieve → guard → generate pipeline.
type Orchestrator struct {
	retriever Retriever
	llm       ai.LLMService
	cache     cache.CacheService // nil disables answer caching
	cfg       Config
}

// NewOrchestrator creates a QA orchestrator. cacheSvc may be nil.
func NewOrchestrator(retriever Retriever, llm ai.LLMService, cacheSvc cache.CacheService, cfg Config) *Orchestrator {
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = 0.35
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &Orchestrator{
		retriever: retriever,
		llm:       llm,
		cache:     cacheSvc,
		cfg:       cfg,
	}
}

// Answer resolves one question. recent is the session's trailing history,
// used only for pronoun resolution. Collaborator failures come back as
// coded errors; the caller renders them as a degraded reply.
func (o *Orchestrator) Answer(ctx context.Context, question string, recent []session.Turn) (*Answer, error) {
	query := rewriteQuestion(question, recent)

	if cached, ok := o.cacheGet(ctx, query); ok {
		slog.Debug("qa answer served from cache", "question", query)
		return cached, nil
	}

	passages, err := o.retrieve(ctx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, coreerrors.Timeout("document search timed out", err)
		}
		return nil, coreerrors.RetrievalFailed("document search failed", err)
	}

	// Threshold guard: never reach the generator on weak retrieval.
	if len(passages) == 0 || passages[0].Score < o.cfg.MinScore {
		topScore := 0.0
		if len(passages) > 0 {
			topScore = passages[0].Score
		}
		slog.Info("qa below confidence threshold",
			"question", query,
			"top_score", topScore,
			"min_score", o.cfg.MinScore)
		return &Answer{Text: NotFoundReply}, nil
	}

	if len(passages) > o.cfg.TopK {
		passages = passages[:o.cfg.TopK]
	}

	text, err := o.generate(ctx, question, passages)
	if err != nil {
		return nil, coreerrors.GenerationFailed("answer generation failed", err)
	}

	answer := &Answer{Text: text, Sources: sourcesOf(passages)}
	o.cacheSet(ctx, query, answer)
	return answer, nil
}

// InvalidateCache drops all cached answers. Meant for when the document
// index behind the retriever is rebuilt and cached answers go stale.
func (o *Orchestrator) InvalidateCache(ctx context.Context) error {
	if o.cache == nil {
		return nil
	}
	return o.cache.Invalidate(ctx, cacheKeyPrefix+"*")
}

func (o *Orchestrator) retrieve(ctx context.Context, query string) ([]Passage, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout.RetrieveTimeout)
	defer cancel()
	return o.retriever.Search(ctx, query, o.cfg.TopK)
}

func (o *Orchestrator) generate(ctx context.Context, question string, passages []Passage) (string, error) {
	if o.llm == nil {
		return "", fmt.Errorf("no generation backend configured")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout.GenerateTimeout)
	defer cancel()

	var b strings.Builder
	b.WriteString("Context from documents:\n")
	for _, p := range passages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", p.Ref, p.Content)
	}
	fmt.Fprintf(&b, "Question: %s", question)

	return o.llm.Chat(ctx, []ai.Message{
		ai.SystemPrompt(generatorSystemPrompt),
		ai.UserMessage(b.String()),
	})
}

// rewriteQuestion resolves dangling pronouns against the last user turn.
// Deterministic on purpose: no extra LLM round trip for a rewrite.
func rewriteQuestion(question string, recent []session.Turn) string {
	if !pronounPattern.MatchString(strings.ToLower(question)) {
		return question
	}
	for i := len(recent) - 1; i >= 0 && i >= len(recent)-4; i-- {
		if recent[i].Speaker == session.SpeakerUser && recent[i].Text != question {
			return fmt.Sprintf("%s (in the context of: %s)", question, recent[i].Text)
		}
	}
	return question
}

func sourcesOf(passages []Passage) []Source {
	sources := make([]Source, 0, len(passages))
	for _, p := range passages {
		snippet := p.Content
		if len(snippet) > snippetLength {
			snippet = snippet[:snippetLength] + "..."
		}
		sources = append(sources, Source{Ref: p.Ref, Snippet: snippet})
	}
	return sources
}

func (o *Orchestrator) cacheGet(ctx context.Context, query string) (*Answer, bool) {
	if o.cache == nil {
		return nil, false
	}
	raw, ok := o.cache.Get(ctx, cacheKey(query))
	if !ok {
		return nil, false
	}
	var answer Answer
	if err := json.Unmarshal(raw, &answer); err != nil {
		return nil, false
	}
	return &answer, true
}

func (o *Orchestrator) cacheSet(ctx context.Context, query string, answer *Answer) {
	if o.cache == nil {
		return
	}
	raw, err := json.Marshal(answer)
	if err != nil {
		return
	}
	if err := o.cache.Set(ctx, cacheKey(query), raw, o.cfg.CacheTTL); err != nil {
		slog.Warn("qa answer cache write failed", "error", err)
	}
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
