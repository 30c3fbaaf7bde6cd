// Package ragchain composes a retriever bound to one collection with a
// hosted chat model into a reusable question-answering chain. The hosted
// model is reached through Groq's OpenAI-compatible API.
package ragchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/nagendra-sahaj/contracts-rag/internal/domain"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

const systemPrompt = "You answer questions about contract documents. " +
	"Use only the provided context. If the context does not contain the " +
	"answer, say so."

// completer is the single-call surface of the hosted model.
type completer interface {
	complete(ctx context.Context, contextText, question string) (string, error)
}

// Builder validates configuration and assembles chains.
type Builder struct {
	retriever domain.Retriever
	baseURL   string
}

// NewBuilder creates a chain builder over the given retriever, targeting the
// Groq API.
func NewBuilder(retriever domain.Retriever) *Builder {
	return &Builder{retriever: retriever, baseURL: defaultBaseURL}
}

// Build binds a collection handle and top-k to a hosted model client. An
// empty API key is ErrMissingCredential and an empty model name is
// ErrInvalidConfiguration; both are rejected before any client is created.
func (b *Builder) Build(h domain.Handle, topK int, apiKey, model string) (*Chain, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: hosted model API key is empty", domain.ErrMissingCredential)
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: hosted model name is empty", domain.ErrInvalidConfiguration)
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(b.baseURL),
	)
	return &Chain{
		handle:    h,
		topK:      topK,
		retriever: b.retriever,
		llm:       &groqCompleter{client: client, model: model},
	}, nil
}

// Chain answers questions against one collection. It keeps no state between
// calls: each Ask performs exactly one retrieval and one model call.
type Chain struct {
	handle    domain.Handle
	topK      int
	retriever domain.Retriever
	llm       completer
}

// Ask retrieves top-k chunks for the question, stuffs them into the prompt
// context and asks the hosted model once. Model failures are surfaced as
// ErrGenerationFailed and never retried here.
func (c *Chain) Ask(ctx context.Context, question string) (domain.RAGAnswer, error) {
	res, err := c.retriever.Retrieve(ctx, c.handle, domain.Query{Text: question, TopK: c.topK})
	if err != nil {
		return domain.RAGAnswer{}, err
	}
	answer, err := c.llm.complete(ctx, stuffContext(res.Results), question)
	if err != nil {
		return domain.RAGAnswer{}, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	return domain.RAGAnswer{Question: question, Answer: strings.TrimSpace(answer)}, nil
}

func stuffContext(results []domain.ScoredChunk) string {
	if len(results) == 0 {
		return "(no relevant context found)"
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Chunk.Content
	}
	return strings.Join(parts, "\n\n")
}

type groqCompleter struct {
	client openai.Client
	model  string
}

func (g *groqCompleter) complete(ctx context.Context, contextText, question string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage("Context:\n" + contextText + "\n\nQuestion: " + question),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %q returned no choices", g.model)
	}
	return resp.Choices[0].Message.Content, nil
}
