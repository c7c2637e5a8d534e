// Package qa answers natural-language questions about a single document's
// text via per-question retrieval-augmented generation: the content is
// chunked, embedded, indexed in memory, and the best-matching passages are
// handed to a chat model together with the question.
package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Engine answers a question against the given document content.
type Engine interface {
	Answer(ctx context.Context, question, content string) (string, error)
}

const systemPrompt = "You are a question answering assistant. Answer the question using only " +
	"the provided document excerpts. If the excerpts do not contain the answer, say so."

// RetrievalEngine is the production Engine: sentence chunking, OpenAI
// embeddings, in-memory cosine retrieval, and an eino chat model for
// generation. The index lives only for the duration of one Answer call.
type RetrievalEngine struct {
	chunker  *sentenceChunker
	embedder Embedder
	chat     model.BaseChatModel
	topK     int
}

// NewRetrievalEngine wires an Engine from its collaborators. Both the
// embedder and the chat model are injected so tests can substitute fakes
// without process-wide side effects.
func NewRetrievalEngine(embedder Embedder, chat model.BaseChatModel) *RetrievalEngine {
	return &RetrievalEngine{
		chunker:  newSentenceChunker(5, 1),
		embedder: embedder,
		chat:     chat,
		topK:     4,
	}
}

// NewOpenAIChatModel builds the eino OpenAI-compatible chat model used for
// answer generation.
func NewOpenAIChatModel(ctx context.Context, baseURL, apiKey, modelName string) (model.BaseChatModel, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: baseURL,
		Model:   modelName,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return cm, nil
}

func (e *RetrievalEngine) Answer(ctx context.Context, question, content string) (string, error) {
	chunks := e.chunker.Chunk(content)
	if len(chunks) == 0 {
		return "", errors.New("no indexable content")
	}

	vectors, err := e.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return "", fmt.Errorf("embed document: %w", err)
	}
	ix, err := newIndex(chunks, vectors)
	if err != nil {
		return "", err
	}

	qvec, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}
	excerpts := ix.Search(qvec, e.topK)

	var prompt strings.Builder
	prompt.WriteString("Document excerpts:\n\n")
	for i, ex := range excerpts {
		fmt.Fprintf(&prompt, "[%d] %s\n\n", i+1, ex)
	}
	prompt.WriteString("Question: ")
	prompt.WriteString(question)

	msg, err := e.chat.Generate(ctx, []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: prompt.String()},
	})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	answer := strings.TrimSpace(msg.Content)
	if answer == "" {
		return "", errors.New("model returned an empty answer")
	}
	return answer, nil
}
