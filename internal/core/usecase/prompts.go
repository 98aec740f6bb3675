package usecase

import (
	"fmt"
	"strings"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
)

const (
	chatTemperature   = 0.2
	helperTemperature = 0.3

	hydeNotAQuestion = "NAQ"
)

func ragContextPrompt(chunks []domain.RetrievedChunk) string {
	var sb strings.Builder
	sb.WriteString("Use the following pieces of context to answer the user's question. " +
		"If the context does not contain the answer, say that you could not find " +
		"relevant information in the knowledge base. Do not make an answer up.\n\n")
	for _, chunk := range chunks {
		sb.WriteString(chunk.Text)
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func hydePrompt(query string) string {
	return fmt.Sprintf("Write a short passage that would plausibly answer the question below, "+
		"as if taken from a reference document. If the input is not a question, respond with "+
		"exactly %s and nothing else.\n\nInput: %s", hydeNotAQuestion, query)
}

func titlePrompt(query string) string {
	return fmt.Sprintf("Generate a concise title of at most five words for a conversation "+
		"that starts with the following message. Respond with the title only.\n\nMessage: %s", query)
}

func chunkSummaryPrompt(text string) string {
	return fmt.Sprintf("Summarize the following text. Keep every important fact and name, "+
		"drop repetition and filler. Respond with the summary only.\n\nText: %s", text)
}

// chunkHeader prefixes every embedded chunk so retrieval context carries
// the document identity.
func chunkHeader(name, description string) string {
	return fmt.Sprintf("Document Name: %s \nDocument Description: %s \n\n", name, description)
}

func composeChunkText(name, description, chunk string) string {
	return chunkHeader(name, description) + " Document chunk content: " + chunk
}

// trimTitle strips the surrounding double quotes helper models like to
// add.
func trimTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Trim(title, `"`)
	return strings.TrimSpace(title)
}
