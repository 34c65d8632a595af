// Package ai wraps the OpenAI-compatible generation service behind the
// artifact generator contract.
package ai

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"pageforge/internal/ai/prompts"
	apperrors "pageforge/internal/common/errors"
	"pageforge/internal/common/logger"
)

// Generator produces single-page app artifacts from briefs. Output is
// stochastic; identical inputs do not guarantee identical artifacts.
type Generator struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

// NewGenerator builds a Generator against an OpenAI-compatible endpoint.
// baseURL may be empty to use the default OpenAI endpoint.
func NewGenerator(token, baseURL, model string, log logger.Logger) *Generator {
	cfg := openai.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Generator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log.With("component", "generator"),
	}
}

// Generate returns the full artifact text for the given brief. For round 1,
// existingArtifact is empty; for later rounds it is the prior round's output
// and the model is instructed to return the complete updated file.
func (g *Generator) Generate(ctx context.Context, brief string, round int, existingArtifact string, attachmentNames []string) (string, error) {
	var system, user string
	if round <= 1 {
		system = prompts.InitialSiteSystem()
		user = prompts.InitialSiteUser(brief, attachmentNames)
	} else {
		system = prompts.ReviseSiteSystem()
		user = prompts.ReviseSiteUser(brief, existingArtifact)
	}

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil && shouldRetry(err) {
		g.log.Warn("generation call failed, retrying once", "round", round, "error", err)
		time.Sleep(2 * time.Second)
		resp, err = g.client.CreateChatCompletion(ctx, req)
	}
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeGenerationFailed, "generation service call failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.New(apperrors.CodeGenerationFailed, "generation service returned no choices")
	}

	artifact := Sanitize(resp.Choices[0].Message.Content)
	if artifact == "" {
		g.log.Warn("generation returned empty content after sanitization", "round", round, "usage", resp.Usage)
		return "", apperrors.New(apperrors.CodeGenerationFailed, "generation service returned empty content")
	}

	g.log.Info("artifact generated", "round", round, "bytes", len(artifact))
	return artifact, nil
}
