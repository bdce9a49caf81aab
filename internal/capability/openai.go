package capability

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/clipscribe/video-annotator/internal/config"
	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

const defaultCaptionPrompt = "Describe this video frame in one short sentence."

func newClient(cfg *config.Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAI.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

func requestTimeout(cfg *config.Config) time.Duration {
	if cfg.OpenAI.RequestTimeout > 0 {
		return time.Duration(cfg.OpenAI.RequestTimeout) * time.Second
	}
	return 2 * time.Minute
}

type WhisperTranscriber struct {
	cli     *openai.Client
	model   string
	timeout time.Duration
}

func NewWhisperTranscriber(cfg *config.Config) *WhisperTranscriber {
	model := cfg.OpenAI.TranscribeModel
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperTranscriber{
		cli:     newClient(cfg),
		model:   model,
		timeout: requestTimeout(cfg),
	}
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	resp, err := w.cli.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: audioPath,
	})
	if err != nil {
		return "", errors.Wrap(ErrTranscriptionService, err.Error())
	}
	return strings.TrimSpace(resp.Text), nil
}

type VisionCaptioner struct {
	cli     *openai.Client
	model   string
	prompt  string
	timeout time.Duration
}

func NewVisionCaptioner(cfg *config.Config) *VisionCaptioner {
	model := cfg.OpenAI.CaptionModel
	if model == "" {
		model = openai.GPT4oMini
	}
	prompt := cfg.OpenAI.CaptionPrompt
	if prompt == "" {
		prompt = defaultCaptionPrompt
	}
	return &VisionCaptioner{
		cli:     newClient(cfg),
		model:   model,
		prompt:  prompt,
		timeout: requestTimeout(cfg),
	}
}

func (v *VisionCaptioner) Caption(ctx context.Context, image []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	dataURL := fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(image))
	req := openai.ChatCompletionRequest{
		Model: v.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: v.prompt,
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
		MaxTokens:   60,
		Temperature: 0,
	}

	resp, err := v.cli.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", errors.Wrap(ErrCaptionService, err.Error())
	}
	if len(resp.Choices) == 0 {
		return "", errors.Wrap(ErrCaptionService, "no response choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
