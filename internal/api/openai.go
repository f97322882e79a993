package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"interview-trainer/internal/config"
	"interview-trainer/internal/interview"
)

// Client — обёртка над OpenAI API: чат-комплишены для генерации и оценки,
// синтез речи для озвучки вопросов, Whisper для расшифровки голосовых ответов.
type Client struct {
	client *openai.Client
	cfg    *config.OpenAIConfig
}

// Usage — статистика использования токенов одного запроса
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func NewClient(cfg *config.OpenAIConfig) *Client {
	return &Client{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
	}
}

// Chat выполняет один чат-комплишен и возвращает текст ответа
func (c *Client) Chat(ctx context.Context, messages []openai.ChatCompletionMessage) (string, *Usage, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: float32(c.cfg.Temperature),
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", nil, &interview.NetworkError{Op: "chat", Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", nil, &interview.NetworkError{Op: "chat", Err: fmt.Errorf("пустой ответ от OpenAI")}
	}

	usage := &Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}

	return resp.Choices[0].Message.Content, usage, nil
}

// ChatJSON выполняет чат-комплишен, ожидая в ответе чистый JSON
func (c *Client) ChatJSON(ctx context.Context, messages []openai.ChatCompletionMessage) (string, *Usage, error) {
	content, usage, err := c.Chat(ctx, messages)
	if err != nil {
		return "", nil, err
	}
	return CleanJSONResponse(content), usage, nil
}

// Synthesize синтезирует озвучку текста выбранным голосом.
// Возвращает аудио в формате MP3.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.cfg.TTSModel),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, &interview.NetworkError{Op: "synthesize", Err: err}
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, &interview.NetworkError{Op: "synthesize", Err: fmt.Errorf("ошибка чтения аудио: %w", err)}
	}

	return audio, nil
}

// Transcribe расшифровывает запись голосового ответа через Whisper
func (c *Client) Transcribe(ctx context.Context, audio []byte, format, language string) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.cfg.STTModel,
		FilePath: "answer." + format, // имя нужно Whisper для определения формата
		Reader:   bytes.NewReader(audio),
		Language: language,
	})
	if err != nil {
		if isUnsupportedFormat(err) {
			return "", interview.ErrUnsupportedFormat
		}
		return "", &interview.NetworkError{Op: "transcribe", Err: err}
	}

	return strings.TrimSpace(resp.Text), nil
}

// isUnsupportedFormat распознаёт отказ сервиса из-за формата аудио
func isUnsupportedFormat(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid file format") ||
		strings.Contains(msg, "unsupported") ||
		strings.Contains(msg, "could not be decoded")
}

// CleanJSONResponse удаляет markdown форматирование из ответа
func CleanJSONResponse(response string) string {
	// Удаляем ```json и ``` блоки
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```", "")

	// Убираем лишние пробелы и переносы строк в начале и конце
	response = strings.TrimSpace(response)

	return response
}
