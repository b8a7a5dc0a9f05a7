// Package imagegen talks to the Imagen text-to-image models through the
// Google GenAI SDK.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// ErrNoImage is returned when the provider answers without image bytes,
// typically because the prompt was filtered.
var ErrNoImage = errors.New("provider returned no image")

const outputMIMEType = "image/png"

// Request describes one generation.  Prompt is the fully derived prompt.
type Request struct {
	Prompt      string
	AspectRatio string
}

// Image is a generated picture.
type Image struct {
	Data     []byte
	MIMEType string
}

type imagesAPI interface {
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

type Client struct {
	models imagesAPI
	model  string
	logger *slog.Logger
}

// NewClient builds a Gemini API backed client for the given model.
func NewClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("genai api key is required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newClient(gc.Models, model, logger), nil
}

func newClient(models imagesAPI, model string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{models: models, model: model, logger: logger}
}

// Generate asks the model for exactly one PNG image.
func (c *Client) Generate(ctx context.Context, req Request) (*Image, error) {
	resp, err := c.models.GenerateImages(ctx, c.model, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: outputMIMEType,
		AspectRatio:    req.AspectRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("generate images: %w", err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, ErrNoImage
	}
	gen := resp.GeneratedImages[0]
	if gen == nil || gen.Image == nil || len(gen.Image.ImageBytes) == 0 {
		if gen != nil && gen.RAIFilteredReason != "" {
			c.logger.Warn("image filtered by provider", "model", c.model, "reason", gen.RAIFilteredReason)
		}
		return nil, ErrNoImage
	}
	mime := gen.Image.MIMEType
	if mime == "" {
		mime = outputMIMEType
	}
	return &Image{Data: gen.Image.ImageBytes, MIMEType: mime}, nil
}
