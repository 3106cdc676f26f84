// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package labels

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-3-flash-preview"

// Gemini generates team names with Google's Gemini API
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed generator. baseURL is optional and
// only needed to point the client at a proxy or a test server.
func NewGemini(ctx context.Context, apiKey, model, baseURL string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// GenerateLabels asks the model for a JSON array of count team names
func (g *Gemini) GenerateLabels(ctx context.Context, count int, theme string) ([]string, error) {
	if count <= 0 {
		return []string{}, nil
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(Prompt(count, theme)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini generate failed: %w", err)
	}

	return DecodeLabels(resp.Text(), count)
}

// Name identifies the generator in logs
func (g *Gemini) Name() string {
	return "gemini:" + g.model
}

// Prompt is the instruction sent to the model
func Prompt(count int, theme string) string {
	return fmt.Sprintf("请生成 %d 个独特、有创意且有趣的团队名称，主题是 \"%s\"。请直接返回一个包含字符串的 JSON 数组，必须使用简体中文。", count, theme)
}
