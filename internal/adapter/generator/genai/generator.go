// Package genai backs the ScenarioGenerator port with Google's Gemini
// models. Prompts are templated, responses are schema-checked, and every
// call retries with bounded exponential backoff before surfacing a
// recoverable error to the orchestrator.
package genai

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"text/template"
	"time"

	"lifeline/internal/app/ports"
	"lifeline/internal/domain/life"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

//go:embed prompts/birth.txt
var birthPrompt string

//go:embed prompts/turn.txt
var turnPrompt string

//go:embed prompts/epilogue.txt
var epiloguePrompt string

var (
	birthTmpl    = template.Must(template.New("birth").Parse(birthPrompt))
	turnTmpl     = template.Must(template.New("turn").Parse(turnPrompt))
	epilogueTmpl = template.Must(template.New("epilogue").Parse(epiloguePrompt))
)

const DefaultModel = "gemini-2.5-flash"

type Config struct {
	APIKey      string
	Model       string
	MaxRetries  uint64
	MaxInterval time.Duration
	// MaxEffectDelta is surfaced in the prompts so the model proposes
	// deltas inside the engine's bounds.
	MaxEffectDelta float64
}

type Generator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	cfg    Config
}

func New(ctx context.Context, cfg Config) (*Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 10 * time.Second
	}
	if cfg.MaxEffectDelta == 0 {
		cfg.MaxEffectDelta = life.DefaultTuning().MaxEffectDelta
	}
	return &Generator{
		client: client,
		model:  client.GenerativeModel(cfg.Model),
		cfg:    cfg,
	}, nil
}

func (g *Generator) Close() error {
	return g.client.Close()
}

func (g *Generator) Birth(ctx context.Context) (ports.BirthPayload, error) {
	prompt, err := render(birthTmpl, struct{ MaxDelta float64 }{g.cfg.MaxEffectDelta})
	if err != nil {
		return ports.BirthPayload{}, err
	}
	var payload ports.BirthPayload
	err = g.generate(ctx, prompt, func(text string) error {
		decoded, err := decodeBirthPayload(text)
		if err != nil {
			return err
		}
		payload = decoded
		return nil
	})
	return payload, err
}

type turnView struct {
	ports.TurnContext
	MaxDelta float64
}

func (g *Generator) Turn(ctx context.Context, tc ports.TurnContext) (ports.TurnPayload, error) {
	prompt, err := render(turnTmpl, turnView{TurnContext: tc, MaxDelta: g.cfg.MaxEffectDelta})
	if err != nil {
		return ports.TurnPayload{}, err
	}
	var payload ports.TurnPayload
	err = g.generate(ctx, prompt, func(text string) error {
		decoded, err := decodeTurnPayload(text)
		if err != nil {
			return err
		}
		payload = decoded
		return nil
	})
	return payload, err
}

func (g *Generator) Epilogue(ctx context.Context, ec ports.EpilogueContext) (string, error) {
	prompt, err := render(epilogueTmpl, ec)
	if err != nil {
		return "", err
	}
	var text string
	err = g.generate(ctx, prompt, func(out string) error {
		text = out
		return nil
	})
	return text, err
}

// generate calls the model and feeds the text through accept, retrying
// both transport failures and content failures: a schema violation is
// handled by asking again, up to the retry bound.
func (g *Generator) generate(ctx context.Context, prompt string, accept func(text string) error) error {
	op := func() error {
		resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return fmt.Errorf("generate content: %w", err)
		}
		text, err := extractText(resp)
		if err != nil {
			return err
		}
		return accept(text)
	}
	b := backoff.NewExponentialBackOff()
	b.MaxInterval = g.cfg.MaxInterval
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, g.cfg.MaxRetries), ctx))
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrMalformed)
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("%w: non-text part", ErrMalformed)
	}
	return string(text), nil
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

var _ ports.ScenarioGenerator = (*Generator)(nil)
