// Package gemini implements mdflow.Provider over the Google GenAI API.
package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"google.golang.org/genai"

	"mdflow"
)

// DefaultModel is used when neither the client nor the call names one.
const DefaultModel = "gemini-2.0-flash"

// Environment variables consulted for the API key, in order.
const (
	EnvAPIKey       = "MDFLOW_GEMINI_API_KEY"
	EnvAPIKeyLegacy = "GEMINI_API_KEY"
)

// Client is a Gemini-backed Provider.
type Client struct {
	client *genai.Client
	model  string
}

// Options configure a Client.
type Options struct {
	// APIKey overrides the environment lookup.
	APIKey string

	// Model is the default model for calls that do not name one.
	Model string
}

// New creates a Client. The API key is taken from Options, then
// MDFLOW_GEMINI_API_KEY, then GEMINI_API_KEY.
func New(ctx context.Context, opts Options) (*Client, error) {
	key := opts.APIKey
	if key == "" {
		key = os.Getenv(EnvAPIKey)
	}
	if key == "" {
		key = os.Getenv(EnvAPIKeyLegacy)
	}
	if key == "" {
		return nil, fmt.Errorf("gemini API key is required (set %s)", EnvAPIKey)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) resolveModel(opts mdflow.CallOptions) string {
	if opts.Model != "" {
		return opts.Model
	}
	return c.model
}

// convert splits the message list into a system instruction and the
// conversation contents in genai form.
func convert(messages []mdflow.Message) (*genai.GenerateContentConfig, []*genai.Content) {
	var system []string
	var contents []*genai.Content

	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, m.Content)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	config := &genai.GenerateContentConfig{}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	return config, contents
}

func applyCallOptions(config *genai.GenerateContentConfig, opts mdflow.CallOptions) {
	if opts.Temperature != nil {
		t := float32(*opts.Temperature)
		config.Temperature = &t
	}
}

// Complete performs a blocking generation call.
func (c *Client) Complete(ctx context.Context, messages []mdflow.Message, opts mdflow.CallOptions) (string, error) {
	config, contents := convert(messages)
	applyCallOptions(config, opts)

	resp, err := c.client.Models.GenerateContent(ctx, c.resolveModel(opts), contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	return resp.Text(), nil
}

// Stream starts a streaming generation call.
func (c *Client) Stream(ctx context.Context, messages []mdflow.Message, opts mdflow.CallOptions) (mdflow.ChunkStream, error) {
	config, contents := convert(messages)
	applyCallOptions(config, opts)

	seq := c.client.Models.GenerateContentStream(ctx, c.resolveModel(opts), contents, config)
	next, stop := iter.Pull2(seq)
	return &stream{next: next, stop: stop}, nil
}

// stream adapts the genai response iterator to the pull cursor.
type stream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
	done bool
}

func (s *stream) Next(ctx context.Context) (string, error) {
	if s.done {
		return "", io.EOF
	}
	for {
		if err := ctx.Err(); err != nil {
			s.stop()
			s.done = true
			return "", err
		}

		resp, err, ok := s.next()
		if !ok {
			s.done = true
			return "", io.EOF
		}
		if err != nil {
			s.stop()
			s.done = true
			return "", fmt.Errorf("gemini stream failed: %w", err)
		}

		// Some responses carry no text parts; skip them.
		if text := resp.Text(); text != "" {
			return text, nil
		}
	}
}
