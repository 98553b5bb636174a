package mdflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"mdflow/internal/config"
	"mdflow/internal/jsonstream"
	"mdflow/internal/logging"
	"mdflow/internal/parser"
	"mdflow/internal/prompt"
)

// Mode selects how Process talks to the provider.
type Mode int

const (
	// ModePromptOnly builds the messages and returns them without a
	// model call. Works without a provider.
	ModePromptOnly Mode = iota

	// ModeComplete performs a blocking call and returns the full text.
	ModeComplete

	// ModeStream returns a ChunkStream over the incremental response.
	ModeStream
)

// Flow owns one document: it parses it into blocks once, lazily, and
// processes individual blocks against the configured provider. The
// parsed blocks are immutable; per-call substitution operates on
// copies. A Flow is safe for concurrent Process calls.
type Flow struct {
	document string
	provider Provider
	cfg      config.Config
	log      *zap.Logger

	parseOnce sync.Once
	blocks    []parser.Block
}

// Option configures a Flow at construction.
type Option func(*Flow)

// WithProvider sets the model-calling collaborator.
func WithProvider(p Provider) Option {
	return func(f *Flow) { f.provider = p }
}

// WithDocumentPrompt sets the document-level instruction sent as the
// leading system message.
func WithDocumentPrompt(instruction string) Option {
	return func(f *Flow) { f.cfg.Prompts.Document = instruction }
}

// WithInteractionPrompt overrides the interaction-render instruction.
func WithInteractionPrompt(instruction string) Option {
	return func(f *Flow) { f.cfg.Prompts.Interaction = instruction }
}

// WithInteractionErrorPrompt overrides the interaction-error
// instruction.
func WithInteractionErrorPrompt(instruction string) Option {
	return func(f *Flow) { f.cfg.Prompts.InteractionError = instruction }
}

// WithBlackboardPrompt overrides the streaming-mode instruction.
func WithBlackboardPrompt(instruction string) Option {
	return func(f *Flow) { f.cfg.Prompts.Blackboard = instruction }
}

// WithConfig replaces the whole configuration object. Empty prompt
// fields are filled with the defaults.
func WithConfig(cfg config.Config) Option {
	return func(f *Flow) {
		cfg.ApplyDefaults()
		f.cfg = cfg
	}
}

// WithLogger installs a logger; the library is silent without one.
func WithLogger(l *zap.Logger) Option {
	return func(f *Flow) {
		f.log = l
		logging.SetLogger(l)
	}
}

// New builds a Flow over a document. Without a provider only
// ModePromptOnly and preserved-content processing are available.
func New(document string, opts ...Option) *Flow {
	f := &Flow{
		document: document,
		provider: NoProvider{},
		cfg:      config.Default(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Document returns the raw document text.
func (f *Flow) Document() string { return f.document }

// Blocks parses the document (once) and returns a copy of the block
// list.
func (f *Flow) Blocks() []Block {
	f.parseOnce.Do(func() {
		f.blocks = parser.SplitBlocks(f.document)
		f.log.Debug("document parsed",
			zap.Int("blocks", len(f.blocks)))
	})
	out := make([]Block, len(f.blocks))
	copy(out, f.blocks)
	return out
}

// BlockCount returns the number of parsed blocks.
func (f *Flow) BlockCount() int { return len(f.Blocks()) }

// Block returns the block at index. The error carries both the
// requested index and the total count.
func (f *Flow) Block(index int) (Block, error) {
	blocks := f.Blocks()
	if index < 0 || index >= len(blocks) {
		return Block{}, fmt.Errorf("%w: index %d, total %d", ErrBlockIndex, index, len(blocks))
	}
	return blocks[index], nil
}

// Variables returns every {{name}} referenced in the document.
func (f *Flow) Variables() []string {
	return parser.ExtractVariables(f.document)
}

// ProcessOptions parameterize one Process call.
type ProcessOptions struct {
	Mode Mode

	// Vars are substituted into block content and prompts.
	Vars Vars

	// UserInput, when set on an interaction block, switches from
	// rendering the interaction to validating the input against it.
	UserInput Vars

	// Context is prepended conversation history, passed through to
	// the provider where the block type uses it.
	Context []Message
}

// Result is the outcome of one Process call.
type Result struct {
	// Content is the final text (ModeComplete), or the passthrough
	// text for preserved and provider-less interaction processing.
	Content string

	// Prompt is the user-facing instruction that was (or would be)
	// sent, for ModePromptOnly inspection.
	Prompt string

	// Vars carries variable assignments extracted from interaction
	// input.
	Vars Vars

	// Stream is set in ModeStream.
	Stream ChunkStream

	// Metadata carries auxiliary parse details.
	Metadata map[string]any
}

// Process runs one block through the unified interface: content blocks
// become model instructions, interaction blocks render or validate,
// preserved blocks pass through without a model call.
func (f *Flow) Process(ctx context.Context, index int, opts ProcessOptions) (*Result, error) {
	block, err := f.Block(index)
	if err != nil {
		return nil, err
	}

	log := logging.For(logging.CategoryEngine)
	log.Debug("processing block",
		zap.Int("index", index),
		zap.Stringer("type", block.Type),
		zap.Int("mode", int(opts.Mode)))

	switch block.Type {
	case BlockPreserved:
		return f.processPreserved(block, opts)
	case BlockInteraction:
		if opts.UserInput != nil {
			return f.processInteractionInput(ctx, block, opts)
		}
		return f.processInteractionRender(ctx, block, opts)
	default:
		return f.processContent(ctx, block, opts)
	}
}

// documentInstruction resolves the document-level instruction with the
// caller's variables substituted.
func (f *Flow) documentInstruction(vars Vars) string {
	return parser.SubstituteVariables(f.cfg.Prompts.Document, vars)
}

func (f *Flow) callOptions() CallOptions {
	return CallOptions{Model: f.cfg.Model, Temperature: f.cfg.Temperature}
}

// processContent turns a content block into a model instruction.
func (f *Flow) processContent(ctx context.Context, block Block, opts ProcessOptions) (*Result, error) {
	content, hasPreserved := parser.ProcessOutputInstructions(block.Content)
	content = parser.SubstituteVariables(content, opts.Vars)

	messages := prompt.ContentMessages(f.documentInstruction(opts.Vars), content, hasPreserved)
	messages = withContext(messages, opts.Context)

	switch opts.Mode {
	case ModePromptOnly:
		return promptOnlyResult(messages), nil
	case ModeComplete:
		text, err := f.provider.Complete(ctx, messages, f.callOptions())
		if err != nil {
			return nil, err
		}
		return &Result{Content: text, Prompt: lastContent(messages)}, nil
	case ModeStream:
		stream, err := f.provider.Stream(ctx, messages, f.callOptions())
		if err != nil {
			return nil, err
		}
		return &Result{Stream: stream, Prompt: lastContent(messages)}, nil
	}
	return nil, fmt.Errorf("unknown mode %d", opts.Mode)
}

// processPreserved unwraps a preserved block and substitutes variables;
// no model call is involved.
func (f *Flow) processPreserved(block Block, opts ProcessOptions) (*Result, error) {
	content := parser.ExtractPreserved(block.Content)
	content = parser.SubstituteVariables(content, opts.Vars)
	if opts.Mode == ModeStream {
		return &Result{Content: content, Stream: &chunkSlice{chunks: []string{content}}}, nil
	}
	return &Result{Content: content}, nil
}

// processInteractionRender rewrites the interaction question through
// the provider. Streaming collects the full rewrite and emits the
// reconstructed directive once; partial directives are never shown.
func (f *Flow) processInteractionRender(ctx context.Context, block Block, opts ProcessOptions) (*Result, error) {
	// The directive is parsed from the raw content; substitution first
	// would unprotect the %{{var}} marker and break the shape. Only the
	// extracted question text gets the caller's variables.
	processed := block.Content

	question := parser.ExtractQuestion(processed)
	if question == "" {
		return &Result{Content: parser.SubstituteVariables(processed, opts.Vars)}, nil
	}
	question = parser.SubstituteVariables(question, opts.Vars)

	messages := prompt.InteractionRenderMessages(f.cfg.Prompts.Interaction, question)

	switch opts.Mode {
	case ModePromptOnly:
		res := promptOnlyResult(messages)
		res.Metadata["original_content"] = processed
		res.Metadata["question"] = question
		return res, nil

	case ModeComplete:
		rendered, err := f.provider.Complete(ctx, messages, f.callOptions())
		if err != nil {
			if err == ErrNoProvider {
				return &Result{Content: processed}, nil
			}
			return nil, err
		}
		content := reconstructDirective(processed, rendered)
		return &Result{
			Content: content,
			Prompt:  lastContent(messages),
			Metadata: map[string]any{
				"original_question": question,
				"rendered_question": rendered,
			},
		}, nil

	case ModeStream:
		stream, err := f.provider.Stream(ctx, messages, f.callOptions())
		if err != nil {
			if err == ErrNoProvider {
				return &Result{Stream: &chunkSlice{chunks: []string{processed}}}, nil
			}
			return nil, err
		}
		full, err := drainChunks(ctx, stream)
		if err != nil {
			return nil, err
		}
		content := reconstructDirective(processed, full)
		return &Result{
			Content: content,
			Stream:  &chunkSlice{chunks: []string{content}},
			Prompt:  lastContent(messages),
		}, nil
	}
	return nil, fmt.Errorf("unknown mode %d", opts.Mode)
}

// processInteractionInput validates user input against the directive.
func (f *Flow) processInteractionInput(ctx context.Context, block Block, opts ProcessOptions) (*Result, error) {
	directive, err := parser.ParseDirective(block.Content)
	if err != nil {
		return f.renderError(ctx, fmt.Sprintf("interaction parse failed: %v", err), opts)
	}

	target := directive.Variable
	if target == "" {
		target = "user_input"
	}

	if directive.Kind == parser.KindNonAssignmentButtons {
		// Any input completes a non-assignment interaction; no
		// variable is set.
		return &Result{Metadata: map[string]any{
			"interaction_kind": directive.Kind.String(),
		}}, nil
	}

	values := opts.UserInput[target]
	if directive.Kind == parser.KindTextOnly {
		if len(values) == 0 {
			return f.renderError(ctx, fmt.Sprintf("no input provided for variable %q", target), opts)
		}
		return f.validateTextInput(ctx, directive, target, values, opts)
	}

	return f.validateButtonInput(ctx, directive, target, values, opts)
}

// validateTextInput runs free-text input through the model-backed
// extraction check. Without a provider the input is accepted verbatim;
// an unparseable verdict also falls back to acceptance, since blocking
// a user on a broken validation response is worse than admitting odd
// input.
func (f *Flow) validateTextInput(ctx context.Context, d *parser.Directive, target string, values []string, opts ProcessOptions) (*Result, error) {
	input := strings.Join(values, parser.ListSeparator)
	messages := prompt.ValidationMessages(d.Prompt, target, nil, input)

	if opts.Mode == ModePromptOnly {
		return promptOnlyResult(messages), nil
	}

	accepted := &Result{
		Vars: Vars{target: values},
		Metadata: map[string]any{
			"interaction_kind": d.Kind.String(),
		},
	}

	raw, err := f.provider.Complete(ctx, messages, f.callOptions())
	if err != nil {
		if err == ErrNoProvider {
			return accepted, nil
		}
		return nil, err
	}

	objects := jsonstream.AllObjects(raw)
	if len(objects) == 0 {
		return accepted, nil
	}

	var verdict struct {
		Result    string            `json:"result"`
		Reason    string            `json:"reason"`
		ParseVars map[string]string `json:"parse_vars"`
	}
	if err := json.Unmarshal([]byte(jsonstream.Sanitize(objects[0])), &verdict); err != nil {
		return accepted, nil
	}

	switch verdict.Result {
	case "ok":
		if extracted, ok := verdict.ParseVars[target]; ok && extracted != "" {
			accepted.Vars = Vars{target: {extracted}}
		}
		return accepted, nil
	case "illegal":
		reason := verdict.Reason
		if reason == "" {
			reason = "the answer does not fit the question"
		}
		return f.renderError(ctx, reason, opts)
	default:
		return accepted, nil
	}
}

// validateButtonInput matches input values against the option list.
// Text-capable kinds admit unmatched values as custom text; pure
// button kinds reject them.
func (f *Flow) validateButtonInput(ctx context.Context, d *parser.Directive, target string, values []string, opts ProcessOptions) (*Result, error) {
	if len(values) == 0 {
		if d.AllowsText() {
			return &Result{
				Vars: Vars{target: {}},
				Metadata: map[string]any{
					"interaction_kind": d.Kind.String(),
					"empty_input":      true,
				},
			}, nil
		}
		return f.renderError(ctx, "please select one of: "+joinDisplays(d.Options), opts)
	}

	var valid, invalid []string
	for _, value := range values {
		matched := false
		for _, opt := range d.Options {
			if value == opt.Display || value == opt.Value {
				valid = append(valid, opt.Value)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if d.AllowsText() {
			valid = append(valid, value)
		} else {
			invalid = append(invalid, value)
		}
	}

	if len(invalid) > 0 {
		msg := fmt.Sprintf("invalid options: %s. please select one of: %s",
			strings.Join(invalid, ", "), joinDisplays(d.Options))
		return f.renderError(ctx, msg, opts)
	}

	return &Result{
		Vars: Vars{target: valid},
		Metadata: map[string]any{
			"interaction_kind": d.Kind.String(),
			"multi_select":     d.IsMultiSelect(),
		},
	}, nil
}

// renderError turns a validation failure into user-facing text through
// the interaction-error prompt. Without a provider the raw message is
// returned as-is; an error result is not a Go error.
func (f *Flow) renderError(ctx context.Context, message string, opts ProcessOptions) (*Result, error) {
	messages := prompt.ErrorRenderMessages(f.documentInstruction(opts.Vars), f.cfg.Prompts.InteractionError, message)

	switch opts.Mode {
	case ModePromptOnly:
		res := promptOnlyResult(messages)
		res.Metadata["original_error"] = message
		return res, nil

	case ModeComplete:
		friendly, err := f.provider.Complete(ctx, messages, f.callOptions())
		if err != nil {
			if err == ErrNoProvider {
				return &Result{Content: message, Metadata: errMeta(message)}, nil
			}
			return nil, err
		}
		return &Result{Content: friendly, Prompt: lastContent(messages), Metadata: errMeta(message)}, nil

	case ModeStream:
		stream, err := f.provider.Stream(ctx, messages, f.callOptions())
		if err != nil {
			if err == ErrNoProvider {
				return &Result{Content: message, Stream: &chunkSlice{chunks: []string{message}}, Metadata: errMeta(message)}, nil
			}
			return nil, err
		}
		return &Result{Stream: stream, Prompt: lastContent(messages), Metadata: errMeta(message)}, nil
	}
	return nil, fmt.Errorf("unknown mode %d", opts.Mode)
}

func errMeta(message string) map[string]any {
	return map[string]any{"validation_error": message}
}

// renderedVariableRegex matches variable references the model echoed
// back into a rendered question; they are stripped rather than
// substituted so the reconstructed directive stays well-formed.
var renderedVariableRegex = regexp.MustCompile(`%?\{\{\s*[A-Za-z0-9_\p{L}]+\s*\}\}`)

// reconstructDirective splices a rendered question back into the
// directive, replacing the text after the ellipsis. The rendered text
// is cleaned of brackets, parens, and variable references so it cannot
// break the directive syntax.
func reconstructDirective(original, rendered string) string {
	ellipsis := strings.Index(original, "...")
	if ellipsis < 0 {
		return original
	}
	closing := strings.IndexByte(original[ellipsis:], ']')
	if closing < 0 {
		return original
	}

	cleaned := renderedVariableRegex.ReplaceAllString(rendered, "")
	for _, ch := range []string{"[", "]", "(", ")"} {
		cleaned = strings.ReplaceAll(cleaned, ch, "")
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	return original[:ellipsis+3] + cleaned + original[ellipsis+closing:]
}

func joinDisplays(options []parser.Option) string {
	displays := make([]string, 0, len(options))
	for _, opt := range options {
		displays = append(displays, opt.Display)
	}
	return strings.Join(displays, ", ")
}

func withContext(messages, context []Message) []Message {
	if len(context) == 0 {
		return messages
	}
	// Context goes between the system turn and the final instruction.
	var out []Message
	if len(messages) > 0 && messages[0].Role == prompt.RoleSystem {
		out = append(out, messages[0])
		messages = messages[1:]
	}
	out = append(out, context...)
	return append(out, messages...)
}

func lastContent(messages []Message) string {
	if len(messages) == 0 {
		return ""
	}
	return messages[len(messages)-1].Content
}

func promptOnlyResult(messages []Message) *Result {
	return &Result{
		Prompt:   lastContent(messages),
		Metadata: map[string]any{"messages": messages},
	}
}

// drainChunks pulls a ChunkStream to exhaustion and concatenates it.
func drainChunks(ctx context.Context, stream ChunkStream) (string, error) {
	var b strings.Builder
	for {
		chunk, err := stream.Next(ctx)
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		b.WriteString(chunk)
	}
}
