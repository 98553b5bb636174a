package mdflow

import (
	"mdflow/internal/action"
	"mdflow/internal/jsonstream"
	"mdflow/internal/parser"
	"mdflow/internal/prompt"
)

// The concrete types live in the internal packages; these aliases are
// the public surface.

// Block is one ordered unit of a parsed document.
type Block = parser.Block

// BlockType tags a block's shape.
type BlockType = parser.BlockType

const (
	BlockContent     = parser.BlockContent
	BlockInteraction = parser.BlockInteraction
	BlockPreserved   = parser.BlockPreserved
)

// Directive is the structured parse of an interaction block.
type Directive = parser.Directive

// DirectiveKind classifies an interaction directive.
type DirectiveKind = parser.DirectiveKind

const (
	KindButtonsOnly          = parser.KindButtonsOnly
	KindButtonsMultiSelect   = parser.KindButtonsMultiSelect
	KindButtonsWithText      = parser.KindButtonsWithText
	KindButtonsMultiWithText = parser.KindButtonsMultiWithText
	KindNonAssignmentButtons = parser.KindNonAssignmentButtons
	KindTextOnly             = parser.KindTextOnly
)

// DirectiveOption is one selectable button of a directive.
type DirectiveOption = parser.Option

// Vars maps variable names to bound values.
type Vars = parser.Vars

// Step is one decoded streamed record.
type Step = action.Step

// Message is one turn handed to the provider.
type Message = prompt.Message

// ParseDocument splits a raw document into ordered blocks. It never
// fails; pieces matching no special shape are classified as content.
func ParseDocument(document string) []Block {
	return parser.SplitBlocks(document)
}

// ParseDirective parses the text of an interaction block.
func ParseDirective(raw string) (*Directive, error) {
	return parser.ParseDirective(raw)
}

// ExtractVariables returns the {{name}} references in text, protected
// %{{name}} forms excluded.
func ExtractVariables(text string) []string {
	return parser.ExtractVariables(text)
}

// SubstituteVariables resolves {{name}} references against vars and
// unprotects %{{name}} forms. Unbound placeholders stay untouched.
func SubstituteVariables(text string, vars Vars) string {
	return parser.SubstituteVariables(text, vars)
}

// ValidateStep schema-checks a decoded step against the action
// vocabulary.
func ValidateStep(s *Step) error {
	return action.Validate(s)
}

// DecodeStep sanitizes and decodes one extracted record.
func DecodeStep(raw string) (*Step, error) {
	return action.Decode(raw)
}

// ExtractObjects returns every complete top-level JSON object in text,
// in order, prose between objects ignored.
func ExtractObjects(text string) []string {
	return jsonstream.AllObjects(text)
}
