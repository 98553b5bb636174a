package prompt

import "strings"

// Message roles, matching the wire format of the collaborator.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn handed to the model-calling collaborator.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// System and User are shorthand constructors.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message   { return Message{Role: RoleUser, Content: content} }

// ContentMessages builds the message list for a content block: the
// document instruction as system message, the processed block content
// as the user instruction. When the block carried preserved spans the
// output-instruction explanation precedes the content.
func ContentMessages(documentInstruction, blockContent string, hasPreservedSpans bool) []Message {
	var msgs []Message
	if documentInstruction != "" {
		msgs = append(msgs, System(documentInstruction))
	}
	if hasPreservedSpans {
		blockContent = OutputInstructionExplanation + blockContent
	}
	return append(msgs, User(blockContent))
}

// InteractionRenderMessages builds the rewrite request for an
// interaction question. A custom instruction replaces the default
// rules wholesale; the default instruction carries them.
func InteractionRenderMessages(interactionInstruction, question string) []Message {
	render := interactionInstruction
	if render == "" || render == DefaultInteraction {
		render = DefaultInteraction + "\n" + InteractionRenderRules
	}
	return []Message{System(render), User(question)}
}

// ErrorRenderMessages builds the friendly-error rewrite request.
func ErrorRenderMessages(documentInstruction, errorInstruction, errorMessage string) []Message {
	if errorInstruction == "" {
		errorInstruction = DefaultInteractionError
	}
	render := errorInstruction + "\n\nOriginal error: " + errorMessage + "\n\n" + InteractionErrorRenderRules

	var msgs []Message
	if documentInstruction != "" {
		msgs = append(msgs, System(documentInstruction))
	}
	return append(msgs, System(render), User(errorMessage))
}

// BlackboardMessages builds the streaming-mode request: the blackboard
// instruction joins the document instruction in the system turn, the
// block content is the user instruction.
func BlackboardMessages(documentInstruction, blackboardInstruction, blockContent string) []Message {
	if blackboardInstruction == "" {
		blackboardInstruction = DefaultBlackboard
	}
	system := blackboardInstruction
	if documentInstruction != "" {
		system = documentInstruction + "\n\n" + blackboardInstruction
	}
	return []Message{System(system), User(blockContent)}
}

// ValidationMessages builds the input-validation request for free-text
// interaction input: the model extracts the target variable's value
// from the user's answer or flags it as illegal.
func ValidationMessages(question, targetVariable string, options []string, userInput string) []Message {
	var b strings.Builder
	b.WriteString("# Task\n")
	b.WriteString("Extract the relevant information from the user's answer and reply in JSON:\n")
	b.WriteString(`- valid: {"result": "ok", "parse_vars": {"` + targetVariable + `": "extracted value"}}` + "\n")
	b.WriteString(`- invalid: {"result": "illegal", "reason": "why"}` + "\n\n")
	if question != "" {
		b.WriteString("# Related question\n" + question + "\n\n")
	}
	if len(options) > 0 {
		b.WriteString("## Predefined options\n")
		b.WriteString("Available options: " + strings.Join(options, ", ") + "\n")
		b.WriteString("Accept any of these directly; accept custom input when it fits the same topic.\n\n")
	}
	b.WriteString("# User answer\n" + userInput + "\n\n")
	b.WriteString("# Extraction rules\n")
	b.WriteString("1. Understand what the question asks for and extract the matching part of the answer.\n")
	b.WriteString("2. For nickname or name questions, accept any non-empty reasonable string.\n")
	b.WriteString("3. Mark the answer illegal only when it is entirely unrelated, inappropriate, or clearly unreasonable.\n")

	return []Message{System(DefaultValidationSystem), User(b.String())}
}
