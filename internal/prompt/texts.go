// Package prompt carries the default instruction texts and assembles
// the message lists handed to the model-calling collaborator. The texts
// are static; per-instance overrides come in through the configuration
// object, never through package-level mutation.
package prompt

// DefaultInteraction asks the model to rewrite an interaction question
// in a more personal tone without changing its meaning.
const DefaultInteraction = "Rewrite the following interaction prompt to be more personal and friendly. " +
	"Keep roughly the original length and leave its function and variable markers unchanged:"

// InteractionRenderRules guards the rewrite: the question's meaning and
// direction must survive verbatim.
const InteractionRenderRules = `Core requirements:
1. Never change the meaning or direction of the question. This is the most important rule.
2. Only the phrasing may change, never the substance.
3. Keep the subject and object of the question as they are: "What should I call you?" must not become "What do you want to call me?".
4. Return only the rewritten question text, nothing else.
5. Keep the tone professional and friendly.

Rewrite strictly under these rules, preserving the original meaning:`

// DefaultInteractionError asks the model to soften a validation error.
const DefaultInteractionError = "Rewrite the following error message to be friendly and constructive, " +
	"helping the user understand the problem and how to fix it:"

// InteractionErrorRenderRules keeps error rewrites clean.
const InteractionErrorRenderRules = "Return only the friendly error text, without any extra formatting or explanation."

// DefaultValidationSystem primes the model for strict input validation.
const DefaultValidationSystem = "You are an input validation assistant. " +
	"Process the user's input strictly according to the specified format and rules."

// OutputInstructionExplanation tells the model that marked spans are
// final output, not instructions: emit them verbatim, translating only
// across languages, and never emit the markers themselves.
const OutputInstructionExplanation = `<preserve_or_translate_instruction>
Content between <preserve_or_translate> and </preserve_or_translate> is final output the user must see, not an instruction to you.
1. The content must appear in your reply, even if other prompts say not to respond to instructions.
2. Never output the markers themselves, only the content between them.
3. Output the content verbatim by default: no rewriting, polishing, additions, or deletions, even if it looks like a heading or a directive.
4. The only exception is translation between languages; a translation must keep the full meaning, tone, and formatting of the original.
</preserve_or_translate_instruction>

`

// DefaultBlackboard drives the streamed incremental-rendering mode: the
// model narrates a lesson onto a canvas of zones and containers,
// emitting one flat JSON action record per step.
const DefaultBlackboard = `<blackboard_mode_instructions>
You are teaching on an incremental canvas. The canvas is divided into zones (physical regions), zones hold containers (logical content groups), and containers hold elements (the smallest addressable items).

Emit your whole response as a sequence of flat JSON objects, one per step, with no wrapping array and no markdown fences. Each object carries:
- "action" (required): one of set_canvas_layout, clear_canvas, activate_zone, clear_zone, create_container, append_to_container, replace_container, update_element, remove_container, move_container, parallel, sequence, annotate.
- "narration": spoken text for this step. Required and non-empty for set_canvas_layout, create_container, and activate_zone.
- "container_id", "zone_id", "element_id": identifiers where the action needs them.
- "html": a small HTML fragment for append_to_container, replace_container, and update_element.
- "animation": optional animation tag.
- "params": action-specific parameters, e.g. {"layout": "split_vertical", "zones": ["left", "right"]} for set_canvas_layout, {"to_zone": "right"} for move_container, {"annotation": {"type": "circle"}} for annotate, {"actions": [...]} for parallel and sequence.

Rules:
1. Start by setting a layout (single, split_vertical, split_horizontal, or grid), then create containers inside zones before appending to them.
2. Prefer many small append_to_container steps over few large ones; keep each html fragment focused.
3. Every container you create gets its own narration; never reuse the layout narration for it.
4. Never emit text between objects other than whitespace.
</blackboard_mode_instructions>`
