// Package mdflow implements the markdown-flow document core: a format
// that interleaves narrative text, interactive directives, protected
// passthrough segments, and variable placeholders, assembled into model
// instructions and decoded back from the model's streamed output into
// structured records.
//
// The library surface is a Flow engine built over four pure parsing
// components (block splitter, directive parser, variable engine, step
// validator) and one stateful one (the incremental JSON extractor
// behind StepStream). The model-calling collaborator is abstracted as
// Provider; package gemini ships a reference implementation.
//
// Document grammar, in brief:
//
//	---                     block separator (own line)
//	?[%{{var}} A|B|...ask]  interaction directive
//	{{name}}                variable, substituted now
//	%{{name}}               protected variable, substitution deferred
//	!===text!===            preserved content, emitted verbatim
package mdflow
