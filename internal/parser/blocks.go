package parser

import (
	"regexp"
	"strings"
)

// BlockType tags the shape of a parsed document block.
type BlockType int

const (
	BlockContent BlockType = iota
	BlockInteraction
	BlockPreserved
)

func (t BlockType) String() string {
	switch t {
	case BlockContent:
		return "content"
	case BlockInteraction:
		return "interaction"
	case BlockPreserved:
		return "preserved_content"
	}
	return "unknown"
}

// Block is one ordered unit of a parsed document. Blocks are produced
// fresh on each parse and are read-only afterwards; per-call
// substitution operates on copies.
type Block struct {
	Content   string
	Type      BlockType
	Index     int
	Variables []string
}

// IsInteraction reports whether the block is an interaction directive.
func (b Block) IsInteraction() bool { return b.Type == BlockInteraction }

// blockSeparatorRegex matches the coarse block separator: a line
// consisting solely of ---, whitespace-tolerant.
var blockSeparatorRegex = regexp.MustCompile(`\n\s*---\s*\n`)

// SplitBlocks partitions a raw document into ordered blocks. The
// document is stripped, split on the block separator, and each segment
// is further split so interaction spans become standalone blocks while
// the surrounding text remains separate. Empty trimmed pieces are
// dropped and indices are assigned in traversal order.
//
// The splitter never fails; a piece that matches no special shape is
// classified as content.
func SplitBlocks(document string) []Block {
	var blocks []Block

	for _, segment := range blockSeparatorRegex.Split(strings.TrimSpace(document), -1) {
		for _, piece := range splitDirectivePieces(segment) {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			blocks = append(blocks, Block{
				Content:   piece,
				Type:      classifyPiece(piece),
				Index:     len(blocks),
				Variables: ExtractVariables(piece),
			})
		}
	}
	return blocks
}

// splitDirectivePieces performs a capturing split on the directive
// shape: directive spans become their own pieces, text between spans is
// preserved as-is.
func splitDirectivePieces(segment string) []string {
	var pieces []string
	last := 0
	for {
		start, end, ok := findDirectiveSpan(segment, last)
		if !ok {
			break
		}
		pieces = append(pieces, segment[last:start], segment[start:end])
		last = end
	}
	return append(pieces, segment[last:])
}

// classifyPiece determines the block type purely from content shape.
func classifyPiece(piece string) BlockType {
	if start, end, ok := findDirectiveSpan(piece, 0); ok && start == 0 && end == len(piece) {
		return BlockInteraction
	}
	if IsPreservedBlock(piece) {
		return BlockPreserved
	}
	return BlockContent
}
