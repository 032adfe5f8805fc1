package lsp

import (
	"strings"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// byteColToUTF16 converts a 1-based byte column to a 0-based UTF-16 offset.
func byteColToUTF16(lineText string, byteCol int) uint32 {
	if byteCol <= 1 {
		return 0
	}
	limit := byteCol - 1
	if limit > len(lineText) {
		limit = len(lineText)
	}
	var count uint32
	for _, r := range lineText[:limit] {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		count += uint32(n)
	}
	return count
}

// rangeAt is the LSP range of length bytes at a 1-based line and column.
func rangeAt(text string, line, col, length int) protocol.Range {
	if length < 1 {
		length = 1
	}
	lines := strings.Split(text, "\n")
	if line < 1 || line > len(lines) {
		return protocol.Range{}
	}
	lineText := lines[line-1]
	start := protocol.Position{Line: uint32(line - 1), Character: byteColToUTF16(lineText, col)}
	end := protocol.Position{Line: start.Line, Character: byteColToUTF16(lineText, col+length)}
	if end.Character <= start.Character {
		end.Character = start.Character + 1
	}
	return protocol.Range{Start: start, End: end}
}
