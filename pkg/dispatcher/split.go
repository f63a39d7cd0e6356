package dispatcher

import (
	"strings"
	"unicode/utf8"
)

// Split cuts text into pieces of at most size bytes without breaking runes.
// A piece ends after the last newline that fits when there is one. Joining
// the pieces gives back the original text.
func Split(text string, size int) []string {
	if text == "" {
		return nil
	}
	if size < utf8.UTFMax {
		size = utf8.UTFMax
	}

	var chunks []string
	for len(text) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = size
		}
		if newline := strings.LastIndexByte(text[:cut], '\n'); newline > 0 {
			cut = newline + 1
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	return append(chunks, text)
}
