package testparser

import (
	"io"
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// utf8Scrubber returns a transformer that drops a leading byte order mark and
// replaces invalid UTF-8 sequences with U+FFFD.
func utf8Scrubber() transform.Transformer {
	return xunicode.BOMOverride(xunicode.UTF8.NewDecoder())
}

// xmlCharFilter removes runes that XML 1.0 does not allow in documents,
// such as the ANSI escape bytes PHPUnit copies from colored test output.
var xmlCharFilter = runes.Remove(runes.Predicate(func(r rune) bool {
	return !isXMLChar(r)
}))

// isXMLChar reports whether r is in the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == 0x09 ||
		r == 0x0A ||
		r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= unicode.MaxRune
}

// scrubbedReader wraps r so that it yields valid UTF-8 only.
func scrubbedReader(r io.Reader) io.Reader {
	return transform.NewReader(r, utf8Scrubber())
}

// permissiveReader wraps r so that it yields valid UTF-8 containing only
// characters legal in XML.
func permissiveReader(r io.Reader) io.Reader {
	return transform.NewReader(r, transform.Chain(utf8Scrubber(), xmlCharFilter))
}

// passthroughCharset accepts any declared document encoding. Content has
// already been scrubbed to UTF-8 by the time the decoder sees it.
func passthroughCharset(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
