package parser

import (
	"regexp"
	"strings"
)

// Week headers and session lines arrive wrapped in whatever decoration the
// generating model felt like that day: headers, bold, bullets, fancy
// dashes. All pattern matching happens on stripped content, never on the
// raw markdown.

var (
	reHeaderMark = regexp.MustCompile(`^#+\s*`)
	reBold       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reItalic     = regexp.MustCompile(`\*([^*]+)\*`)
	reBullet     = regexp.MustCompile(`^\s*[*\-+]\s+`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

// stripMarkdown removes markdown decoration from a single line, keeping
// only its content.
func stripMarkdown(line string) string {
	line = reHeaderMark.ReplaceAllString(line, "")
	line = reBullet.ReplaceAllString(line, "")
	line = reBold.ReplaceAllString(line, "$1")
	line = reItalic.ReplaceAllString(line, "$1")
	return normalizeText(line)
}

// normalizeText folds fancy dashes to "-" and collapses whitespace.
func normalizeText(line string) string {
	line = strings.ReplaceAll(line, "–", "-") // en dash
	line = strings.ReplaceAll(line, "—", "-") // em dash
	line = reSpaces.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}

// splitLines breaks raw markdown into lines, tolerating CRLF endings.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// isBullet reports whether the raw line is a markdown bullet.
func isBullet(line string) bool {
	return reBullet.MatchString(line)
}

// bulletIndent returns the leading-whitespace width of a bullet line,
// used to tell top-level bullets from nested sub-bullets.
func bulletIndent(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}
