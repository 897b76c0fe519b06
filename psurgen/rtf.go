package psurgen

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Group destinations whose content never reaches the document text.
var rtfIgnoredDestinations = map[string]bool{
	"fonttbl":            true,
	"colortbl":           true,
	"stylesheet":         true,
	"info":               true,
	"header":             true,
	"footer":             true,
	"headerl":            true,
	"headerr":            true,
	"headerf":            true,
	"footerl":            true,
	"footerr":            true,
	"footerf":            true,
	"pict":               true,
	"object":             true,
	"themedata":          true,
	"colorschememapping": true,
	"generator":          true,
	"xmlnstbl":           true,
	"listtable":          true,
	"listoverridetable":  true,
	"latentstyles":       true,
	"datastore":          true,
	"rsidtbl":            true,
	"fldinst":            true,
}

// Control words with a literal text rendering. Table cells become pipe
// separators and rows newlines; the tabulation parser splits on exactly
// those characters.
var rtfControlText = map[string]string{
	"par":       "\n",
	"line":      "\n",
	"row":       "\n",
	"sect":      "\n",
	"page":      "\n",
	"tab":       "\t",
	"cell":      "|",
	"nestcell":  "|",
	"emdash":    "-",
	"endash":    "-",
	"lquote":    "'",
	"rquote":    "'",
	"ldblquote": "\"",
	"rdblquote": "\"",
	"bullet":    "•",
}

// rtfToText strips RTF control structure from already-decoded input and
// returns the plain text. The converter tracks group nesting so that
// ignorable destinations are skipped wholesale, honors \ucN skip counts
// after \uN escapes, and decodes \'hh byte escapes as Windows-1252.
func rtfToText(input string) string {
	var out strings.Builder
	out.Grow(len(input) / 2)

	depth := 0
	skipDepth := -1 // -1 means not inside an ignored group
	ucSkip := 1
	ucStack := []int{}
	pendingSkip := 0

	skipping := func() bool { return skipDepth >= 0 }

	i := 0
	for i < len(input) {
		c := input[i]
		switch c {
		case '{':
			depth++
			ucStack = append(ucStack, ucSkip)
			i++
		case '}':
			depth--
			if n := len(ucStack); n > 0 {
				ucSkip = ucStack[n-1]
				ucStack = ucStack[:n-1]
			}
			if skipDepth >= 0 && depth < skipDepth {
				skipDepth = -1
			}
			i++
		case '\\':
			i++
			if i >= len(input) {
				break
			}
			next := input[i]
			switch {
			case next == '\'':
				// \'hh hex byte escape
				if i+2 < len(input) {
					b := byte(hexVal(input[i+1])<<4 | hexVal(input[i+2]))
					if !skipping() {
						if pendingSkip > 0 {
							pendingSkip--
						} else {
							out.WriteRune(charmap.Windows1252.DecodeByte(b))
						}
					}
					i += 3
				} else {
					i = len(input)
				}
			case isASCIILetter(next):
				word, param, haveParam, rest := readControlWord(input, i)
				i = rest
				switch {
				case word == "u" && haveParam:
					r := param
					if r < 0 {
						r += 65536
					}
					if !skipping() {
						out.WriteRune(rune(r))
					}
					pendingSkip = ucSkip
				case word == "uc" && haveParam:
					ucSkip = param
				case word == "bin" && haveParam:
					if param > 0 {
						i += param
						if i > len(input) {
							i = len(input)
						}
					}
				case rtfIgnoredDestinations[word]:
					if !skipping() {
						skipDepth = depth
					}
				default:
					if text, ok := rtfControlText[word]; ok && !skipping() {
						out.WriteString(text)
					}
				}
			default:
				// control symbol
				switch next {
				case '\\', '{', '}':
					if !skipping() {
						out.WriteByte(next)
					}
				case '*':
					if !skipping() {
						skipDepth = depth
					}
				case '~':
					if !skipping() {
						out.WriteByte(' ')
					}
				case '_':
					if !skipping() {
						out.WriteByte('-')
					}
				case '\r', '\n':
					// escaped newline is an implicit \par
					if !skipping() {
						out.WriteByte('\n')
					}
				}
				i++
			}
		case '\r', '\n':
			i++
		default:
			if !skipping() {
				if pendingSkip > 0 {
					pendingSkip--
				} else {
					out.WriteByte(c)
				}
			}
			i++
		}
	}
	return out.String()
}

// readControlWord consumes the letters of a control word starting at pos,
// an optional signed numeric parameter, and the optional single space
// delimiter. It returns the word, the parameter, whether a parameter was
// present, and the index just past the consumed token.
func readControlWord(s string, pos int) (word string, param int, haveParam bool, rest int) {
	start := pos
	for pos < len(s) && isASCIILetter(s[pos]) {
		pos++
	}
	word = s[start:pos]

	neg := false
	if pos < len(s) && s[pos] == '-' {
		neg = true
		pos++
	}
	numStart := pos
	for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
		pos++
	}
	if pos > numStart {
		haveParam = true
		for _, d := range s[numStart:pos] {
			param = param*10 + int(d-'0')
		}
		if neg {
			param = -param
		}
	} else if neg {
		pos-- // lone '-' belongs to the following text
	}

	if pos < len(s) && s[pos] == ' ' {
		pos++
	}
	return word, param, haveParam, pos
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}
