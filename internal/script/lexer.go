package script

import (
	"strings"
	"unicode"
)

const tabWidth = 8

// lexer turns source text into tokens, synthesizing NEWLINE, INDENT and
// DEDENT from line structure. Newlines inside brackets and after a
// backslash join lines.
type lexer struct {
	src     []rune
	off     int
	line    int
	col     int
	depth   int   // bracket nesting
	indents []int // indentation stack, starts at [0]
	toks    []token
}

func lex(src string) ([]token, error) {
	lx := &lexer{
		src:     []rune(src),
		line:    1,
		col:     1,
		indents: []int{0},
	}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return lx.toks, nil
}

func (lx *lexer) pos() Pos { return Pos{Line: lx.line, Col: lx.col} }

func (lx *lexer) peek(n int) rune {
	if lx.off+n >= len(lx.src) {
		return 0
	}
	return lx.src[lx.off+n]
}

func (lx *lexer) advance() rune {
	r := lx.src[lx.off]
	lx.off++
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return r
}

func (lx *lexer) emit(kind tokenKind, text string, pos Pos) {
	lx.toks = append(lx.toks, token{kind: kind, text: text, pos: pos})
}

func (lx *lexer) run() error {
	atLineStart := true
	for lx.off < len(lx.src) {
		if atLineStart && lx.depth == 0 {
			done, err := lx.indentation()
			if err != nil {
				return err
			}
			if done {
				break
			}
			atLineStart = false
			continue
		}

		r := lx.peek(0)
		switch {
		case r == '\n':
			pos := lx.pos()
			lx.advance()
			if lx.depth == 0 {
				lx.emit(tokNewline, "", pos)
				atLineStart = true
			}
		case r == ' ' || r == '\t' || r == '\r' || r == '\f':
			lx.advance()
		case r == '#':
			lx.skipComment()
		case r == '\\' && lx.peek(1) == '\n':
			lx.advance()
			lx.advance()
		case r == '\\' && lx.peek(1) == '\r' && lx.peek(2) == '\n':
			lx.advance()
			lx.advance()
			lx.advance()
		case isIdentStart(r):
			lx.name()
		case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(lx.peek(1))):
			if err := lx.number(); err != nil {
				return err
			}
		case r == '"' || r == '\'':
			if err := lx.str(); err != nil {
				return err
			}
		default:
			if err := lx.operator(); err != nil {
				return err
			}
		}
	}

	pos := lx.pos()
	if lx.depth > 0 {
		return errorf(pos, "unexpected end of input inside brackets")
	}
	if n := len(lx.toks); n > 0 && lx.toks[n-1].kind != tokNewline {
		lx.emit(tokNewline, "", pos)
	}
	for len(lx.indents) > 1 {
		lx.indents = lx.indents[:len(lx.indents)-1]
		lx.emit(tokDedent, "", pos)
	}
	lx.emit(tokEOF, "", pos)
	return nil
}

// indentation measures the leading whitespace of a logical line and emits
// INDENT or DEDENT tokens. Blank and comment-only lines are skipped. It
// reports done when the input ends.
func (lx *lexer) indentation() (bool, error) {
	for {
		width, ok := lx.measure()
		if !ok {
			return true, nil
		}

		switch lx.peek(0) {
		case '\n':
			lx.advance()
			continue
		case '#':
			lx.skipComment()
			if lx.off < len(lx.src) {
				lx.advance()
			}
			continue
		}

		pos := lx.pos()
		top := lx.indents[len(lx.indents)-1]
		switch {
		case width > top:
			lx.indents = append(lx.indents, width)
			lx.emit(tokIndent, "", pos)
		case width < top:
			for width < lx.indents[len(lx.indents)-1] {
				lx.indents = lx.indents[:len(lx.indents)-1]
				lx.emit(tokDedent, "", pos)
			}
			if width != lx.indents[len(lx.indents)-1] {
				return false, errorf(pos, "unindent does not match any outer indentation level")
			}
		}
		return false, nil
	}
}

// measure consumes leading whitespace and returns its width. Tabs advance
// to the next multiple of eight. ok is false at end of input.
func (lx *lexer) measure() (width int, ok bool) {
	for lx.off < len(lx.src) {
		switch lx.peek(0) {
		case ' ':
			width++
		case '\t':
			width = (width/tabWidth + 1) * tabWidth
		case '\f', '\r':
		default:
			return width, true
		}
		lx.advance()
	}
	return width, false
}

func (lx *lexer) skipComment() {
	for lx.off < len(lx.src) && lx.peek(0) != '\n' {
		lx.advance()
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (lx *lexer) name() {
	pos := lx.pos()
	start := lx.off
	for lx.off < len(lx.src) && isIdentPart(lx.peek(0)) {
		lx.advance()
	}
	text := string(lx.src[start:lx.off])
	if keywords[text] {
		lx.emit(tokKeyword, text, pos)
		return
	}
	lx.emit(tokName, text, pos)
}

func (lx *lexer) number() error {
	pos := lx.pos()
	start := lx.off
	for unicode.IsDigit(lx.peek(0)) {
		lx.advance()
	}
	if lx.peek(0) == '.' {
		lx.advance()
		for unicode.IsDigit(lx.peek(0)) {
			lx.advance()
		}
	}
	if r := lx.peek(0); r == 'e' || r == 'E' {
		lx.advance()
		if r := lx.peek(0); r == '+' || r == '-' {
			lx.advance()
		}
		if !unicode.IsDigit(lx.peek(0)) {
			return errorf(lx.pos(), "invalid number literal")
		}
		for unicode.IsDigit(lx.peek(0)) {
			lx.advance()
		}
	}
	if isIdentStart(lx.peek(0)) {
		return errorf(lx.pos(), "invalid number literal")
	}
	lx.emit(tokNumber, string(lx.src[start:lx.off]), pos)
	return nil
}

func (lx *lexer) str() error {
	pos := lx.pos()
	quote := lx.advance()
	var sb strings.Builder
	for {
		if lx.off >= len(lx.src) || lx.peek(0) == '\n' {
			return errorf(pos, "unterminated string literal")
		}
		r := lx.advance()
		if r == quote {
			break
		}
		if r == '\\' && lx.off < len(lx.src) {
			switch esc := lx.advance(); esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			default:
				sb.WriteRune(esc)
			}
			continue
		}
		sb.WriteRune(r)
	}
	lx.emit(tokString, sb.String(), pos)
	return nil
}

func (lx *lexer) operator() error {
	pos := lx.pos()
	for _, op := range operators {
		if lx.hasPrefix(op) {
			for range op {
				lx.advance()
			}
			switch op {
			case "(", "[":
				lx.depth++
			case ")", "]":
				if lx.depth == 0 {
					return errorf(pos, "unmatched %q", op)
				}
				lx.depth--
			}
			lx.emit(tokOp, op, pos)
			return nil
		}
	}
	return errorf(pos, "unexpected character %q", lx.peek(0))
}

func (lx *lexer) hasPrefix(s string) bool {
	i := 0
	for _, r := range s {
		if lx.peek(i) != r {
			return false
		}
		i++
	}
	return true
}
