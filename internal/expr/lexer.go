package expr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax is wrapped by every tokenizing and parsing failure.
var ErrSyntax = errors.New("syntax error")

type Kind uint8

const (
	EOF Kind = iota
	TimecodeLit
	NumberLit
	RateTag
	Plus
	Minus
	Star
	Slash
	LParen
	RParen
)

var kindNames = [...]string{
	EOF:         "end of input",
	TimecodeLit: "timecode",
	NumberLit:   "number",
	RateTag:     "rate",
	Plus:        "'+'",
	Minus:       "'-'",
	Star:        "'*'",
	Slash:       "'/'",
	LParen:      "'('",
	RParen:      "')'",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Token is one lexeme. Pos is the byte offset in the input.
type Token struct {
	Kind Kind
	Text string
	Pos  int
}

func syntaxError(pos int, format string, args ...interface{}) error {
	return fmt.Errorf("%w at offset %d: %s", ErrSyntax, pos, fmt.Sprintf(format, args...))
}

// Tokenize splits input into tokens, ending with an EOF token.
//
// A run of digits containing ':' or ';' is a timecode literal, otherwise a
// number. '@' followed by a label attaches a frame rate to the literal
// before it. A label may be a rational such as 30000/1001: a '/' directly
// followed by a digit stays in the label, so "tc@24/2" names the rate 24/2
// while "tc@24 / 2" divides.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || c == '.':
			start := i
			for i < len(input) && (isDigit(input[i]) || strings.IndexByte(":;.", input[i]) >= 0) {
				i++
			}
			text := input[start:i]
			kind := NumberLit
			if strings.ContainsAny(text, ":;") {
				kind = TimecodeLit
			} else if strings.Count(text, ".") > 1 || text == "." {
				return nil, syntaxError(start, "malformed number %q", text)
			}
			tokens = append(tokens, Token{Kind: kind, Text: text, Pos: start})
		case c == '@':
			start := i
			i++
			slash := false
			for i < len(input) {
				if isLabelChar(input[i]) {
					i++
					continue
				}
				if input[i] == '/' && !slash && i+1 < len(input) && isDigit(input[i+1]) {
					slash = true
					i++
					continue
				}
				break
			}
			if i == start+1 {
				return nil, syntaxError(start, "expected frame rate after '@'")
			}
			tokens = append(tokens, Token{Kind: RateTag, Text: input[start+1 : i], Pos: start})
		default:
			kind, ok := operatorKinds[c]
			if !ok {
				return nil, syntaxError(i, "unexpected character %q", c)
			}
			tokens = append(tokens, Token{Kind: kind, Text: string(c), Pos: i})
			i++
		}
	}
	return append(tokens, Token{Kind: EOF, Pos: len(input)}), nil
}

var operatorKinds = map[byte]Kind{
	'+': Plus,
	'-': Minus,
	'*': Star,
	'/': Slash,
	'(': LParen,
	')': RParen,
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLabelChar(c byte) bool {
	return isDigit(c) || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
