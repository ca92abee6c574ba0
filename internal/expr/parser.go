package expr

import (
	"strconv"

	"github.com/zsiec/stimecode/pkg/timecode"
)

type node interface{}

type timecodeNode struct {
	text string
	rate string // empty means the evaluator's default
	pos  int
}

type numberNode struct {
	value float64
}

type negNode struct {
	x node
}

type binaryNode struct {
	op   timecode.Op
	l, r node
	pos  int
}

// parser is a recursive descent parser over:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = "-" unary | primary
//	primary = TIMECODE [ RATE ] | NUMBER | "(" expr ")"
type parser struct {
	tokens []Token
	pos    int
}

func parse(input string) (node, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != EOF {
		return nil, syntaxError(tok.Pos, "unexpected %s", tok.Kind)
	}
	return n, nil
}

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) expr() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		var op timecode.Op
		switch tok.Kind {
		case Plus:
			op = timecode.OpAdd
		case Minus:
			op = timecode.OpSub
		default:
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, l: left, r: right, pos: tok.Pos}
	}
}

func (p *parser) term() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		var op timecode.Op
		switch tok.Kind {
		case Star:
			op = timecode.OpMul
		case Slash:
			op = timecode.OpDiv
		default:
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, l: left, r: right, pos: tok.Pos}
	}
}

func (p *parser) unary() (node, error) {
	if p.peek().Kind == Minus {
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &negNode{x: x}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	tok := p.next()
	switch tok.Kind {
	case TimecodeLit:
		n := &timecodeNode{text: tok.Text, pos: tok.Pos}
		if p.peek().Kind == RateTag {
			n.rate = p.next().Text
		}
		return n, nil
	case NumberLit:
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, syntaxError(tok.Pos, "malformed number %q", tok.Text)
		}
		if p.peek().Kind == RateTag {
			return nil, syntaxError(p.peek().Pos, "frame rate can only follow a timecode")
		}
		return &numberNode{value: v}, nil
	case LParen:
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.Kind != RParen {
			return nil, syntaxError(closing.Pos, "expected ')' but found %s", closing.Kind)
		}
		return n, nil
	}
	return nil, syntaxError(tok.Pos, "unexpected %s", tok.Kind)
}
