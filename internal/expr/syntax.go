package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// normalize rewrites src into a fully parenthesized formula that govaluate
// evaluates with the usual arithmetic rules: ** (or ^) binds tighter than
// unary minus and groups from the right, so -x**2 is -(x**2) and 2**3**2
// is 2**(3**2). Number literals in exponent form are written out in
// decimal. Only arithmetic is accepted.
func normalize(src string) (string, error) {
	toks, err := tokenize(src)
	if err != nil {
		return "", err
	}
	p := &parser{toks: toks}
	out, err := p.additive()
	if err != nil {
		return "", err
	}
	if t := p.peek(); t.kind != tokEOF {
		return "", fmt.Errorf("unexpected %q at offset %d", t.text, t.pos)
	}
	return out, nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokKind
	text string
	pos  int
}

func tokenize(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			j := scanNumber(rs, i)
			v, err := strconv.ParseFloat(string(rs[i:j]), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q at offset %d", string(rs[i:j]), i)
			}
			toks = append(toks, token{tokNum, strconv.FormatFloat(v, 'f', -1, 64), i})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i + 1
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			toks = append(toks, token{tokIdent, string(rs[i:j]), i})
			i = j
		case r == '*' && i+1 < len(rs) && rs[i+1] == '*':
			toks = append(toks, token{tokOp, "**", i})
			i += 2
		case r == '^':
			toks = append(toks, token{tokOp, "**", i})
			i++
		case strings.ContainsRune("+-*/%", r):
			toks = append(toks, token{tokOp, string(r), i})
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case r == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q at offset %d", r, i)
		}
	}
	return append(toks, token{kind: tokEOF, text: "end of input", pos: len(rs)}), nil
}

// scanNumber returns the end of the literal starting at i: digits, an
// optional fraction and an optional exponent with at least one digit.
func scanNumber(rs []rune, i int) int {
	j := i
	for j < len(rs) && unicode.IsDigit(rs[j]) {
		j++
	}
	if j < len(rs) && rs[j] == '.' {
		j++
		for j < len(rs) && unicode.IsDigit(rs[j]) {
			j++
		}
	}
	if j < len(rs) && (rs[j] == 'e' || rs[j] == 'E') {
		k := j + 1
		if k < len(rs) && (rs[k] == '+' || rs[k] == '-') {
			k++
		}
		if k < len(rs) && unicode.IsDigit(rs[k]) {
			for k < len(rs) && unicode.IsDigit(rs[k]) {
				k++
			}
			j = k
		}
	}
	return j
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops ...string) bool {
	t := p.peek()
	if t.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if t.text == op {
			return true
		}
	}
	return false
}

func (p *parser) additive() (string, error) {
	left, err := p.term()
	if err != nil {
		return "", err
	}
	for p.isOp("+", "-") {
		op := p.next().text
		right, err := p.term()
		if err != nil {
			return "", err
		}
		left = "(" + left + " " + op + " " + right + ")"
	}
	return left, nil
}

func (p *parser) term() (string, error) {
	left, err := p.unary()
	if err != nil {
		return "", err
	}
	for p.isOp("*", "/", "%") {
		op := p.next().text
		right, err := p.unary()
		if err != nil {
			return "", err
		}
		left = "(" + left + " " + op + " " + right + ")"
	}
	return left, nil
}

func (p *parser) unary() (string, error) {
	switch {
	case p.isOp("-"):
		p.next()
		operand, err := p.unary()
		if err != nil {
			return "", err
		}
		return "(0 - " + operand + ")", nil
	case p.isOp("+"):
		p.next()
		return p.unary()
	}
	return p.power()
}

// power is right associative and its exponent may carry a sign, as in
// 2**-1.
func (p *parser) power() (string, error) {
	base, err := p.primary()
	if err != nil {
		return "", err
	}
	if !p.isOp("**") {
		return base, nil
	}
	p.next()
	exp, err := p.unary()
	if err != nil {
		return "", err
	}
	return "(" + base + " ** " + exp + ")", nil
}

func (p *parser) primary() (string, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		return t.text, nil
	case tokIdent:
		if p.peek().kind != tokLParen {
			return t.text, nil
		}
		if _, ok := Functions[t.text]; !ok {
			return "", fmt.Errorf("unknown function %q", t.text)
		}
		p.next()
		var args []string
		if p.peek().kind != tokRParen {
			for {
				arg, err := p.additive()
				if err != nil {
					return "", err
				}
				args = append(args, arg)
				if p.peek().kind != tokComma {
					break
				}
				p.next()
			}
		}
		if err := p.expect(tokRParen); err != nil {
			return "", err
		}
		return t.text + "(" + strings.Join(args, ", ") + ")", nil
	case tokLParen:
		inner, err := p.additive()
		if err != nil {
			return "", err
		}
		if err := p.expect(tokRParen); err != nil {
			return "", err
		}
		return inner, nil
	default:
		return "", fmt.Errorf("unexpected %q at offset %d", t.text, t.pos)
	}
}

func (p *parser) expect(kind tokKind) error {
	if t := p.next(); t.kind != kind {
		return fmt.Errorf("expected ')' at offset %d, got %q", t.pos, t.text)
	}
	return nil
}
