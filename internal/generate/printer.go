package generate

import (
	"bytes"
	"fmt"
	"strings"
)

// Printer assembles generated source text. It tracks the current indentation
// level and expands $key$ references against the variable map passed to each
// Print call. Strategies never write to it directly between an Indent and
// the matching Outdent of another caller; emission is strictly sequential.
type Printer struct {
	buf    bytes.Buffer
	indent string
	atLine bool
}

func NewPrinter() *Printer {
	return &Printer{atLine: true}
}

// Print expands $key$ references in text against vars and appends the result,
// prefixing every new line with the current indentation. A nil vars map is
// allowed for literal text.
func (p *Printer) Print(vars map[string]string, text string) {
	expanded, err := expandVars(vars, text)
	if err != nil {
		// A reference to an unpopulated variable is a programming error in
		// the strategy that emitted it, never a runtime condition.
		panic(err)
	}
	for i := 0; i < len(expanded); i++ {
		c := expanded[i]
		if p.atLine && c != '\n' {
			p.buf.WriteString(p.indent)
			p.atLine = false
		}
		p.buf.WriteByte(c)
		if c == '\n' {
			p.atLine = true
		}
	}
}

func (p *Printer) Indent() {
	p.indent += "  "
}

func (p *Printer) Outdent() {
	if len(p.indent) < 2 {
		panic("generate: Outdent without matching Indent")
	}
	p.indent = p.indent[:len(p.indent)-2]
}

func (p *Printer) Bytes() []byte {
	return p.buf.Bytes()
}

func (p *Printer) String() string {
	return p.buf.String()
}

func expandVars(vars map[string]string, text string) (string, error) {
	if !strings.ContainsRune(text, '$') {
		return text, nil
	}
	var out strings.Builder
	out.Grow(len(text))
	for {
		start := strings.IndexByte(text, '$')
		if start == -1 {
			out.WriteString(text)
			return out.String(), nil
		}
		out.WriteString(text[:start])
		rest := text[start+1:]
		end := strings.IndexByte(rest, '$')
		if end == -1 {
			return "", fmt.Errorf("generate: unterminated variable reference in %q", text)
		}
		key := rest[:end]
		if key == "" {
			// "$$" is a literal dollar sign.
			out.WriteByte('$')
		} else {
			value, ok := vars[key]
			if !ok {
				return "", fmt.Errorf("generate: unknown variable %q", key)
			}
			out.WriteString(value)
		}
		text = rest[end+1:]
	}
}
