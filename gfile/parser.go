package gfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// parser consumes a .g source line by line.
//
// Grammar:
//
//	file     = ".model" NAME section* ".end"
//	section  = ".inputs" NAME* | ".outputs" NAME* | ".internal" NAME*
//	         | ".dummy" NAME* | ".graph" arcline* | ".marking" "{" entry* "}"
//	         | ".capacity" entry*
//	arcline  = TOKEN TOKEN*
//	entry    = key ("=" INT)?      key = TOKEN | "<" TOKEN "," TOKEN ">"
//	NAME     = [A-Za-z_][A-Za-z_0-9]*
//	TOKEN    = [A-Za-z_][A-Za-z_0-9+~/-]*
//
// "#" starts a comment running to the end of the line. Sections may repeat
// and appear in any order after .model; only .graph spans multiple lines.
type parser struct {
	f       *File
	line    int
	text    string
	inGraph bool
	ended   bool
}

// Parse reads a complete .g description.
func Parse(r io.Reader) (*File, error) {
	p := &parser{f: &File{}}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		p.line++
		p.text = sc.Text()
		s := p.text
		if i := strings.IndexByte(s, '#'); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if err := p.parseLine(s); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if p.f.Model == "" {
		return nil, errors.New("missing .model declaration")
	}
	if !p.ended {
		return nil, errors.New("missing .end")
	}
	return p.f, nil
}

// errf wraps an error message with the offending source line.
func (p *parser) errf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("line %d: %s\n  |> %s", p.line, msg, strings.TrimSpace(p.text))
}

func (p *parser) parseLine(s string) error {
	if p.ended {
		return p.errf("content after .end")
	}
	if !strings.HasPrefix(s, ".") {
		if !p.inGraph {
			return p.errf("arc line outside a .graph section")
		}
		toks := strings.Fields(s)
		for _, tok := range toks {
			if !validToken(tok) {
				return p.errf("malformed token %q", tok)
			}
		}
		p.f.Lines = append(p.f.Lines, ArcLine{From: toks[0], To: toks[1:], Line: p.line})
		return nil
	}

	fields := strings.Fields(s)
	directive := fields[0]
	if p.f.Model == "" && directive != ".model" {
		return p.errf("%s before .model", directive)
	}
	p.inGraph = false
	switch directive {
	case ".model":
		if p.f.Model != "" {
			return p.errf("duplicated .model")
		}
		if len(fields) != 2 || !validName(fields[1]) {
			return p.errf(".model expects one name")
		}
		p.f.Model = fields[1]
	case ".inputs":
		return p.names(fields[1:], &p.f.Inputs)
	case ".outputs":
		return p.names(fields[1:], &p.f.Outputs)
	case ".internal":
		return p.names(fields[1:], &p.f.Internals)
	case ".dummy":
		return p.names(fields[1:], &p.f.Dummies)
	case ".graph":
		if len(fields) != 1 {
			return p.errf(".graph takes no arguments")
		}
		p.f.HasGraph = true
		p.inGraph = true
	case ".marking":
		body := strings.TrimSpace(s[len(".marking"):])
		if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
			return p.errf(".marking expects a braced list")
		}
		entries, err := p.entries(body[1 : len(body)-1])
		if err != nil {
			return err
		}
		p.f.Markings = append(p.f.Markings, entries...)
	case ".capacity":
		entries, err := p.entries(s[len(".capacity"):])
		if err != nil {
			return err
		}
		p.f.Capacities = append(p.f.Capacities, entries...)
	case ".end":
		if len(fields) != 1 {
			return p.errf(".end takes no arguments")
		}
		p.ended = true
	default:
		return p.errf("unknown directive %s", directive)
	}
	return nil
}

func (p *parser) names(nn []string, dst *[]string) error {
	for _, n := range nn {
		if !validName(n) {
			return p.errf("invalid signal name %q", n)
		}
		*dst = append(*dst, n)
	}
	return nil
}

// entries parses a whitespace separated override list. "=" may be padded
// with spaces on either side.
func (p *parser) entries(s string) ([]Override, error) {
	var out []Override
	i := 0
	skip := func() {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
	}
	for {
		skip()
		if i >= len(s) {
			return out, nil
		}
		var name string
		if s[i] == '<' {
			j := strings.IndexByte(s[i:], '>')
			if j < 0 {
				return nil, p.errf("unterminated < in override list")
			}
			name = s[i+1 : i+j]
			i += j + 1
			halves := strings.Split(name, ",")
			if len(halves) != 2 || !validToken(halves[0]) || !validToken(halves[1]) {
				return nil, p.errf("malformed implicit place <%s>", name)
			}
		} else {
			j := i
			for j < len(s) && isTokenByte(s[j]) {
				j++
			}
			if j == i {
				return nil, p.errf("unexpected %q in override list", s[i])
			}
			name = s[i:j]
			if !validToken(name) {
				return nil, p.errf("malformed token %q", name)
			}
			i = j
		}
		ov := Override{Name: name, Line: p.line}
		skip()
		if i < len(s) && s[i] == '=' {
			i++
			skip()
			j := i
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			if j == i {
				return nil, p.errf("missing value after = for %s", name)
			}
			v, err := strconv.Atoi(s[i:j])
			if err != nil {
				return nil, p.errf("value out of range for %s", name)
			}
			ov.HasValue = true
			ov.Value = v
			i = j
		}
		out = append(out, ov)
	}
}

func validName(s string) bool {
	if s == "" || !isNameStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return false
		}
	}
	return true
}

func validToken(s string) bool {
	if s == "" || !isNameStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isTokenByte(s[i]) {
			return false
		}
	}
	return true
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameByte(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

func isTokenByte(c byte) bool {
	return isNameByte(c) || c == '+' || c == '-' || c == '~' || c == '/'
}
