// Package dsl 定义 .dot 场景文件的语法。
//
// 一个场景由 meta、resources 与若干 viewport 段组成，viewport 内声明 headline：
//
//	scene Landing v1 {
//	  resources { font Display { src: "builtin:gobold" } }
//	  viewport 1280px breakpoint 768px {
//	    headline Display size 48px { "Rent anything, anywhere." }
//	  }
//	}
package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	sceneLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		// 数值可带长度（px/pt/mm/in）、时长（ms/s）、倍数（x）或百分比后缀
		{Name: "Number", Pattern: `(?:\d+\.\d+|\.\d+|\d+)(?:ms|mm|px|pt|in|s|x|%)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=+\-*/%<>!?;:|]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	symbols    = sceneLexer.Symbols()
	tokenNames = invert(symbols)

	sceneParser = participle.MustBuild[Document](
		participle.Lexer(sceneLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
		participle.UseLookahead(2),
	)
)

// Document is the root node of a scene file.
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'scene' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section is one of meta / resources / viewport.
type Section struct {
	Meta      *MetaSection      `parser:"  @@"`
	Resources *ResourcesSection `parser:"| @@"`
	Viewport  *ViewportSection  `parser:"| @@"`
}

// Kind returns the section keyword.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Resources != nil:
		return "resources"
	case s.Viewport != nil:
		return "viewport"
	}
	return "unknown"
}

type MetaSection struct {
	Block *Block `parser:"'meta' @@"`
}

type ResourcesSection struct {
	Block *Block `parser:"'resources' @@"`
}

// ViewportSection 描述一个预览视口：宽度以及可选的 breakpoint / mobile-lines 等参数。
type ViewportSection struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Width  string         `parser:"'viewport' @Number"`
	Params []*Lexeme      `parser:"@@*"`
	Block  *Block         `parser:"Newline* @@"`
}

// Block is a brace-delimited statement list.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement is an assignment, a command or a bare string.
type Statement struct {
	Assignment *Assignment  `parser:"  @@"`
	Command    *Command     `parser:"| @@"`
	Text       *TextLiteral `parser:"| @@"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident ':'"`
	Value *Value         `parser:"Newline* @@"`
}

// Command is a keyword followed by loose arguments and an optional block,
// e.g. `headline Display size 48px { ... }` or `color Brand = #4F46E5`.
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Lexeme      `parser:"@@*"`
	Block *Block         `parser:"( Newline* @@ )?"`
}

type TextLiteral struct {
	Value StringLiteral `parser:"@String"`
}

// Value is a property value.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Bool   *Boolean       `parser:"| @('true' | 'false')"`
	Array  *ArrayValue    `parser:"| @@"`
	Expr   *Expression    `parser:"| @@"`
}

// ArrayValue captures `[a, b]` lists, separators may be commas or newlines.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Boolean captures true/false.
type Boolean bool

// Capture implements participle.Capture.
func (b *Boolean) Capture(values []string) error {
	v, err := strconv.ParseBool(values[0])
	if err != nil {
		return err
	}
	*b = Boolean(v)
	return nil
}

// Expression keeps raw tokens (identifiers, references like data.brand) for the scene builder.
type Expression struct {
	Parts []*Lexeme
}

// Parse implements participle.Parseable.
func (e *Expression) Parse(lex *lexer.PeekingLexer) error {
	depth := 0
	for {
		tok := lex.Peek()
		if endOfExpression(tok, depth) {
			break
		}
		lexeme, err := next(lex)
		if err != nil {
			return err
		}
		switch lexeme.Raw {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		}
		e.Parts = append(e.Parts, lexeme)
	}
	if len(e.Parts) == 0 {
		return participle.NextMatch
	}
	return nil
}

// String joins the raw tokens without separators ("data.brand").
func (e *Expression) String() string {
	if e == nil {
		return ""
	}
	s := ""
	for _, p := range e.Parts {
		s += p.Raw
	}
	return s
}

// Lexeme is a single token kept verbatim for command arguments.
type Lexeme struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Parse implements participle.Parseable; argument lists stop at newline, braces and ';'.
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	tok := lex.Peek()
	if tok.EOF() || isType(tok, "Newline", "LBrace", "RBrace") || (isType(tok, "Symbol") && tok.Value == ";") {
		return participle.NextMatch
	}
	lexeme, err := next(lex)
	if err != nil {
		return err
	}
	*l = *lexeme
	return nil
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("字符串字面量缺少内容")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a scene from r; name is used in error positions.
func Parse(name string, r io.Reader) (*Document, error) {
	return sceneParser.Parse(name, r)
}

// ParseString parses a scene held in memory.
func ParseString(input string) (*Document, error) {
	return sceneParser.ParseString("", input)
}

func next(lex *lexer.PeekingLexer) (*Lexeme, error) {
	tok := lex.Next()
	if tok.EOF() {
		return nil, participle.NextMatch
	}
	val := tok.Value
	if isType(tok, "String") {
		unq, err := strconv.Unquote(tok.Value)
		if err != nil {
			return nil, err
		}
		val = unq
	}
	name, ok := tokenNames[tok.Type]
	if !ok {
		name = fmt.Sprintf("#%d", tok.Type)
	}
	return &Lexeme{Type: name, Value: val, Raw: tok.Value, Pos: tok.Pos}, nil
}

func endOfExpression(tok *lexer.Token, depth int) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	if depth > 0 {
		return false
	}
	if isType(tok, "Newline", "LBrace", "RBrace") {
		return true
	}
	if isType(tok, "Symbol") {
		switch tok.Value {
		case ";", ",", "]", ")":
			return true
		}
	}
	return false
}

func isType(tok *lexer.Token, names ...string) bool {
	for _, n := range names {
		if tok.Type == symbols[n] {
			return true
		}
	}
	return false
}

func invert(m map[string]lexer.TokenType) map[lexer.TokenType]string {
	out := make(map[lexer.TokenType]string, len(m))
	for name, tt := range m {
		out[tt] = name
	}
	return out
}
