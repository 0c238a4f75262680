package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/markkurossi/tabulate"
	"github.com/markkurossi/text/superscript"
	"github.com/valyala/fasttemplate"

	"github.com/p7r0x7/md5trace"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Style selects the layout a Renderer produces.
type Style uint8

const (
	StyleTree Style = iota
	StyleTable
	StyleText
)

// ParseStyle maps "tree", "table" and "text" to their Style.
func ParseStyle(s string) (Style, error) {
	switch s {
	case "tree":
		return StyleTree, nil
	case "table":
		return StyleTable, nil
	case "text":
		return StyleText, nil
	}
	return 0, fmt.Errorf("render: unknown style %q", s)
}

var borders = map[string]tabulate.Style{
	"plain":   tabulate.Plain,
	"ascii":   tabulate.ASCII,
	"unicode": tabulate.Unicode,
	"light":   tabulate.UnicodeLight,
}

/* Placeholders understood by step and block templates. */
var (
	stepTags  = []string{"round", "index", "t", "func", "k", "m", "const", "shift", "before", "after"}
	blockTags = []string{"block", "bytes", "words", "initial", "final"}
)

// IsTag reports whether name may appear as {{name}} in a template.
func IsTag(name string) bool {
	for _, tags := range [2][]string{stepTags, blockTags} {
		for _, t := range tags {
			if t == name {
				return true
			}
		}
	}
	return false
}

// Templates used by the text style until SetTemplates replaces them.
const (
	DefaultStepTemplate = "Step {{index}}: {{func}}  M[{{k}}] = {{m}}, T[{{t}}] = {{const}}, S = {{shift}}\n" +
		"  before: {{before}}\n" +
		"  after:  {{after}}\n"
	DefaultBlockTemplate = "=== Block {{block}} ===\n{{bytes}}\ninitial: {{initial}}\n"
)

// Renderer prints trace nodes in one style.
type Renderer struct {
	style  Style
	border tabulate.Style
	step   *fasttemplate.Template
	block  *fasttemplate.Template
}

// New returns a Renderer using the built-in templates and light box-drawing borders.
func New(style Style) *Renderer {
	return &Renderer{
		style:  style,
		border: tabulate.UnicodeLight,
		step:   fasttemplate.New(DefaultStepTemplate, "{{", "}}"),
		block:  fasttemplate.New(DefaultBlockTemplate, "{{", "}}"),
	}
}

// SetTemplates replaces the step and block templates of the text style.
func (r *Renderer) SetTemplates(step, block string) error {
	st, err := fasttemplate.NewTemplate(step, "{{", "}}")
	if err != nil {
		return fmt.Errorf("render: step template: %w", err)
	}
	bt, err := fasttemplate.NewTemplate(block, "{{", "}}")
	if err != nil {
		return fmt.Errorf("render: block template: %w", err)
	}
	r.step, r.block = st, bt
	return nil
}

// SetBorder selects the table border: "plain", "ascii", "unicode" or "light".
func (r *Renderer) SetBorder(name string) error {
	b, ok := borders[name]
	if !ok {
		return fmt.Errorf("render: unknown border %q", name)
	}
	r.border = b
	return nil
}

/* printer remembers the first write error so the render functions need not. */
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s+"\n")
	}
}

func (p *printer) text(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

// Render prints n and everything beneath it.
func (r *Renderer) Render(w io.Writer, n *Node) error {
	p := &printer{w: w}
	r.node(p, n, "", "")
	return p.err
}

// String renders n into a string.
func (r *Renderer) String(n *Node) string {
	var sb strings.Builder
	_ = r.Render(&sb, n)
	return sb.String()
}

/* node dispatches on the tag. lead prefixes the node's own line in the tree style and indent
prefixes everything after it. */
func (r *Renderer) node(p *printer, n *Node, lead, indent string) {
	switch n.Kind {
	case KindTrace:
		r.trace(p, n, lead, indent)
	case KindBlock:
		r.blockNode(p, n, lead, indent)
	case KindRound:
		r.round(p, n, lead, indent)
	case KindStep:
		r.stepNode(p, n, lead)
	}
}

func (r *Renderer) children(p *printer, n *Node, indent string) {
	for i, c := range n.Children {
		if r.style != StyleTree {
			r.node(p, c, "", "")
		} else if i == len(n.Children)-1 {
			r.node(p, c, indent+"╰╴", indent+"  ")
		} else {
			r.node(p, c, indent+"├╴", indent+"│ ")
		}
	}
}

func (r *Renderer) trace(p *printer, n *Node, lead, indent string) {
	tr := n.Trace
	if r.style == StyleTree {
		p.line(lead + n.Label)
		r.children(p, n, indent)
		return
	}
	p.text(Message(tr.Message))
	p.line("")
	p.text(Padding(tr))
	p.line("")
	r.children(p, n, indent)
	p.line("MD5: " + tr.Digest.String())
}

func (r *Renderer) blockNode(p *printer, n *Node, lead, indent string) {
	b := n.Block
	switch r.style {
	case StyleTree:
		p.line(lead + n.Label + "  " + b.Initial.String())
		r.children(p, n, indent)
		p.line(indent + "= " + b.Final.String())
	default:
		p.text(r.block.ExecuteString(blockValues(b)))
		r.children(p, n, indent)
		p.line("final:   " + b.Final.String())
		final := b.Final.Bytes()
		p.line("hash order: " + Dashed(final[:]))
		p.line("")
	}
}

func (r *Renderer) round(p *printer, n *Node, lead, indent string) {
	switch r.style {
	case StyleTree:
		p.line(lead + n.Label)
		r.children(p, n, indent)
	case StyleText:
		p.line("--- " + n.Label + " ---")
		r.children(p, n, indent)
	case StyleTable:
		p.line(n.Label)
		tab := tabulate.New(r.border)
		tab.Header("Step").SetAlign(tabulate.MR)
		tab.Header("k").SetAlign(tabulate.MR)
		tab.Header("M[k]").SetAlign(tabulate.MR)
		tab.Header("T").SetAlign(tabulate.MR)
		tab.Header("S").SetAlign(tabulate.MR)
		tab.Header("A").SetAlign(tabulate.MR)
		tab.Header("B").SetAlign(tabulate.MR)
		tab.Header("C").SetAlign(tabulate.MR)
		tab.Header("D").SetAlign(tabulate.MR)
		for _, c := range n.Children {
			s := c.Step
			row := tab.Row()
			row.Column(strconv.Itoa(s.T + 1))
			row.Column(strconv.Itoa(s.K))
			row.Column(s.M.String())
			row.Column(s.Const.String())
			row.Column(strconv.Itoa(s.Shift))
			row.Column(md5trace.Word(s.After.A).String())
			row.Column(md5trace.Word(s.After.B).String()).SetFormat(tabulate.FmtBold)
			row.Column(md5trace.Word(s.After.C).String())
			row.Column(md5trace.Word(s.After.D).String())
		}
		if p.err == nil {
			tab.Print(p.w)
		}
	}
}

func (r *Renderer) stepNode(p *printer, n *Node, lead string) {
	s := n.Step
	if r.style == StyleTree {
		p.line(fmt.Sprintf("%s%-7s %s  M[%d] = %s  T[%d] = %s  ⋘%s  B ← %s",
			lead, n.Label, s.Func, s.K, s.M, s.T, s.Const, superscript.Itoa(s.Shift),
			md5trace.Word(s.After.B)))
		return
	}
	p.text(r.step.ExecuteString(stepValues(s)))
}

func stepValues(s *md5trace.Step) map[string]interface{} {
	return map[string]interface{}{
		"round":  strconv.Itoa(s.Round + 1),
		"index":  strconv.Itoa(s.Index + 1),
		"t":      strconv.Itoa(s.T),
		"func":   s.Func.String(),
		"k":      strconv.Itoa(s.K),
		"m":      s.M.String(),
		"const":  s.Const.String(),
		"shift":  strconv.Itoa(s.Shift),
		"before": s.Before.String(),
		"after":  s.After.String(),
	}
}

func blockValues(b *md5trace.BlockTrace) map[string]interface{} {
	words := make([]string, len(b.Words))
	for i, w := range b.Words {
		words[i] = w.String()
	}
	return map[string]interface{}{
		"block":   strconv.Itoa(b.Index + 1),
		"bytes":   Dashed(b.Bytes),
		"words":   strings.Join(words, " "),
		"initial": b.Initial.String(),
		"final":   b.Final.String(),
	}
}
