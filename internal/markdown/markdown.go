// Package markdown exports documents as CommonMark and renders markdown
// for terminal previews.
package markdown

import (
	"strconv"
	"strings"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/plugins/attachments"
	"github.com/usekona/kona/internal/plugins/codeblock"
	"github.com/usekona/kona/internal/plugins/formatting"
	"github.com/usekona/kona/internal/plugins/headings"
	"github.com/usekona/kona/internal/plugins/links"
	"github.com/usekona/kona/internal/plugins/lists"
)

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"~", `\~`,
)

// FromNodes converts top-level blocks to markdown. Empty paragraphs are
// dropped; element types without a markdown form keep their text as a
// paragraph.
func FromNodes(nodes []document.Node) string {
	var blocks []string
	for _, n := range nodes {
		if b := block(n); b != "" {
			blocks = append(blocks, b)
		}
	}
	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func block(n document.Node) string {
	el := document.AsElement(n)
	if el == nil {
		return inline(n)
	}
	switch el.Type {
	case headings.Heading1:
		return "# " + inlines(el.Children)
	case headings.Heading2:
		return "## " + inlines(el.Children)
	case headings.Heading3:
		return "### " + inlines(el.Children)
	case lists.BulletedList, lists.NumberedList:
		var lines []string
		list(el, "", &lines)
		return strings.Join(lines, "\n")
	case attachments.Attachment:
		name := el.StringProp(attachments.PropName)
		if name == "" {
			name = el.StringProp(attachments.PropFile)
		}
		return "[" + escaper.Replace(name) + "](" + destination(el.StringProp(attachments.PropFile)) + ")"
	case codeblock.Code:
		return fenced(el)
	}
	return inlines(el.Children)
}

// fenced writes a code block verbatim inside a fence longer than any
// backtick run in it.
func fenced(el *document.Element) string {
	lines := make([]string, 0, len(el.Children))
	for _, ch := range el.Children {
		lines = append(lines, document.TextContent(ch))
	}
	body := strings.Join(lines, "\n")
	fence := "```"
	for strings.Contains(body, fence) {
		fence += "`"
	}
	return fence + el.StringProp(codeblock.PropLanguage) + "\n" + body + "\n" + fence
}

// list appends one line per item. Nested lists are indented under the
// item marker width so they attach to the item above.
func list(el *document.Element, indent string, lines *[]string) {
	n := 0
	for _, c := range el.Children {
		child := document.AsElement(c)
		if child == nil {
			continue
		}
		if document.IsType(child, lists.BulletedList, lists.NumberedList) {
			list(child, indent+"   ", lines)
			continue
		}
		n++
		marker := "- "
		if el.Type == lists.NumberedList {
			marker = strconv.Itoa(n) + ". "
		}
		var text []document.Node
		var nested []*document.Element
		for _, gc := range child.Children {
			if document.IsType(gc, lists.BulletedList, lists.NumberedList) {
				nested = append(nested, document.AsElement(gc))
				continue
			}
			text = append(text, gc)
		}
		*lines = append(*lines, indent+marker+inlines(text))
		for _, sub := range nested {
			list(sub, indent+"   ", lines)
		}
	}
}

func inlines(nodes []document.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(inline(n))
	}
	return b.String()
}

func inline(n document.Node) string {
	switch n := n.(type) {
	case *document.Text:
		return text(n)
	case *document.Element:
		if n.Type == links.Link {
			return "[" + inlines(n.Children) + "](" + destination(n.StringProp(links.PropURL)) + ")"
		}
		return inlines(n.Children)
	}
	return ""
}

func text(t *document.Text) string {
	if t.Text == "" {
		return ""
	}
	if t.HasMark(formatting.Code) {
		return "`" + strings.ReplaceAll(t.Text, "`", "'") + "`"
	}
	s := strings.ReplaceAll(escaper.Replace(t.Text), "\n", "\\\n")
	// Emphasis markers must hug the text, so surrounding spaces stay outside.
	lead := s[:len(s)-len(strings.TrimLeft(s, " "))]
	s = strings.TrimLeft(s, " ")
	trail := s[len(strings.TrimRight(s, " ")):]
	s = strings.TrimRight(s, " ")
	if s == "" {
		return lead + trail
	}
	if t.HasMark(formatting.Strikethrough) {
		s = "~~" + s + "~~"
	}
	if t.HasMark(formatting.Italic) {
		s = "_" + s + "_"
	}
	if t.HasMark(formatting.Bold) {
		s = "**" + s + "**"
	}
	return lead + s + trail
}

func destination(url string) string {
	if strings.ContainsAny(url, " ()<>") {
		return "<" + strings.NewReplacer("<", "%3C", ">", "%3E").Replace(url) + ">"
	}
	return url
}
