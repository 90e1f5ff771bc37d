package testparser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// riskyTestErrors are the error types PHPUnit uses for risky tests. A risky
// test is reported as an error element but counts as passed.
var riskyTestErrors = map[string]bool{
	`PHPUnit\Framework\RiskyTestError`: true,
	`PHPUnit_Framework_RiskyTestError`: true,
}

// unknownResultPrefix labels verdict elements the parser does not know.
const unknownResultPrefix = "UNKNOWN RESULT TYPE: "

// JUnitParser parses PHPUnit --log-junit reports.
type JUnitParser struct {
	root rootStripper
}

// NewJUnitParser creates a JUnit report parser for a build rooted at buildRoot.
func NewJUnitParser(buildRoot string) *JUnitParser {
	return &JUnitParser{root: newRootStripper(buildRoot)}
}

// Format returns FormatJUnit.
func (p *JUnitParser) Format() Format {
	return FormatJUnit
}

// Parse reads the JUnit document at path.
//
// A missing or empty file yields an empty result set. Documents with
// invalid UTF-8, characters illegal in XML, or broken markup are recovered
// as far as possible; what was dropped is listed in the diagnostics.
func (p *JUnitParser) Parse(path string) (*ResultSet, error) {
	c := newCollector()

	doc, err := loadReport(path, c)
	if err != nil {
		return nil, err
	}

	for _, tc := range doc.findAll("testcase") {
		p.parseTestcase(c, tc)
	}
	return c.set, nil
}

func (p *JUnitParser) parseTestcase(c *collector, tc *xmlNode) {
	name := caseName(tc)
	blob := messageTrace(tc)
	c.add(name, junitSeverity(tc), junitMessage(blob, name), tc.childText("system-out"),
		func() []string { return p.trace(blob) },
		func() (string, string) { return p.root.strip(tc.attr("file")), tc.attr("line") },
	)
}

// caseName returns "<class>::<name>" for a testcase element. PHPUnit 10+
// only writes the classname attribute.
func caseName(tc *xmlNode) string {
	class := tc.attr("class")
	if class == "" {
		class = tc.attr("classname")
	}
	return class + "::" + tc.attr("name")
}

// junitSeverity classifies a testcase element by its first verdict child.
func junitSeverity(tc *xmlNode) Severity {
	for _, child := range tc.children {
		switch child.name {
		case "failure":
			return SeverityFail
		case "error":
			if riskyTestErrors[child.attr("type")] {
				return SeverityPass
			}
			return SeverityError
		case "skipped":
			return SeveritySkipped
		case "warning":
			return SeverityPass
		case "system-out", "system-err":
			continue
		default:
			return Severity(unknownResultPrefix + child.name)
		}
	}
	return SeverityPass
}

// messageTrace joins the message of every verdict child. A child's message
// attribute wins over its text content.
func messageTrace(tc *xmlNode) string {
	var sb strings.Builder
	for _, child := range tc.children {
		if child.name == "system-out" || child.name == "system-err" {
			continue
		}
		if msg, ok := child.lookupAttr("message"); ok {
			sb.WriteString(msg)
		} else {
			sb.WriteString(child.text.String())
		}
	}
	return sb.String()
}

// junitMessage returns the part of blob before the first blank line.
func junitMessage(blob, name string) string {
	msg := blob
	if i := strings.Index(msg, "\n\n"); i >= 0 {
		msg = msg[:i]
	}
	if msg == "" {
		return name
	}
	return msg
}

// trace returns the lines after the last blank line of blob.
func (p *JUnitParser) trace(blob string) []string {
	i := strings.LastIndex(blob, "\n\n")
	if i < 0 {
		return []string{}
	}
	tail := strings.TrimSuffix(blob[i+2:], "\n")
	lines := []string{}
	for _, line := range strings.Split(p.root.strip(tail), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// loadReport reads path into an element tree.
//
// Loading degrades in stages: a missing or empty file is an empty document;
// otherwise a strict parse of the UTF-8 scrubbed bytes is attempted, and if
// that fails or yields nothing, a permissive parse of the raw bytes with
// &quot; replaced by a single quote recovers what it can. A document that
// still has no elements is treated as empty.
func loadReport(path string, c *collector) (*xmlNode, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		c.diagnostic("report %s does not exist", path)
		return &xmlNode{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ErrInvalidFormat, path, err)
	}
	if info.Size() == 0 {
		c.diagnostic("report %s is empty", path)
		return &xmlNode{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidFormat, path, err)
	}

	doc, err := decodeTree(newStrictDecoder(bytes.NewReader(data)))
	if err == nil && doc.hasChildren() {
		return doc, nil
	}
	if err != nil {
		c.diagnostic("strict XML parse failed, recovering: %v", err)
	}

	fixed := bytes.ReplaceAll(data, []byte("&quot;"), []byte("'"))
	doc, err = decodeTree(newPermissiveDecoder(bytes.NewReader(fixed)))
	if err != nil {
		c.diagnostic("suppressed XML error: %v", err)
	}
	if !doc.hasChildren() {
		c.diagnostic("report %s has no XML content", path)
		return &xmlNode{}, nil
	}
	return doc, nil
}

func newStrictDecoder(r io.Reader) *xml.Decoder {
	d := xml.NewDecoder(scrubbedReader(r))
	d.CharsetReader = passthroughCharset
	return d
}

func newPermissiveDecoder(r io.Reader) *xml.Decoder {
	d := xml.NewDecoder(permissiveReader(r))
	d.CharsetReader = passthroughCharset
	d.Strict = false
	d.AutoClose = xml.HTMLAutoClose
	d.Entity = xml.HTMLEntity
	return d
}

// xmlNode is a minimal element tree that keeps children in document order.
type xmlNode struct {
	name     string
	attrs    []xml.Attr
	children []*xmlNode
	text     strings.Builder
}

func (n *xmlNode) hasChildren() bool {
	return len(n.children) > 0
}

func (n *xmlNode) lookupAttr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *xmlNode) attr(name string) string {
	v, _ := n.lookupAttr(name)
	return v
}

// childText returns the text of the first direct child called name.
func (n *xmlNode) childText(name string) string {
	for _, child := range n.children {
		if child.name == name {
			return child.text.String()
		}
	}
	return ""
}

// findAll returns every descendant called name in document order.
func (n *xmlNode) findAll(name string) []*xmlNode {
	var found []*xmlNode
	var walk func(*xmlNode)
	walk = func(node *xmlNode) {
		for _, child := range node.children {
			if child.name == name {
				found = append(found, child)
			}
			walk(child)
		}
	}
	walk(n)
	return found
}

// decodeTree reads tokens into a tree rooted at a synthetic document node.
// On a decode error the partial tree built so far is returned with the
// error, so callers can keep whatever was recovered.
func decodeTree(d *xml.Decoder) (*xmlNode, error) {
	doc := &xmlNode{}
	stack := []*xmlNode{doc}
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			if len(stack) > 1 {
				return doc, fmt.Errorf("unexpected EOF inside <%s>", stack[len(stack)-1].name)
			}
			return doc, nil
		}
		if err != nil {
			return doc, err
		}

		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			node := &xmlNode{name: t.Name.Local, attrs: t.Attr}
			top.children = append(top.children, node)
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			top.text.Write(t)
		}
	}
}
