// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package treeprinter renders trees of text nodes with box-drawing edges.
//
// Example:
//
//	tp := treeprinter.New()
//	root := tp.Child("root")
//	root.Child("child-1")
//	root.Child("child-2").Child("grandchild")
//	fmt.Print(tp.String())
//
// Output:
//
//	root
//	 ├── child-1
//	 └── child-2
//	      └── grandchild
package treeprinter

import (
	"fmt"
	"strings"
)

const (
	edgeMid  = " ├── "
	edgeLast = " └── "
	bar      = " │   "
	space    = "     "
)

// Node is a handle associated with a specific depth in a tree.
type Node struct {
	n *node
}

type node struct {
	text     string
	children []*node
}

// New creates a tree printer and returns a sentinel node reference which
// should be used to add the root. Multiple roots are printed one after the
// other.
func New() Node {
	return Node{n: &node{}}
}

// Child adds a node as a child of the given node. Multi-line text is
// indented under the node's edge.
func (n Node) Child(text string) Node {
	c := &node{text: text}
	n.n.children = append(n.n.children, c)
	return Node{n: c}
}

// Childf adds a node as a child of the given node.
func (n Node) Childf(format string, args ...interface{}) Node {
	return n.Child(fmt.Sprintf(format, args...))
}

// AddLine appends a line to the text of the node.
func (n Node) AddLine(text string) {
	if n.n.text == "" {
		n.n.text = text
		return
	}
	n.n.text += "\n" + text
}

// FormattedRows returns the rendered lines of the tree, without trailing
// newlines.
func (n Node) FormattedRows() []string {
	var rows []string
	for _, c := range n.n.children {
		rows = c.format(rows, "", "")
	}
	return rows
}

// String returns the rendered tree.
func (n Node) String() string {
	var buf strings.Builder
	for _, row := range n.FormattedRows() {
		buf.WriteString(row)
		buf.WriteByte('\n')
	}
	return buf.String()
}

func (n *node) format(rows []string, first, rest string) []string {
	lines := strings.Split(n.text, "\n")
	rows = append(rows, first+lines[0])
	cont := rest + space
	if len(n.children) > 0 {
		cont = rest + bar
	}
	for _, l := range lines[1:] {
		rows = append(rows, strings.TrimRight(cont+l, " "))
	}
	for i, c := range n.children {
		if i == len(n.children)-1 {
			rows = c.format(rows, rest+edgeLast, rest+space)
		} else {
			rows = c.format(rows, rest+edgeMid, rest+bar)
		}
	}
	return rows
}
