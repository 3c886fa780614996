package errutil

import (
	"fmt"

	"github.com/xeptore/flaw/v8"
)

// Node is one error in an unwrap tree. Children follow the Unwrap edges,
// single or joined.
type Node struct {
	Message    string
	TypeName   string
	SyntaxRepr string
	Children   []Node
}

func (n Node) FlawP() flaw.P {
	var children []flaw.P
	if len(n.Children) > 0 {
		children = make([]flaw.P, len(n.Children))
		for i, c := range n.Children {
			children[i] = c.FlawP()
		}
	}

	return flaw.P{
		"message":     n.Message,
		"type_name":   n.TypeName,
		"syntax_repr": n.SyntaxRepr,
		"children":    children,
	}
}

// Tree renders err and everything it wraps into a Node hierarchy suitable
// for flaw record payloads. It panics on a nil error.
func Tree(err error) Node {
	if err == nil {
		panic("nil error")
	}

	node := Node{
		Message:    err.Error(),
		TypeName:   fmt.Sprintf("%T", err),
		SyntaxRepr: fmt.Sprintf("%+#v", err),
		Children:   nil,
	}

	//nolint:errorlint
	switch x := err.(type) {
	case interface{ Unwrap() error }:
		if inner := x.Unwrap(); nil != inner {
			node.Children = []Node{Tree(inner)}
		}
	case interface{ Unwrap() []error }:
		inners := x.Unwrap()
		node.Children = make([]Node, 0, len(inners))
		for _, inner := range inners {
			node.Children = append(node.Children, Tree(inner))
		}
	}

	return node
}
