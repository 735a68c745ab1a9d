package csharp

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// File is a parsed C# compilation unit. Source holds the preprocessed text
// the tree positions refer to.
type File struct {
	Source []byte
	Tree   *sitter.Tree
}

func (f *File) Root() *sitter.Node {
	return f.Tree.RootNode()
}

// Parse runs the tree-sitter C# grammar over already-preprocessed source.
func Parse(ctx context.Context, source []byte) (*File, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(csharp.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, err
	}
	return &File{Source: source, Tree: tree}, nil
}

// Walk visits every node of the tree in document order. The visitor returns
// false to prune the subtree.
func (f *File) Walk(visit func(n *sitter.Node) bool) {
	walkNode(f.Root(), visit)
}

func walkNode(n *sitter.Node, visit func(n *sitter.Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walkNode(n.Child(i), visit)
	}
}

// Text returns the source text of a node.
func (f *File) Text(n *sitter.Node) string {
	return n.Content(f.Source)
}

// Position converts a node's start point to 1-based line/column.
func Position(n *sitter.Node) (line, column int) {
	p := n.StartPoint()
	return int(p.Row) + 1, int(p.Column) + 1
}
