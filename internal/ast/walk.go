package ast

// Inspect traverses the AST rooted at node in depth-first order. For each
// node it calls f; if f returns false the node's children are skipped.
// A nil node is a no-op, so callers can pass optional children directly.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	for _, child := range children(node) {
		Inspect(child, f)
	}
}

// Count returns the number of nodes for which pred is true.
func Count(node Node, pred func(Node) bool) int {
	n := 0
	Inspect(node, func(nd Node) bool {
		if pred(nd) {
			n++
		}
		return true
	})
	return n
}

// Find returns the first node (in traversal order) for which pred is true,
// or nil.
func Find(node Node, pred func(Node) bool) Node {
	var found Node
	Inspect(node, func(nd Node) bool {
		if found != nil {
			return false
		}
		if pred(nd) {
			found = nd
			return false
		}
		return true
	})
	return found
}

// Collect returns every node for which pred is true, in traversal order.
func Collect(node Node, pred func(Node) bool) []Node {
	var out []Node
	Inspect(node, func(nd Node) bool {
		if pred(nd) {
			out = append(out, nd)
		}
		return true
	})
	return out
}

// children returns the direct child nodes of n. Nil children are filtered
// by Inspect.
func children(n Node) []Node {
	switch node := n.(type) {
	case *Program:
		out := make([]Node, 0, len(node.Imports)+len(node.Declarations))
		for _, imp := range node.Imports {
			out = append(out, imp)
		}
		for _, d := range node.Declarations {
			out = append(out, d)
		}
		return out

	case *Block:
		out := make([]Node, len(node.Statements))
		for i, s := range node.Statements {
			out[i] = s
		}
		return out

	case *InterpolatedString:
		var out []Node
		for _, part := range node.Parts {
			if part.Expr != nil {
				out = append(out, part.Expr)
			}
		}
		return out

	case *PrefixExpression:
		return []Node{node.Right}
	case *InfixExpression:
		return []Node{node.Left, node.Right}
	case *CallExpression:
		out := []Node{node.Function}
		for _, a := range node.Args {
			out = append(out, a)
		}
		return out
	case *MemberExpression:
		return []Node{node.Object, node.Property}
	case *IndexExpression:
		return []Node{node.Left, node.Index}
	case *ArrayLiteral:
		out := make([]Node, len(node.Elements))
		for i, e := range node.Elements {
			out[i] = e
		}
		return out
	case *StructLiteral:
		out := make([]Node, len(node.Fields))
		for i, f := range node.Fields {
			out[i] = f.Value
		}
		return out
	case *ClosureLiteral:
		if node.Body != nil {
			return []Node{node.Body}
		}
		return []Node{node.Expr}
	case *IfExpression:
		return []Node{node.Cond, node.Then, node.Else}
	case *MatchExpression:
		out := []Node{node.Scrutinee}
		for _, arm := range node.Arms {
			out = append(out, arm.Pattern, arm.Body)
		}
		return out
	case *PropagateExpression:
		return []Node{node.Expr}
	case *CatchExpression:
		return []Node{node.Expr, node.Handler}
	case *BlockExpression:
		return []Node{node.Block}

	case *LetStatement:
		return []Node{node.Value}
	case *AssignStatement:
		return []Node{node.Target, node.Value}
	case *ReturnStatement:
		return []Node{node.Value}
	case *RaiseStatement:
		return []Node{node.Value}
	case *ExpressionStatement:
		return []Node{node.Expression}
	case *ForStatement:
		return []Node{node.Iterable, node.Body}
	case *WhileStatement:
		return []Node{node.Cond, node.Body}
	case *LoopStatement:
		return []Node{node.Body}

	case *FunctionDecl:
		if node.Body != nil {
			return []Node{node.Body}
		}
		return nil
	case *ClassDecl:
		out := make([]Node, len(node.Methods))
		for i, m := range node.Methods {
			out[i] = m
		}
		return out
	case *TraitDecl:
		out := make([]Node, len(node.Methods))
		for i, m := range node.Methods {
			out[i] = m
		}
		return out
	case *AppDecl:
		out := make([]Node, len(node.Methods))
		for i, m := range node.Methods {
			out[i] = m
		}
		return out
	case *ConstDecl:
		return []Node{node.Value}

	default:
		// Leaves: literals, identifiers, patterns, imports, enums, errors.
		return nil
	}
}
