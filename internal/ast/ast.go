package ast

import (
	"bytes"
	"strings"

	"ripple/internal/token"
)

type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Program is one parsed source file.
type Program struct {
	File       string
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// Imports returns the import statements of the file in source order.
func (p *Program) Imports() []*ImportStatement {
	var out []*ImportStatement
	for _, s := range p.Statements {
		if is, ok := s.(*ImportStatement); ok {
			out = append(out, is)
		}
	}
	return out
}

/* -------------------- Statements -------------------- */

type ExpressionStatement struct {
	Token      token.Token // first token of expression
	Expression Expression
}

func (*ExpressionStatement) statementNode()          {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression == nil {
		return ""
	}
	return es.Expression.String()
}

type AssignStatement struct {
	Token token.Token // identifier token
	Name  *Identifier
	Value Expression
}

func (*AssignStatement) statementNode()          {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) String() string {
	var out bytes.Buffer
	out.WriteString(as.Name.String())
	out.WriteString(" = ")
	if as.Value != nil {
		out.WriteString(as.Value.String())
	}
	return out.String()
}

type IndexAssignStatement struct {
	Token token.Token // '='
	Left  *IndexExpression
	Value Expression
}

func (*IndexAssignStatement) statementNode()         {}
func (s *IndexAssignStatement) TokenLiteral() string { return s.Token.Literal }
func (s *IndexAssignStatement) String() string {
	return s.Left.String() + " = " + s.Value.String()
}

type ReturnStatement struct {
	Token       token.Token // 'return'
	ReturnValue Expression  // may be nil
}

func (*ReturnStatement) statementNode()          {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue == nil {
		return "return"
	}
	return "return " + rs.ReturnValue.String()
}

type ThrowStatement struct {
	Token token.Token // 'throw'
	Value Expression
}

func (*ThrowStatement) statementNode()          {}
func (ts *ThrowStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *ThrowStatement) String() string {
	if ts.Value == nil {
		return "throw"
	}
	return "throw " + ts.Value.String()
}

type BreakStatement struct {
	Token token.Token
}

func (*BreakStatement) statementNode()          {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) String() string       { return "break" }

type ContinueStatement struct {
	Token token.Token
}

func (*ContinueStatement) statementNode()          {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) String() string       { return "continue" }

// ImportStatement is `import a.b [as c]`. Alias is nil when omitted.
type ImportStatement struct {
	Token token.Token // 'import'
	Path  []string
	Alias *Identifier
}

func (*ImportStatement) statementNode()          {}
func (is *ImportStatement) TokenLiteral() string { return is.Token.Literal }
func (is *ImportStatement) String() string {
	s := "import " + is.Module()
	if is.Alias != nil {
		s += " as " + is.Alias.String()
	}
	return s
}

// Module returns the dotted module name.
func (is *ImportStatement) Module() string { return strings.Join(is.Path, ".") }

// Name returns the identifier the import binds in the importing file.
func (is *ImportStatement) Name() string {
	if is.Alias != nil {
		return is.Alias.Value
	}
	return is.Path[len(is.Path)-1]
}

type BlockStatement struct {
	Token      token.Token // '{'
	Statements []Statement
}

func (*BlockStatement) statementNode()          {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{\n")
	for _, s := range bs.Statements {
		out.WriteString("  ")
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	out.WriteString("}")
	return out.String()
}

type TryStatement struct {
	Token      token.Token // 'try'
	TryBlock   *BlockStatement
	CatchName  *Identifier
	CatchBlock *BlockStatement
}

func (*TryStatement) statementNode()          {}
func (ts *TryStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *TryStatement) String() string {
	var out bytes.Buffer
	out.WriteString("try ")
	out.WriteString(ts.TryBlock.String())
	out.WriteString(" catch (")
	out.WriteString(ts.CatchName.String())
	out.WriteString(") ")
	out.WriteString(ts.CatchBlock.String())
	return out.String()
}

type IfStatement struct {
	Token       token.Token // 'if'
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement // *BlockStatement or *IfStatement, may be nil
}

func (*IfStatement) statementNode()          {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if (")
	out.WriteString(is.Condition.String())
	out.WriteString(") ")
	out.WriteString(is.Consequence.String())
	if is.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(is.Alternative.String())
	}
	return out.String()
}

type WhileStatement struct {
	Token     token.Token // 'while'
	Condition Expression
	Body      *BlockStatement
}

func (*WhileStatement) statementNode()          {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) String() string {
	return "while (" + ws.Condition.String() + ") " + ws.Body.String()
}

type FuncStatement struct {
	Token      token.Token // 'func'
	Name       *Identifier
	Parameters []*Identifier
	Body       *BlockStatement
}

func (*FuncStatement) statementNode()          {}
func (fs *FuncStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *FuncStatement) String() string {
	return "func " + fs.Name.String() + "(" + joinIdents(fs.Parameters) + ") " + fs.Body.String()
}

/* -------------------- Expressions -------------------- */

type FunctionLiteral struct {
	Token      token.Token // 'func'
	Parameters []*Identifier
	Body       *BlockStatement
}

func (*FunctionLiteral) expressionNode()         {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) String() string {
	return "func(" + joinIdents(fl.Parameters) + ") " + fl.Body.String()
}

type Identifier struct {
	Token token.Token // IDENT
	Value string
}

func (*Identifier) expressionNode()        {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

type IntegerLiteral struct {
	Token token.Token // INT
	Value int64
}

func (*IntegerLiteral) expressionNode()         {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }

type FloatLiteral struct {
	Token token.Token // FLOAT
	Value float64
}

func (*FloatLiteral) expressionNode()         {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }

type StringLiteral struct {
	Token token.Token // STRING
	Value string
}

func (*StringLiteral) expressionNode()         {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return "\"" + sl.Value + "\"" }

type BooleanLiteral struct {
	Token token.Token // TRUE or FALSE
	Value bool
}

func (*BooleanLiteral) expressionNode()         {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }

type NilLiteral struct {
	Token token.Token // NIL
}

func (*NilLiteral) expressionNode()         {}
func (nl *NilLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NilLiteral) String() string       { return "nil" }

type PrefixExpression struct {
	Token    token.Token // '-' or 'not'
	Operator string
	Right    Expression
}

func (*PrefixExpression) expressionNode()         {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	if pe.Operator == "not" {
		return "(not " + pe.Right.String() + ")"
	}
	return "(" + pe.Operator + pe.Right.String() + ")"
}

type InfixExpression struct {
	Token    token.Token // operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (*InfixExpression) expressionNode()         {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// MemberExpression is `x.name`. The compiler only accepts it when x names an
// import alias or the caught error value.
type MemberExpression struct {
	Token    token.Token // '.'
	Object   Expression
	Property *Identifier
}

func (*MemberExpression) expressionNode()         {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MemberExpression) String() string {
	return me.Object.String() + "." + me.Property.String()
}

type CallExpression struct {
	Token     token.Token // '('
	Function  Expression
	Arguments []Expression
}

func (*CallExpression) expressionNode()         {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	args := make([]string, 0, len(ce.Arguments))
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}
	return ce.Function.String() + "(" + strings.Join(args, ", ") + ")"
}

type ListLiteral struct {
	Token    token.Token // '['
	Elements []Expression
}

func (*ListLiteral) expressionNode()         {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *ListLiteral) String() string {
	els := make([]string, 0, len(ll.Elements))
	for _, e := range ll.Elements {
		els = append(els, e.String())
	}
	return "[" + strings.Join(els, ", ") + "]"
}

type IndexExpression struct {
	Token token.Token // '['
	Left  Expression
	Index Expression
}

func (*IndexExpression) expressionNode()         {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) String() string {
	return "(" + ie.Left.String() + "[" + ie.Index.String() + "])"
}

func joinIdents(ids []*Identifier) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ", ")
}
