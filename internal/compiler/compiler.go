// Package compiler turns a loaded module.FileSet into one compiled unit.
//
// Every file's top level compiles into its own function; the returned unit
// calls them in load order. Top-level names of module M live in the program
// global table as "M#name".
package compiler

import (
	"fmt"
	"strings"

	"ripple/internal/ast"
	"ripple/internal/code"
	"ripple/internal/module"
	"ripple/internal/object"
	"ripple/internal/token"
)

const (
	maxLocals    = 255
	maxArgs      = 255
	maxOperand16 = 1<<16 - 1
)

// Options configures a compilation.
type Options struct {
	// HostOps maps host operation names to the codes passed to the VM
	// handler. A call to one of these names compiles to OpSend.
	HostOps map[string]uint32
}

type SourcePos = code.SourcePos

type compilationScope struct {
	instructions code.Instructions
	pos          []SourcePos
	loops        []loopContext
	tryDepth     int
	function     bool
}

type loopContext struct {
	continueTarget int
	tryDepth       int
	breakJumps     []int
	continueJumps  []int
}

type Compiler struct {
	program    *object.Program
	constants  []object.Object
	opts       Options
	globals    map[string]int
	symbols    *SymbolTable
	scopes     []compilationScope
	scopeIndex int

	file    string
	module  string
	imports map[string]string // alias -> module

	curLine int
	curCol  int
}

// CompileFiles compiles fs into a single zero-argument unit.
func CompileFiles(fs *module.FileSet, opts Options) (*object.CompiledFunction, error) {
	c := &Compiler{
		program:    &object.Program{Sources: map[string][]string{}},
		opts:       opts,
		globals:    map[string]int{},
		scopes:     []compilationScope{{instructions: code.Instructions{}}},
		scopeIndex: 0,
	}

	for _, f := range fs.Files {
		for _, d := range module.Definitions(f.Program) {
			c.declareGlobal(f.Module + "#" + d.Name)
		}
		c.program.Sources[f.Path] = strings.Split(f.Source, "\n")
	}
	if len(c.program.Globals) > maxOperand16 {
		return nil, &Error{Message: "too many globals"}
	}

	units := make([]int, 0, len(fs.Files))
	for _, f := range fs.Files {
		unit, err := c.compileFile(f)
		if err != nil {
			return nil, err
		}
		units = append(units, c.addConstant(unit))
	}

	c.curLine, c.curCol = 0, 0
	for _, idx := range units {
		c.emit(code.OpClosure, idx, 0)
		c.emit(code.OpCall, 0)
		c.emit(code.OpPop)
	}
	c.emit(code.OpReturn)

	c.program.Constants = c.constants
	return &object.CompiledFunction{
		Instructions: c.currentInstructions(),
		Name:         "<main>",
		Program:      c.program,
	}, nil
}

func (c *Compiler) declareGlobal(name string) int {
	if slot, ok := c.globals[name]; ok {
		return slot
	}
	slot := len(c.program.Globals)
	c.program.Globals = append(c.program.Globals, name)
	c.globals[name] = slot
	return slot
}

func (c *Compiler) compileFile(f *module.File) (*object.CompiledFunction, error) {
	c.file = f.Path
	c.module = f.Module
	c.imports = map[string]string{}
	for _, imp := range f.Program.Imports() {
		c.imports[imp.Name()] = imp.Module()
	}

	c.symbols = NewSymbolTable()
	for _, d := range module.Definitions(f.Program) {
		c.symbols.DefineGlobal(d.Name, c.globals[f.Module+"#"+d.Name])
	}

	c.scopes = append(c.scopes, compilationScope{instructions: code.Instructions{}})
	c.scopeIndex++

	for _, s := range f.Program.Statements {
		if err := c.compile(s); err != nil {
			c.scopes = c.scopes[:len(c.scopes)-1]
			c.scopeIndex--
			return nil, err
		}
	}
	c.emit(code.OpReturn)

	scope := c.scopes[c.scopeIndex]
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.scopeIndex--

	return &object.CompiledFunction{
		Instructions: scope.instructions,
		Name:         "<module " + f.Module + ">",
		File:         f.Path,
		Pos:          scope.pos,
		Program:      c.program,
	}, nil
}

func (c *Compiler) currentInstructions() code.Instructions {
	return c.scopes[c.scopeIndex].instructions
}

func (c *Compiler) emit(op code.Opcode, operands ...int) int {
	scope := &c.scopes[c.scopeIndex]
	ins := code.Make(op, operands...)
	pos := len(scope.instructions)
	scope.instructions = append(scope.instructions, ins...)
	if c.curLine != 0 {
		scope.pos = append(scope.pos, SourcePos{
			Offset: pos,
			Line:   c.curLine,
			Col:    c.curCol,
		})
	}

	return pos
}

func (c *Compiler) addConstant(obj object.Object) int {
	c.constants = append(c.constants, obj)
	return len(c.constants) - 1
}

func (c *Compiler) enterScope() {
	c.scopes = append(c.scopes, compilationScope{instructions: code.Instructions{}, function: true})
	c.scopeIndex++
	c.symbols = NewEnclosedSymbolTable(c.symbols)
}

func (c *Compiler) leaveScope() (code.Instructions, []SourcePos) {
	scope := c.scopes[c.scopeIndex]
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.scopeIndex--
	c.symbols = c.symbols.Outer
	return scope.instructions, scope.pos
}

func (c *Compiler) pushLoop(ctx loopContext) {
	scope := &c.scopes[c.scopeIndex]
	scope.loops = append(scope.loops, ctx)
}

func (c *Compiler) popLoop() loopContext {
	scope := &c.scopes[c.scopeIndex]
	ctx := scope.loops[len(scope.loops)-1]
	scope.loops = scope.loops[:len(scope.loops)-1]
	return ctx
}

func (c *Compiler) currentLoop() *loopContext {
	scope := &c.scopes[c.scopeIndex]
	if len(scope.loops) == 0 {
		return nil
	}
	return &scope.loops[len(scope.loops)-1]
}

func (c *Compiler) setPosFromToken(tok token.Token) {
	c.curLine = tok.Line
	c.curCol = tok.Col
}

func (c *Compiler) errorf(tok token.Token, format string, args ...any) error {
	return &Error{File: c.file, Line: tok.Line, Col: tok.Col, Message: fmt.Sprintf(format, args...)}
}

func (c *Compiler) compile(node ast.Node) error {
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		c.setPosFromToken(n.Token)
		if err := c.compile(n.Expression); err != nil {
			return err
		}
		c.emit(code.OpPop)

	case *ast.AssignStatement:
		c.setPosFromToken(n.Token)
		if err := c.compile(n.Value); err != nil {
			return err
		}
		return c.storeName(n.Name)

	case *ast.IndexAssignStatement:
		c.setPosFromToken(n.Token)
		if err := c.compile(n.Left.Left); err != nil {
			return err
		}
		if err := c.compile(n.Left.Index); err != nil {
			return err
		}
		if err := c.compile(n.Value); err != nil {
			return err
		}
		c.setPosFromToken(n.Token)
		c.emit(code.OpSetIndex)

	case *ast.ImportStatement:
		// resolved at compile time; imported files run before this one

	case *ast.ReturnStatement:
		c.setPosFromToken(n.Token)
		if !c.scopes[c.scopeIndex].function {
			return c.errorf(n.Token, "return outside function")
		}
		if n.ReturnValue == nil {
			c.emit(code.OpReturn)
			return nil
		}
		if err := c.compile(n.ReturnValue); err != nil {
			return err
		}
		c.emit(code.OpReturnValue)

	case *ast.ThrowStatement:
		c.setPosFromToken(n.Token)
		if err := c.compile(n.Value); err != nil {
			return err
		}
		c.setPosFromToken(n.Token)
		c.emit(code.OpThrow)

	case *ast.BreakStatement:
		c.setPosFromToken(n.Token)
		loop := c.currentLoop()
		if loop == nil {
			return c.errorf(n.Token, "break outside loop")
		}
		c.unwindTries(loop.tryDepth)
		pos := c.emit(code.OpJump, 9999)
		loop.breakJumps = append(loop.breakJumps, pos)

	case *ast.ContinueStatement:
		c.setPosFromToken(n.Token)
		loop := c.currentLoop()
		if loop == nil {
			return c.errorf(n.Token, "continue outside loop")
		}
		c.unwindTries(loop.tryDepth)
		pos := c.emit(code.OpJump, 9999)
		loop.continueJumps = append(loop.continueJumps, pos)

	case *ast.BlockStatement:
		for _, s := range n.Statements {
			if err := c.compile(s); err != nil {
				return err
			}
		}

	case *ast.IfStatement:
		c.setPosFromToken(n.Token)
		if err := c.compile(n.Condition); err != nil {
			return err
		}
		jntPos := c.emit(code.OpJumpNotTruthy, 9999)
		if err := c.compile(n.Consequence); err != nil {
			return err
		}
		if n.Alternative == nil {
			c.replaceOperand(jntPos, len(c.currentInstructions()))
			return nil
		}
		jmpPos := c.emit(code.OpJump, 9999)
		c.replaceOperand(jntPos, len(c.currentInstructions()))
		if err := c.compile(n.Alternative); err != nil {
			return err
		}
		c.replaceOperand(jmpPos, len(c.currentInstructions()))

	case *ast.WhileStatement:
		c.setPosFromToken(n.Token)
		loopStart := len(c.currentInstructions())

		if err := c.compile(n.Condition); err != nil {
			return err
		}
		jntPos := c.emit(code.OpJumpNotTruthy, 9999)

		c.pushLoop(loopContext{continueTarget: loopStart, tryDepth: c.scopes[c.scopeIndex].tryDepth})
		if err := c.compile(n.Body); err != nil {
			return err
		}
		c.emit(code.OpJump, loopStart)

		afterLoopPos := len(c.currentInstructions())
		c.replaceOperand(jntPos, afterLoopPos)

		ctx := c.popLoop()
		for _, bp := range ctx.breakJumps {
			c.replaceOperand(bp, afterLoopPos)
		}
		for _, cp := range ctx.continueJumps {
			c.replaceOperand(cp, ctx.continueTarget)
		}

	case *ast.TryStatement:
		c.setPosFromToken(n.Token)
		tryPos := c.emit(code.OpTry, 9999)

		c.scopes[c.scopeIndex].tryDepth++
		err := c.compile(n.TryBlock)
		c.scopes[c.scopeIndex].tryDepth--
		if err != nil {
			return err
		}
		c.emit(code.OpEndTry)
		jumpAfterCatch := c.emit(code.OpJump, 9999)

		c.replaceOperand(tryPos, len(c.currentInstructions()))
		c.setPosFromToken(n.CatchName.Token)
		if err := c.storeName(n.CatchName); err != nil {
			return err
		}
		if err := c.compile(n.CatchBlock); err != nil {
			return err
		}
		c.replaceOperand(jumpAfterCatch, len(c.currentInstructions()))

	case *ast.FuncStatement:
		c.setPosFromToken(n.Token)
		name, self := n.Name.Value, n.Name.Value
		if c.symbols.Outer == nil {
			name = c.module + "#" + n.Name.Value
			self = ""
		} else if _, ok := c.symbols.store[n.Name.Value]; !ok {
			c.symbols.Define(n.Name.Value)
		}
		if err := c.compileClosure(n.Token, name, self, n.Parameters, n.Body); err != nil {
			return err
		}
		return c.storeName(n.Name)

	case *ast.FunctionLiteral:
		c.setPosFromToken(n.Token)
		return c.compileClosure(n.Token, ast.AnonymousFuncName(n.Token), "", n.Parameters, n.Body)

	case *ast.IntegerLiteral:
		c.setPosFromToken(n.Token)
		c.emit(code.OpConstant, c.addConstant(&object.Integer{Value: n.Value}))

	case *ast.FloatLiteral:
		c.setPosFromToken(n.Token)
		c.emit(code.OpConstant, c.addConstant(&object.Float{Value: n.Value}))

	case *ast.StringLiteral:
		c.setPosFromToken(n.Token)
		c.emit(code.OpConstant, c.addConstant(&object.String{Value: n.Value}))

	case *ast.BooleanLiteral:
		c.setPosFromToken(n.Token)
		if n.Value {
			c.emit(code.OpTrue)
		} else {
			c.emit(code.OpFalse)
		}

	case *ast.NilLiteral:
		c.setPosFromToken(n.Token)
		c.emit(code.OpNil)

	case *ast.ListLiteral:
		c.setPosFromToken(n.Token)
		if len(n.Elements) > maxOperand16 {
			return c.errorf(n.Token, "too many elements in list literal")
		}
		for _, el := range n.Elements {
			if err := c.compile(el); err != nil {
				return err
			}
		}
		c.setPosFromToken(n.Token)
		c.emit(code.OpArray, len(n.Elements))

	case *ast.Identifier:
		c.setPosFromToken(n.Token)
		return c.loadName(n)

	case *ast.PrefixExpression:
		c.setPosFromToken(n.Token)
		if err := c.compile(n.Right); err != nil {
			return err
		}
		c.setPosFromToken(n.Token)
		switch n.Operator {
		case "-":
			c.emit(code.OpMinus)
		case "not":
			c.emit(code.OpNot)
		default:
			return c.errorf(n.Token, "unknown prefix operator: %s", n.Operator)
		}

	case *ast.InfixExpression:
		if n.Operator == "and" || n.Operator == "or" {
			return c.compileLogical(n)
		}
		if err := c.compile(n.Left); err != nil {
			return err
		}
		if err := c.compile(n.Right); err != nil {
			return err
		}
		c.setPosFromToken(n.Token)
		op, ok := infixOps[n.Operator]
		if !ok {
			return c.errorf(n.Token, "unknown infix operator: %s", n.Operator)
		}
		c.emit(op)

	case *ast.IndexExpression:
		if err := c.compile(n.Left); err != nil {
			return err
		}
		if err := c.compile(n.Index); err != nil {
			return err
		}
		c.setPosFromToken(n.Token)
		c.emit(code.OpIndex)

	case *ast.MemberExpression:
		if mod, ok := c.aliasModule(n.Object); ok {
			c.setPosFromToken(n.Property.Token)
			qualified := mod + "#" + n.Property.Value
			slot, ok := c.globals[qualified]
			if !ok {
				return c.errorf(n.Property.Token, "module %s has no global %s", mod, n.Property.Value)
			}
			c.emit(code.OpGetGlobal, slot)
			return nil
		}
		if err := c.compile(n.Object); err != nil {
			return err
		}
		c.setPosFromToken(n.Token)
		c.emit(code.OpGetMember, c.addConstant(&object.String{Value: n.Property.Value}))

	case *ast.CallExpression:
		if len(n.Arguments) > maxArgs {
			return c.errorf(n.Token, "too many arguments (%d)", len(n.Arguments))
		}
		if op, ok := c.hostOp(n.Function); ok {
			if err := c.compileArgs(n.Arguments); err != nil {
				return err
			}
			c.setPosFromToken(n.Token)
			c.emit(code.OpSend, int(op), len(n.Arguments))
			return nil
		}
		if err := c.compile(n.Function); err != nil {
			return err
		}
		if err := c.compileArgs(n.Arguments); err != nil {
			return err
		}
		c.setPosFromToken(n.Token)
		c.emit(code.OpCall, len(n.Arguments))

	default:
		return fmt.Errorf("compile not supported for node: %T", node)
	}

	return nil
}

var infixOps = map[string]code.Opcode{
	"+":  code.OpAdd,
	"-":  code.OpSub,
	"*":  code.OpMul,
	"/":  code.OpDiv,
	"%":  code.OpMod,
	"==": code.OpEqual,
	"!=": code.OpNotEqual,
	">":  code.OpGreaterThan,
	">=": code.OpGreaterEqual,
	"<":  code.OpLessThan,
	"<=": code.OpLessEqual,
}

func (c *Compiler) compileArgs(args []ast.Expression) error {
	for _, a := range args {
		if err := c.compile(a); err != nil {
			return err
		}
	}
	return nil
}

// compileLogical leaves the deciding operand on the stack.
func (c *Compiler) compileLogical(n *ast.InfixExpression) error {
	if err := c.compile(n.Left); err != nil {
		return err
	}
	c.setPosFromToken(n.Token)
	op := code.OpJumpFalseOrPop
	if n.Operator == "or" {
		op = code.OpJumpTruthyOrPop
	}
	jump := c.emit(op, 9999)
	if err := c.compile(n.Right); err != nil {
		return err
	}
	c.replaceOperand(jump, len(c.currentInstructions()))
	return nil
}

func (c *Compiler) unwindTries(depth int) {
	for i := c.scopes[c.scopeIndex].tryDepth; i > depth; i-- {
		c.emit(code.OpEndTry)
	}
}

// hostOp reports whether fn names a host operation not shadowed by a script
// binding.
func (c *Compiler) hostOp(fn ast.Expression) (uint32, bool) {
	id, ok := fn.(*ast.Identifier)
	if !ok {
		return 0, false
	}
	if _, found := c.symbols.Resolve(id.Value); found {
		return 0, false
	}
	op, ok := c.opts.HostOps[id.Value]
	return op, ok
}

// aliasModule reports whether expr is an import alias of the current file.
func (c *Compiler) aliasModule(expr ast.Expression) (string, bool) {
	id, ok := expr.(*ast.Identifier)
	if !ok {
		return "", false
	}
	if _, found := c.symbols.Resolve(id.Value); found {
		return "", false
	}
	mod, ok := c.imports[id.Value]
	return mod, ok
}

func (c *Compiler) loadName(id *ast.Identifier) error {
	if sym, ok := c.symbols.Resolve(id.Value); ok {
		c.loadSymbol(sym)
		return nil
	}
	if _, ok := c.opts.HostOps[id.Value]; ok {
		return c.errorf(id.Token, "host operation %s must be called", id.Value)
	}
	if idx, ok := object.BuiltinIndex(id.Value); ok {
		c.emit(code.OpGetBuiltin, idx)
		return nil
	}
	if mod, ok := c.imports[id.Value]; ok {
		return c.errorf(id.Token, "module %s is not a value", mod)
	}
	return c.errorf(id.Token, "unknown identifier: %s", id.Value)
}

func (c *Compiler) loadSymbol(sym Symbol) {
	switch sym.Scope {
	case GlobalScope:
		c.emit(code.OpGetGlobal, sym.Index)
	case LocalScope:
		c.emit(code.OpGetLocal, sym.Index)
	case FreeScope:
		c.emit(code.OpGetFree, sym.Index)
	case FunctionScope:
		c.emit(code.OpCurrentClosure)
	}
}

func (c *Compiler) storeName(id *ast.Identifier) error {
	sym, ok := c.symbols.Resolve(id.Value)
	if !ok {
		if c.symbols.Outer == nil {
			return c.errorf(id.Token, "undeclared global %s", id.Value)
		}
		sym = c.symbols.Define(id.Value)
	}
	switch sym.Scope {
	case GlobalScope:
		c.emit(code.OpSetGlobal, sym.Index)
	case LocalScope:
		c.emit(code.OpSetLocal, sym.Index)
	default:
		return c.errorf(id.Token, "cannot assign to captured variable %s", id.Value)
	}
	return nil
}

func (c *Compiler) replaceOperand(opPos int, operand int) {
	scope := &c.scopes[c.scopeIndex]
	op := code.Opcode(scope.instructions[opPos])
	def := code.Make(op, operand)
	for i := 0; i < len(def); i++ {
		scope.instructions[opPos+i] = def[i]
	}
}

func (c *Compiler) compileClosure(tok token.Token, name, self string, params []*ast.Identifier, body *ast.BlockStatement) error {
	fn, free, err := c.compileFunction(tok, name, self, params, body)
	if err != nil {
		return err
	}
	idx := c.addConstant(fn)
	for _, fs := range free {
		c.loadSymbol(fs)
	}
	c.setPosFromToken(tok)
	c.emit(code.OpClosure, idx, len(free))
	return nil
}

func (c *Compiler) compileFunction(tok token.Token, name, self string, params []*ast.Identifier, body *ast.BlockStatement) (*object.CompiledFunction, []Symbol, error) {
	c.enterScope()

	if self != "" {
		c.symbols.DefineFunctionName(self)
	}
	seen := map[string]bool{}
	for _, p := range params {
		if seen[p.Value] {
			c.leaveScope()
			return nil, nil, c.errorf(p.Token, "duplicate parameter %s", p.Value)
		}
		seen[p.Value] = true
		c.symbols.Define(p.Value)
	}

	if err := c.compile(body); err != nil {
		c.leaveScope()
		return nil, nil, err
	}
	// falling off the end returns nil, even after a conditional return
	c.emit(code.OpReturn)

	numLocals := c.symbols.numDefinitions
	freeSymbols := c.symbols.FreeSymbols
	instructions, pos := c.leaveScope()

	if numLocals > maxLocals {
		return nil, nil, c.errorf(tok, "too many local variables in %s", name)
	}
	if len(freeSymbols) > maxLocals {
		return nil, nil, c.errorf(tok, "too many captured variables in %s", name)
	}

	return &object.CompiledFunction{
		Instructions:  instructions,
		NumLocals:     numLocals,
		NumParameters: len(params),
		Name:          name,
		File:          c.file,
		Pos:           pos,
		Program:       c.program,
	}, freeSymbols, nil
}
