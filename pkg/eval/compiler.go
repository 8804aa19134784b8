package eval

import (
	"encoding/binary"
	"fmt"

	"github.com/gotcl/gotcl/pkg/parse"
	"github.com/gotcl/gotcl/pkg/vals"
)

// op is a bytecode opcode. Instructions are variable-width: an opcode byte
// followed by 0-8 bytes of operands. Jump offsets are signed and relative to
// the opcode byte.
type op byte

const (
	opNop op = iota

	opPush1 // lit idx (1 byte)
	opPush4 // lit idx (4 bytes)
	opPop
	opDup
	opConcat1 // count (1 byte); pops count values, pushes their concatenation

	opLoadScalar1  // local idx (1 byte)
	opLoadScalar4  // local idx (4 bytes)
	opStoreScalar1 // local idx (1 byte); value on stack, stays
	opStoreScalar4 // local idx (4 bytes)
	opLoadArray1   // local idx (1 byte); key on stack
	opStoreArray1  // local idx (1 byte); key, value on stack; value stays
	opLoadStk      // name on stack
	opStoreStk     // name, value on stack; value stays
	opLoadArrayStk // name, key on stack
	opStoreArrayStk
	opIncrScalarImm1 // local idx (1 byte), increment (1 byte signed)
	opIncrStkImm1    // name on stack, increment (1 byte signed)

	opInvoke1 // argc (1 byte)
	opInvoke4 // argc (4 bytes)
	opInvokeExp4

	opJump1      // offset (1 byte signed)
	opJump4      // offset (4 bytes signed)
	opJumpTrue1  // pops condition
	opJumpTrue4  //
	opJumpFalse1 //
	opJumpFalse4 //

	opBreak
	opContinue
	opDone       // pops the result, completes with OK
	opSetResult  // pops into the result register
	opPushResult // pushes the result register
	opReturnImm8 // code (4 bytes), level (4 bytes); pops the result
	opError4     // lit idx (4 bytes); raises the literal as an error

	opExprStk // pops expression text, pushes its value

	opBeginCatch4 // exception range idx (4 bytes)
	opEndCatch
	opPushReturnCode
	opPushReturnOptions

	opForeachStart4 // aux idx (4 bytes); pops the value lists
	opForeachStep4  // aux idx (4 bytes); pushes the continue flag
	opJumpTable4    // aux idx (4 bytes); pops the tested value

	opStrMatch1 // mode (1 byte); pops pattern and value, pushes the match flag

	opTryDone // pops result and code; restores the result, re-raises a non-OK code
)

// Match modes for opStrMatch1.
const (
	matchExact = 0
	matchGlob  = 1
	matchRe    = 2
	// matchNocase is or'ed into the mode.
	matchNocase = 4
)

// rangeKind distinguishes exception ranges.
type rangeKind int

const (
	loopRange rangeKind = iota
	catchRange
)

// exceptRange is a bytecode region that converts completion codes into
// jumps: LOOP ranges absorb break and continue, CATCH ranges absorb every
// non-OK code.
type exceptRange struct {
	kind           rangeKind
	from, to       int
	breakTarget    int
	continueTarget int
	catchTarget    int
	// depth orders nested ranges; the innermost matching range wins.
	depth int
	// stackDepth is the operand stack depth at range entry; the stack is
	// truncated to it on transfer.
	stackDepth int
}

// foreachAux backs opForeachStart4/opForeachStep4: the loop variable names of
// each value list.
type foreachAux struct {
	varLists [][]string
}

// jumpTableAux backs opJumpTable4: literal value to jump target, plus the
// target when nothing matches.
type jumpTableAux struct {
	targets map[string]int
	noMatch int
}

// invokeExpAux backs opInvokeExp4: which of the pushed words carry the {*}
// expansion prefix.
type invokeExpAux struct {
	argc   int
	expand []bool
}

// cmdSpan maps a bytecode region back to the command source it came from,
// for errorinfo.
type cmdSpan struct {
	pcFrom, pcTo int
	src          string
	line         int
}

// CompiledProc is the unit of execution: an instruction buffer plus its
// literal, local, auxiliary and exception-range tables.
type CompiledProc struct {
	name   string
	src    string
	code   []byte
	lits   []*vals.Val
	locals []string
	ranges []exceptRange
	aux    []any
	spans  []cmdSpan
}

// NumLocals returns the size of the local-variable table.
func (p *CompiledProc) NumLocals() int { return len(p.locals) }

// spanAt returns the command span containing pc, preferring the innermost.
func (p *CompiledProc) spanAt(pc int) *cmdSpan {
	var best *cmdSpan
	for i := range p.spans {
		s := &p.spans[i]
		if pc >= s.pcFrom && pc < s.pcTo {
			if best == nil || s.pcFrom >= best.pcFrom {
				best = s
			}
		}
	}
	return best
}

func (p *CompiledProc) free() {
	for _, l := range p.lits {
		l.Release()
	}
}

// Specializer lowers one command invocation to inline bytecode. It returns
// statusOK when it emitted the command (leaving exactly one value on the
// stack), statusDefer to fall back to the generic invoke path, or
// statusError after calling c.fail.
type Specializer func(c *compiler, r *parse.Result) status

type status int

const (
	statusOK status = iota
	statusDefer
	statusError
)

// specializers maps command names to their compile-time hooks. Populated by
// the compile_*.go files.
var specializers = map[string]Specializer{}

func registerSpecializer(name string, s Specializer) {
	specializers[name] = s
}

// compiler accumulates one CompiledProc.
type compiler struct {
	in       *Interp
	proc     *CompiledProc
	litIdx   map[string]int
	localIdx map[string]int
	// procBody enables indexed local-variable slots.
	procBody bool
	// depth tracks the operand stack depth, for exception-range entry
	// depths.
	depth      int
	rangeDepth int
	err        error
}

// CompileError is a compile-time error in a script, reported when the
// compiled unit is first evaluated.
type CompileError struct {
	Name string
	Msg  string
}

func (e *CompileError) Error() string { return e.Msg }

func (c *compiler) fail(format string, args ...any) status {
	if c.err == nil {
		c.err = &CompileError{Name: c.proc.name, Msg: fmt.Sprintf(format, args...)}
	}
	return statusError
}

// compileScript compiles source text into a CompiledProc. When procBody is
// set, formals lists the procedure's formal parameters, which occupy the
// first local slots.
func compileScript(in *Interp, name, src string, procBody bool, formals []string) (*CompiledProc, error) {
	c := &compiler{
		in:       in,
		proc:     &CompiledProc{name: name, src: src},
		litIdx:   map[string]int{},
		localIdx: map[string]int{},
		procBody: procBody,
	}
	for _, f := range formals {
		c.local(f)
	}
	c.compileScriptBody(src)
	c.emit(opDone)
	if c.err != nil {
		c.proc.free()
		return nil, c.err
	}
	return c.proc, nil
}

// compileScriptBody compiles a script so that it leaves exactly one value on
// the stack: the result of its last command, or the empty string. A parse
// error compiles into code that raises it at that point, so that the
// commands before it still run.
func (c *compiler) compileScriptBody(src string) {
	sc := parse.ParseScript(parse.Source{Name: c.proc.name, Code: src})
	pushed := false
	for _, r := range sc.Commands {
		if pushed {
			c.emit(opPop)
			c.adjust(-1)
		}
		if r.ErrKind != parse.OK {
			c.emitImm4(opError4, c.literalString(r.ErrKind.String()))
			c.adjust(1)
			return
		}
		c.compileCommand(r)
		pushed = true
	}
	if !pushed {
		c.emitPushString("")
	}
}

// compileCommand compiles one command, leaving its result on the stack.
func (c *compiler) compileCommand(r *parse.Result) {
	start := len(c.proc.code)
	name, simple := r.SimpleText(0)
	if simple {
		if s, ok := specializers[name]; ok {
			// A script-defined procedure shadowing a built-in disables its
			// specializer.
			if cmd := c.in.Lookup(name); cmd == nil || cmd.Proc == nil {
				markDepth := c.depth
				mark := len(c.proc.code)
				switch s(c, r) {
				case statusOK:
					c.span(start, r)
					return
				case statusError:
					return
				case statusDefer:
					c.proc.code = c.proc.code[:mark]
					c.depth = markDepth
				}
			}
		}
	}
	c.compileInvoke(r)
	c.span(start, r)
}

// span records the source of the code compiled since start.
func (c *compiler) span(start int, r *parse.Result) {
	line := 1
	if len(r.WordLines) > 0 {
		line = r.WordLines[0]
	}
	first := r.Tokens[0].From
	last := r.Tokens[r.WordIdx(r.Words-1)].To
	c.proc.spans = append(c.proc.spans, cmdSpan{
		pcFrom: start, pcTo: len(c.proc.code),
		src: r.Src[first:last], line: line,
	})
}

// compileInvoke emits the generic invoke path: push every word, then dispatch
// by name at runtime. Words with the {*} expansion prefix are spliced into
// the argument list by the invoke instruction.
func (c *compiler) compileInvoke(r *parse.Result) {
	expanded := false
	expand := make([]bool, r.Words)
	idx := 0
	for w := 0; w < r.Words; w++ {
		tok := r.Tokens[idx]
		if tok.Kind == parse.ExpandWord {
			expanded = true
			expand[w] = true
		}
		c.compileWord(r, idx)
		idx += 1 + tok.Components
	}
	if expanded {
		aux := c.addAux(&invokeExpAux{argc: r.Words, expand: expand})
		c.emitImm4(opInvokeExp4, aux)
	} else if r.Words < 256 {
		c.emitImm1(opInvoke1, r.Words)
	} else {
		c.emitImm4(opInvoke4, r.Words)
	}
	c.adjust(1 - r.Words)
}

// compileWord pushes the value of the word whose token is at idx.
func (c *compiler) compileWord(r *parse.Result, idx int) {
	tok := r.Tokens[idx]
	switch tok.Kind {
	case parse.SimpleWord:
		text := r.Tokens[idx+1]
		c.emitPushString(text.Text(r.Src))
	case parse.Word, parse.ExpandWord:
		c.compileTokens(r, idx+1, tok.Components)
	default:
		c.fail("cannot compile word token %v", tok.Kind)
	}
}

// compileTokens pushes the concatenation of count component tokens starting
// at idx.
func (c *compiler) compileTokens(r *parse.Result, idx, count int) {
	pushes := 0
	for i := idx; i < idx+count; {
		tok := r.Tokens[i]
		switch tok.Kind {
		case parse.Text:
			c.emitPushString(tok.Text(r.Src))
		case parse.Backslash:
			ch, _ := vals.ParseBackslash(tok.Text(r.Src))
			c.emitPushString(string(ch))
		case parse.Command:
			inner := tok.Text(r.Src)
			c.compileScriptBody(inner[1 : len(inner)-1])
		case parse.Variable:
			c.compileVarRead(r, i)
		default:
			c.fail("cannot compile substitution token %v", tok.Kind)
			return
		}
		pushes++
		i += 1 + tok.Components
	}
	switch {
	case pushes == 0:
		c.emitPushString("")
	case pushes > 1:
		c.emitImm1(opConcat1, pushes)
		c.adjust(1 - pushes)
	}
}

// compileVarRead pushes the value of the variable reference token at idx.
func (c *compiler) compileVarRead(r *parse.Result, idx int) {
	tok := r.Tokens[idx]
	if tok.Components == 0 {
		// A lone $ is literal text.
		c.emitPushString(tok.Text(r.Src))
		return
	}
	name := r.Tokens[idx+1].Text(r.Src)
	if tok.Components == 1 {
		if i, ok := c.localSlot(name); ok {
			c.emitLocal(opLoadScalar1, opLoadScalar4, i)
			c.adjust(1)
			return
		}
		c.emitPushString(name)
		c.emit(opLoadStk)
		return
	}
	// Array reference: compile the index tokens.
	if i, ok := c.localSlot(name); ok {
		c.compileTokens(r, idx+2, tok.Components-1)
		c.emitImm1(opLoadArray1, i)
		return
	}
	c.emitPushString(name)
	c.compileTokens(r, idx+2, tok.Components-1)
	c.emit(opLoadArrayStk)
	c.adjust(-1)
}

// literalWord returns the literal text of word w if it is simple. A word
// index past the command defers, so truncated invocations reach the runtime
// command and its argument-count error.
func literalWord(r *parse.Result, w int) (string, bool) {
	if w < 0 || w >= r.Words {
		return "", false
	}
	return r.SimpleText(r.WordIdx(w))
}

// local interns a name in the local-variable table.
func (c *compiler) local(name string) int {
	if i, ok := c.localIdx[name]; ok {
		return i
	}
	i := len(c.proc.locals)
	c.localIdx[name] = i
	c.proc.locals = append(c.proc.locals, name)
	return i
}

// localSlot resolves a variable name to a local slot. Only simple names
// inside procedure bodies compile to slots.
func (c *compiler) localSlot(name string) (int, bool) {
	if !c.procBody || name == "" || name[0] == ':' {
		return 0, false
	}
	return c.local(name), true
}

// literal interns a value in the literal table, taking ownership of one
// reference on first sight.
func (c *compiler) literal(v *vals.Val) int {
	s := v.String()
	if i, ok := c.litIdx[s]; ok {
		v.Release()
		return i
	}
	i := len(c.proc.lits)
	c.litIdx[s] = i
	c.proc.lits = append(c.proc.lits, v)
	return i
}

func (c *compiler) literalString(s string) int {
	return c.literal(vals.NewString(s))
}

// Emitters. adjust tracks the operand stack depth.

func (c *compiler) adjust(d int) { c.depth += d }

func (c *compiler) emit(o op) int {
	pc := len(c.proc.code)
	c.proc.code = append(c.proc.code, byte(o))
	return pc
}

func (c *compiler) emitImm1(o op, a int) int {
	pc := c.emit(o)
	c.proc.code = append(c.proc.code, byte(a))
	return pc
}

func (c *compiler) emitImm4(o op, a int) int {
	pc := c.emit(o)
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(int32(a)))
	c.proc.code = append(c.proc.code, buf[:]...)
	return pc
}

func (c *compiler) emitImm44(o op, a, b int) int {
	pc := c.emitImm4(o, a)
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(int32(b)))
	c.proc.code = append(c.proc.code, buf[:]...)
	return pc
}

// emitLocal picks the 1-byte or 4-byte form of a local-indexed instruction.
func (c *compiler) emitLocal(op1, op4 op, idx int) {
	if idx < 256 {
		c.emitImm1(op1, idx)
	} else {
		c.emitImm4(op4, idx)
	}
}

func (c *compiler) emitPush(v *vals.Val) {
	idx := c.literal(v)
	if idx < 256 {
		c.emitImm1(opPush1, idx)
	} else {
		c.emitImm4(opPush4, idx)
	}
	c.adjust(1)
}

func (c *compiler) emitPushString(s string) { c.emitPush(vals.NewString(s)) }

// emitJump emits a forward jump at full width and returns its pc for
// patching. Eagerly choosing the 4-byte form avoids cascading fixups when a
// 1-byte offset later proves too short.
func (c *compiler) emitJump(o op) int {
	pc := c.emitImm4(o, 0)
	if o == opJumpTrue4 || o == opJumpFalse4 {
		c.adjust(-1)
	}
	return pc
}

// fixJump patches the forward jump at pc to land on the next instruction to
// be emitted.
func (c *compiler) fixJump(pc int) {
	offset := len(c.proc.code) - pc
	binary.BigEndian.PutUint32(c.proc.code[pc+1:pc+5], uint32(int32(offset)))
}

// emitJumpBack emits a backward jump to target, using the narrow form when
// the distance fits.
func (c *compiler) emitJumpBack(o1, o4 op, target int) {
	offset := target - len(c.proc.code)
	if offset >= -128 {
		c.emitImm1(o1, offset)
	} else {
		c.emitImm4(o4, offset)
	}
	if o1 == opJumpTrue1 || o1 == opJumpFalse1 {
		c.adjust(-1)
	}
}

// addAux interns an auxiliary-data blob.
func (c *compiler) addAux(a any) int {
	c.proc.aux = append(c.proc.aux, a)
	return len(c.proc.aux) - 1
}

// newRange allocates an exception range at the current nesting depth and
// stack depth. Targets are filled in by the caller.
func (c *compiler) newRange(kind rangeKind) int {
	c.proc.ranges = append(c.proc.ranges, exceptRange{
		kind:       kind,
		depth:      c.rangeDepth,
		stackDepth: c.depth,
	})
	return len(c.proc.ranges) - 1
}

// BytecodeKind caches a *CompiledProc on a script value. The compiled code
// indexes the value's source text, so clones drop the rep and re-compile on
// first evaluation.
var BytecodeKind = vals.RegisterKind(&vals.Kind{
	Name: "bytecode",
	// Conversion needs an interpreter for specializer lookup, so it goes
	// through compiledFor rather than Parse.
	Parse: func(v *vals.Val) (any, error) {
		return nil, &vals.ConversionError{Kind: "bytecode", Text: v.String()}
	},
	Dup:  func(any) any { return nil },
	Free: func(rep any) { rep.(*CompiledProc).free() },
})

// compiledFor returns the compiled form of a script value, caching it on the
// value.
func compiledFor(v *vals.Val, in *Interp) (*CompiledProc, error) {
	if rep := v.RepOrNil(BytecodeKind); rep != nil {
		return rep.(*CompiledProc), nil
	}
	proc, err := compileScript(in, "script", v.String(), false, nil)
	if err != nil {
		return nil, err
	}
	v.ConvertRep(BytecodeKind, proc)
	return proc, nil
}

// compiledProcBody returns the compiled form of a procedure body, with the
// formal parameters occupying the first local slots.
func compiledProcBody(body *vals.Val, in *Interp, name string, formals []string) (*CompiledProc, error) {
	if rep := body.RepOrNil(BytecodeKind); rep != nil {
		return rep.(*CompiledProc), nil
	}
	proc, err := compileScript(in, name, body.String(), true, formals)
	if err != nil {
		return nil, err
	}
	body.ConvertRep(BytecodeKind, proc)
	return proc, nil
}
