package eval

import (
	"encoding/binary"
	"strings"

	"github.com/gotcl/gotcl/pkg/expr"
	"github.com/gotcl/gotcl/pkg/parse"
	"github.com/gotcl/gotcl/pkg/vals"
)

// execState is the resumable state of one compiled procedure: the operand
// stack, the program counter, and the catch bookkeeping. A state suspends
// when it invokes work that must run on the trampoline, and is resumed with
// the completion code of that work.
type execState struct {
	in    *Interp
	proc  *CompiledProc
	frame *Frame

	stack  []*vals.Val
	pc     int
	instPC int

	// waiting marks a state suspended on nested work; pendingPush means the
	// result of that work belongs on the operand stack.
	waiting     bool
	pendingPush bool

	// lastCode and lastOpts snapshot the absorbed completion at the moment a
	// catch range triggers, for opPushReturnCode/opPushReturnOptions.
	lastCode Code
	lastOpts *vals.Val

	// iters holds live foreach iterations, keyed by aux index.
	iters map[int]*foreachIter
}

func newExecState(in *Interp, proc *CompiledProc, frame *Frame) *execState {
	return &execState{in: in, proc: proc, frame: frame}
}

func (st *execState) push(v *vals.Val) { st.stack = append(st.stack, v) }

func (st *execState) pop() *vals.Val {
	v := st.stack[len(st.stack)-1]
	st.stack = st.stack[:len(st.stack)-1]
	return v
}

func (st *execState) top() *vals.Val { return st.stack[len(st.stack)-1] }

func (st *execState) truncate(n int) {
	for len(st.stack) > n {
		st.pop().Release()
	}
}

func (st *execState) imm1() int {
	b := int(int8(st.proc.code[st.pc]))
	st.pc++
	return b
}

func (st *execState) imm1u() int {
	b := int(st.proc.code[st.pc])
	st.pc++
	return b
}

func (st *execState) imm4() int {
	v := int(int32(binary.BigEndian.Uint32(st.proc.code[st.pc:])))
	st.pc += 4
	return v
}

// run executes bytecode until the procedure completes or suspends. delivered
// is the completion code of nested work when resuming a suspended state.
func (st *execState) run(delivered Code) Code {
	in := st.in
	if st.waiting {
		st.waiting = false
		if delivered == CodeOK {
			if st.pendingPush {
				st.push(in.result.Retain())
			}
		} else if code := st.unwind(delivered); code != CodeOK {
			return st.finish(code)
		}
	}
	for {
		st.instPC = st.pc
		o := op(st.proc.code[st.pc])
		st.pc++
		switch o {
		case opNop:

		case opPush1:
			st.push(st.proc.lits[st.imm1u()].Retain())
		case opPush4:
			st.push(st.proc.lits[st.imm4()].Retain())
		case opPop:
			st.pop().Release()
		case opDup:
			st.push(st.top().Retain())
		case opConcat1:
			n := st.imm1u()
			var sb strings.Builder
			parts := st.stack[len(st.stack)-n:]
			for _, p := range parts {
				sb.WriteString(p.String())
			}
			st.truncate(len(st.stack) - n)
			st.push(vals.NewString(sb.String()))

		case opLoadScalar1, opLoadScalar4:
			i := st.operand(o == opLoadScalar4)
			v := st.frame.localVar(i, st.proc.locals[i])
			if v.scalar == nil {
				if code := st.fault(in.Errorf(`can't read "%s": no such variable`, st.proc.locals[i])); code != CodeOK {
					return code
				}
				continue
			}
			st.push(v.scalar.Retain())
		case opStoreScalar1, opStoreScalar4:
			i := st.operand(o == opStoreScalar4)
			v := st.frame.localVar(i, st.proc.locals[i])
			if v.arr != nil {
				if code := st.fault(in.Errorf(`can't set "%s": variable is array`, st.proc.locals[i])); code != CodeOK {
					return code
				}
				continue
			}
			if v.scalar != nil {
				v.scalar.Release()
			}
			v.scalar = st.top().Retain()
		case opLoadArray1:
			i := st.imm1u()
			key := st.pop()
			v := st.frame.localVar(i, st.proc.locals[i])
			e, ok := (*vals.Val)(nil), false
			if v.arr != nil {
				e, ok = v.arr[key.String()]
			}
			if !ok {
				code := in.Errorf(`can't read "%s(%s)": no such element in array`,
					st.proc.locals[i], key.String())
				key.Release()
				if code = st.fault(code); code != CodeOK {
					return code
				}
				continue
			}
			key.Release()
			st.push(e.Retain())
		case opStoreArray1:
			i := st.imm1u()
			val, key := st.pop(), st.pop()
			v := st.frame.localVar(i, st.proc.locals[i])
			if v.scalar != nil {
				val.Release()
				key.Release()
				if code := st.fault(in.Errorf(`can't set "%s": variable isn't array`, st.proc.locals[i])); code != CodeOK {
					return code
				}
				continue
			}
			if v.arr == nil {
				v.arr = make(map[string]*vals.Val)
			}
			if old, ok := v.arr[key.String()]; ok {
				old.Release()
			}
			v.arr[key.String()] = val.Retain()
			key.Release()
			st.push(val)

		case opLoadStk:
			name := st.pop()
			v, code := in.GetVar(name.String(), "")
			name.Release()
			if code != CodeOK {
				if code = st.fault(code); code != CodeOK {
					return code
				}
				continue
			}
			st.push(v.Retain())
		case opStoreStk:
			val, name := st.pop(), st.pop()
			_, code := in.SetVar(name.String(), "", val.Retain())
			name.Release()
			if code != CodeOK {
				val.Release()
				if code = st.fault(code); code != CodeOK {
					return code
				}
				continue
			}
			st.push(val)
		case opLoadArrayStk:
			key, name := st.pop(), st.pop()
			v, code := in.GetVar(name.String(), key.String())
			name.Release()
			key.Release()
			if code != CodeOK {
				if code = st.fault(code); code != CodeOK {
					return code
				}
				continue
			}
			st.push(v.Retain())
		case opStoreArrayStk:
			val, key, name := st.pop(), st.pop(), st.pop()
			_, code := in.SetVar(name.String(), key.String(), val.Retain())
			name.Release()
			key.Release()
			if code != CodeOK {
				val.Release()
				if code = st.fault(code); code != CodeOK {
					return code
				}
				continue
			}
			st.push(val)

		case opIncrScalarImm1:
			i := st.imm1u()
			incr := st.imm1()
			v := st.frame.localVar(i, st.proc.locals[i])
			res, code := incrCell(in, v, st.proc.locals[i], int64(incr))
			if code != CodeOK {
				if code = st.fault(code); code != CodeOK {
					return code
				}
				continue
			}
			st.push(res.Retain())
		case opIncrStkImm1:
			incr := st.imm1()
			name := st.pop()
			res, code := in.incrVar(name.String(), int64(incr))
			name.Release()
			if code != CodeOK {
				if code = st.fault(code); code != CodeOK {
					return code
				}
				continue
			}
			st.push(res.Retain())

		case opInvoke1, opInvoke4:
			argc := st.operand(o == opInvoke4)
			code := st.invoke(st.stack[len(st.stack)-argc:], argc)
			if code == codePending {
				return codePending
			}
			if code != CodeOK {
				if code = st.fault(code); code != CodeOK {
					return code
				}
			}
		case opInvokeExp4:
			aux := st.proc.aux[st.imm4()].(*invokeExpAux)
			code := st.invokeExpanded(aux)
			if code == codePending {
				return codePending
			}
			if code != CodeOK {
				if code = st.fault(code); code != CodeOK {
					return code
				}
			}

		case opJump1:
			st.pc = st.instPC + st.imm1()
			if code := st.checkBackEdge(); code != CodeOK {
				return code
			}
		case opJump4:
			st.pc = st.instPC + st.imm4()
			if code := st.checkBackEdge(); code != CodeOK {
				return code
			}
		case opJumpTrue1, opJumpTrue4, opJumpFalse1, opJumpFalse4:
			wide := o == opJumpTrue4 || o == opJumpFalse4
			offset := st.operandSigned(wide)
			cond := st.pop()
			b, err := vals.Bool(cond)
			cond.Release()
			if err != nil {
				if code := st.fault(in.Error(err)); code != CodeOK {
					return code
				}
				continue
			}
			want := o == opJumpTrue1 || o == opJumpTrue4
			if b == want {
				st.pc = st.instPC + offset
				if code := st.checkBackEdge(); code != CodeOK {
					return code
				}
			}

		case opBreak:
			if code := st.unwind(CodeBreak); code != CodeOK {
				return st.finish(code)
			}
		case opContinue:
			if code := st.unwind(CodeContinue); code != CodeOK {
				return st.finish(code)
			}
		case opDone:
			in.SetResult(st.pop())
			return st.finish(CodeOK)
		case opSetResult:
			in.SetResult(st.pop())
		case opPushResult:
			st.push(in.result.Retain())
		case opReturnImm8:
			code := Code(st.imm4())
			level := st.imm4()
			in.SetResult(st.pop())
			if code == CodeError {
				in.setErrorCode(vals.NewString("NONE"))
				in.errLogged = false
			}
			out := code
			if level > 0 {
				in.returnCode, in.returnLevel = code, level
				out = CodeReturn
			}
			if out = st.unwind(out); out != CodeOK {
				return st.finish(out)
			}
		case opError4:
			in.SetResult(st.proc.lits[st.imm4()].Retain())
			in.setErrorCode(vals.NewString("NONE"))
			in.errLogged = false
			if code := st.unwind(CodeError); code != CodeOK {
				return st.finish(code)
			}

		case opExprStk:
			src := st.pop()
			res, err := expr.EvalVal(src, exprEnv{in})
			src.Release()
			if err != nil {
				if code := st.fault(in.Error(err)); code != CodeOK {
					return code
				}
				continue
			}
			st.push(res)

		case opBeginCatch4:
			st.imm4()
		case opEndCatch:
		case opPushReturnCode:
			st.push(vals.NewInt(int64(st.lastCode)))
		case opPushReturnOptions:
			if st.lastOpts == nil {
				st.push(in.ReturnOptions(CodeOK))
			} else {
				st.push(st.lastOpts.Retain())
			}

		case opForeachStart4:
			idx := st.imm4()
			aux := st.proc.aux[idx].(*foreachAux)
			iter, code := newForeachIter(in, aux, st)
			if code != CodeOK {
				if code = st.fault(code); code != CodeOK {
					return code
				}
				continue
			}
			if st.iters == nil {
				st.iters = make(map[int]*foreachIter)
			}
			if old, ok := st.iters[idx]; ok {
				old.free()
			}
			st.iters[idx] = iter
		case opForeachStep4:
			iter := st.iters[st.imm4()]
			more, code := iter.step(in)
			if code != CodeOK {
				if code = st.fault(code); code != CodeOK {
					return code
				}
				continue
			}
			st.push(vals.NewBool(more))

		case opJumpTable4:
			aux := st.proc.aux[st.imm4()].(*jumpTableAux)
			v := st.pop()
			if target, ok := aux.targets[v.String()]; ok {
				st.pc = target
			} else {
				st.pc = aux.noMatch
			}
			v.Release()

		case opStrMatch1:
			mode := st.imm1u()
			pat, v := st.pop(), st.pop()
			matched, err := matchString(mode, pat.String(), v.String())
			pat.Release()
			v.Release()
			if err != nil {
				if code := st.fault(in.Error(err)); code != CodeOK {
					return code
				}
				continue
			}
			st.push(vals.NewBool(matched))

		case opTryDone:
			res, codeVal := st.pop(), st.pop()
			n, err := vals.Int(codeVal)
			codeVal.Release()
			in.SetResult(res)
			if err == nil && Code(n) != CodeOK {
				if code := st.unwind(Code(n)); code != CodeOK {
					return st.finish(code)
				}
				continue
			}
			st.push(in.result.Retain())

		default:
			return st.finish(in.Errorf("illegal instruction %d", o))
		}
	}
}

// operand reads a 1- or 4-byte unsigned operand.
func (st *execState) operand(wide bool) int {
	if wide {
		return st.imm4()
	}
	return st.imm1u()
}

// operandSigned reads a 1- or 4-byte signed operand.
func (st *execState) operandSigned(wide bool) int {
	if wide {
		return st.imm4()
	}
	return st.imm1()
}

// checkBackEdge runs the cooperative limit check when a jump went backward.
// Every loop closes with a backward jump, so a spinning script cannot evade
// the limit.
func (st *execState) checkBackEdge() Code {
	if st.pc > st.instPC || st.in.Limit == nil {
		return CodeOK
	}
	if code := st.in.checkLimit(); code != CodeOK {
		return st.fault(code)
	}
	return CodeOK
}

// fault handles a completion raised by the current instruction: absorbed
// codes continue the loop with CodeOK, anything else finishes the state.
func (st *execState) fault(code Code) Code {
	if code = st.unwind(code); code != CodeOK {
		return st.finish(code)
	}
	return CodeOK
}

// unwind searches the exception ranges for the innermost one containing the
// current instruction that can absorb code. LOOP ranges absorb break and
// continue; CATCH ranges absorb everything unless the resource limit has
// disabled them. Returns CodeOK when absorbed.
func (st *execState) unwind(code Code) Code {
	in := st.in
	if code == CodeError {
		if span := st.proc.spanAt(st.instPC); span != nil {
			in.logError(span.src, span.line)
		}
	}
	best := -1
	for i := range st.proc.ranges {
		r := &st.proc.ranges[i]
		if st.instPC < r.from || st.instPC >= r.to {
			continue
		}
		if r.kind == loopRange && code != CodeBreak && code != CodeContinue {
			continue
		}
		if r.kind == catchRange && in.catchDisabled() {
			continue
		}
		if best < 0 || r.depth > st.proc.ranges[best].depth {
			best = i
		}
	}
	if best < 0 {
		return code
	}
	r := &st.proc.ranges[best]
	st.truncate(r.stackDepth)
	switch r.kind {
	case loopRange:
		if code == CodeBreak {
			st.pc = r.breakTarget
		} else {
			st.pc = r.continueTarget
		}
	case catchRange:
		st.lastCode = code
		if st.lastOpts != nil {
			st.lastOpts.Release()
		}
		st.lastOpts = in.ReturnOptions(code)
		if code == CodeBreak || code == CodeContinue {
			in.ResetResult()
		}
		st.pc = r.catchTarget
	}
	return CodeOK
}

// finish releases the state's resources and propagates code to the caller.
func (st *execState) finish(code Code) Code {
	st.truncate(0)
	for _, it := range st.iters {
		it.free()
	}
	st.iters = nil
	if st.lastOpts != nil {
		st.lastOpts.Release()
		st.lastOpts = nil
	}
	return code
}

// invoke dispatches a command invocation. args is a view into the operand
// stack; invoke pops and releases it in all paths.
func (st *execState) invoke(args []*vals.Val, argc int) Code {
	in := st.in
	if code := in.checkLimit(); code != CodeOK {
		st.truncate(len(st.stack) - argc)
		return code
	}
	name := args[0].String()
	cmd := in.Lookup(name)
	if cmd == nil {
		st.truncate(len(st.stack) - argc)
		return in.Errorf("invalid command name %q", name)
	}
	if cmd.Proc != nil {
		code := in.callProc(cmd, args)
		st.truncate(len(st.stack) - argc)
		if code == codePending {
			st.waiting, st.pendingPush = true, true
		}
		return code
	}
	code := cmd.Fn(in, args)
	st.truncate(len(st.stack) - argc)
	if code == codePending {
		st.waiting, st.pendingPush = true, true
		return codePending
	}
	if code == CodeOK {
		st.push(in.result.Retain())
	}
	return code
}

// invokeExpanded splices {*}-marked words into the argument list, then
// dispatches like invoke.
func (st *execState) invokeExpanded(aux *invokeExpAux) Code {
	in := st.in
	words := make([]*vals.Val, aux.argc)
	copy(words, st.stack[len(st.stack)-aux.argc:])
	st.stack = st.stack[:len(st.stack)-aux.argc]

	var args []*vals.Val
	release := func() {
		for _, w := range words {
			w.Release()
		}
		for _, a := range args {
			a.Release()
		}
	}
	for i, w := range words {
		if !aux.expand[i] {
			args = append(args, w.Retain())
			continue
		}
		elems, err := vals.ListElems(w)
		if err != nil {
			release()
			return in.Error(err)
		}
		for _, e := range elems {
			args = append(args, e.Retain())
		}
	}
	for _, w := range words {
		w.Release()
	}

	if len(args) == 0 {
		// Everything expanded to nothing; an empty command is a no-op.
		in.ResetResult()
		st.push(in.result.Retain())
		return CodeOK
	}
	for _, a := range args {
		st.push(a)
	}
	return st.invoke(st.stack[len(st.stack)-len(args):], len(args))
}

// incrCell increments a variable cell in place, honoring copy-on-write.
func incrCell(in *Interp, v *Var, name string, by int64) (*vals.Val, Code) {
	if v.arr != nil {
		return nil, in.Errorf(`can't set "%s": variable is array`, name)
	}
	var cur int64
	if v.scalar != nil {
		n, err := vals.Int(v.scalar)
		if err != nil {
			return nil, in.Error(err)
		}
		cur = n
		v.scalar.Release()
	}
	v.scalar = vals.NewInt(cur + by)
	return v.scalar, CodeOK
}

// incrVar increments a possibly-indexed variable by name.
func (in *Interp) incrVar(spec string, by int64) (*vals.Val, Code) {
	name, index := splitIndexedName(spec)
	var cur int64
	if in.VarExists(name, index) {
		v, code := in.GetVar(name, index)
		if code != CodeOK {
			return nil, code
		}
		n, err := vals.Int(v)
		if err != nil {
			return nil, in.Error(err)
		}
		cur = n
	}
	return in.SetVar(name, index, vals.NewInt(cur+by))
}

// foreachIter is the live state of one foreach loop: the elements of each
// value list and the iteration counter.
type foreachIter struct {
	aux   *foreachAux
	lists [][]*vals.Val
	i     int
	total int
}

// newForeachIter pops the value lists off the operand stack, innermost last.
func newForeachIter(in *Interp, aux *foreachAux, st *execState) (*foreachIter, Code) {
	n := len(aux.varLists)
	iter := &foreachIter{aux: aux}
	listVals := st.stack[len(st.stack)-n:]
	for j, lv := range listVals {
		elems, err := vals.ListElems(lv)
		if err != nil {
			iter.free()
			st.truncate(len(st.stack) - n)
			return nil, in.Error(err)
		}
		owned := make([]*vals.Val, len(elems))
		for k, e := range elems {
			owned[k] = e.Retain()
		}
		iter.lists = append(iter.lists, owned)
		vars := len(aux.varLists[j])
		iterations := (len(elems) + vars - 1) / vars
		if iterations > iter.total {
			iter.total = iterations
		}
	}
	st.truncate(len(st.stack) - n)
	return iter, CodeOK
}

// step assigns the loop variables for the next iteration, padding missing
// trailing values with empty strings. It reports whether an iteration was
// started.
func (it *foreachIter) step(in *Interp) (bool, Code) {
	if it.i >= it.total {
		return false, CodeOK
	}
	for j, vars := range it.aux.varLists {
		for k, name := range vars {
			idx := it.i*len(vars) + k
			var val *vals.Val
			if idx < len(it.lists[j]) {
				val = it.lists[j][idx].Retain()
			} else {
				val = vals.NewString("")
			}
			if _, code := in.SetVarByName(name, val); code != CodeOK {
				return false, code
			}
		}
	}
	it.i++
	return true, CodeOK
}

func (it *foreachIter) free() {
	for _, l := range it.lists {
		for _, e := range l {
			e.Release()
		}
	}
	it.lists = nil
}

// matchString applies one of the switch matching modes.
func matchString(mode int, pattern, s string) (bool, error) {
	nocase := mode&matchNocase != 0
	switch mode &^ matchNocase {
	case matchExact:
		if nocase {
			return strings.EqualFold(pattern, s), nil
		}
		return pattern == s, nil
	case matchGlob:
		return globMatch(pattern, s, nocase), nil
	case matchRe:
		return reMatch(pattern, s, nocase)
	}
	return false, nil
}

// parseErrOf surfaces a parse error of a nested script at evaluation time.
func (in *Interp) parseErrOf(sc *parse.Script) Code {
	return in.Errorf("%s", sc.ErrKind.String())
}
