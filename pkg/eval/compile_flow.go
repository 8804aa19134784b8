package eval

import (
	"github.com/gotcl/gotcl/pkg/parse"
	"github.com/gotcl/gotcl/pkg/vals"
)

func init() {
	registerSpecializer("if", compileIf)
	registerSpecializer("while", compileWhile)
	registerSpecializer("for", compileFor)
	registerSpecializer("foreach", compileForeach)
	registerSpecializer("break", compileBreak)
	registerSpecializer("continue", compileContinue)
	registerSpecializer("return", compileReturn)
	registerSpecializer("error", compileError)
}

// staticBool reports whether a literal condition has a compile-time truth
// value, as in [if 0] and [while 1].
func staticBool(cond string) (value, ok bool) {
	b, err := vals.ParseBool(cond)
	return b, err == nil
}

type ifArm struct {
	cond, body string
}

// compileIf lowers the if/elseif/else chain: literal-false conditions omit
// their branch, a literal-true condition ends the chain, and dynamic
// conditions chain forward jumps that all land on a common end.
func compileIf(c *compiler, r *parse.Result) status {
	var arms []ifArm
	elseBody := ""
	w := 1
	for {
		cond, ok := literalWord(r, w)
		if !ok {
			return statusDefer
		}
		w++
		if t, ok := literalWord(r, w); ok && t == "then" {
			w++
		}
		if w >= r.Words {
			return statusDefer
		}
		body, ok := literalWord(r, w)
		if !ok {
			return statusDefer
		}
		w++
		arms = append(arms, ifArm{cond, body})
		if w == r.Words {
			break
		}
		kw, ok := literalWord(r, w)
		if !ok {
			return statusDefer
		}
		switch kw {
		case "elseif":
			w++
			continue
		case "else":
			w++
			if w+1 != r.Words {
				return statusDefer
			}
			elseBody, ok = literalWord(r, w)
			if !ok {
				return statusDefer
			}
		default:
			return statusDefer
		}
		break
	}

	var endJumps []int
	taken := false
	for _, arm := range arms {
		if value, static := staticBool(arm.cond); static {
			if !value {
				continue
			}
			c.compileScriptBody(arm.body)
			taken = true
			break
		}
		c.emitPushString(arm.cond)
		c.emit(opExprStk)
		jf := c.emitJump(opJumpFalse4)
		c.compileScriptBody(arm.body)
		endJumps = append(endJumps, c.emitJump(opJump4))
		c.adjust(-1)
		c.fixJump(jf)
	}
	if !taken {
		c.compileScriptBody(elseBody)
	}
	for _, j := range endJumps {
		c.fixJump(j)
	}
	return statusOK
}

// compileWhile lowers [while test body] with the rotated layout: jump
// forward to the test, the body falls through to the test, and a backward
// jump on test-true keeps the hot path at one branch per iteration. A
// literal-true test omits the rotation entirely.
func compileWhile(c *compiler, r *parse.Result) status {
	if r.Words != 3 {
		return statusDefer
	}
	test, ok := literalWord(r, 1)
	if !ok {
		return statusDefer
	}
	body, ok := literalWord(r, 2)
	if !ok {
		return statusDefer
	}

	if value, static := staticBool(test); static && !value {
		c.emitPushString("")
		return statusOK
	}

	infinite := false
	if value, static := staticBool(test); static && value {
		infinite = true
	}

	var testJump int
	if !infinite {
		testJump = c.emitJump(opJump4)
	}
	top := len(c.proc.code)
	ri := c.newRange(loopRange)
	c.rangeDepth++
	c.compileScriptBody(body)
	c.emit(opPop)
	c.adjust(-1)
	c.rangeDepth--

	var continueTarget int
	if infinite {
		continueTarget = top
		c.emitJumpBack(opJump1, opJump4, top)
	} else {
		continueTarget = len(c.proc.code)
		c.fixJump(testJump)
		c.emitPushString(test)
		c.emit(opExprStk)
		c.emitJumpBack(opJumpTrue1, opJumpTrue4, top)
	}
	end := len(c.proc.code)
	c.emitPushString("")

	rg := &c.proc.ranges[ri]
	rg.from, rg.to = top, end
	rg.breakTarget, rg.continueTarget = end, continueTarget
	return statusOK
}

// compileFor lowers [for start test next body] with the same rotation as
// while; continue lands on the next script.
func compileFor(c *compiler, r *parse.Result) status {
	if r.Words != 5 {
		return statusDefer
	}
	var parts [4]string
	for i := 0; i < 4; i++ {
		t, ok := literalWord(r, i+1)
		if !ok {
			return statusDefer
		}
		parts[i] = t
	}
	start, test, next, body := parts[0], parts[1], parts[2], parts[3]

	c.compileScriptBody(start)
	c.emit(opPop)
	c.adjust(-1)

	if value, static := staticBool(test); static && !value {
		c.emitPushString("")
		return statusOK
	}

	testJump := c.emitJump(opJump4)
	top := len(c.proc.code)
	ri := c.newRange(loopRange)
	c.rangeDepth++
	c.compileScriptBody(body)
	c.emit(opPop)
	c.adjust(-1)
	nextTarget := len(c.proc.code)
	c.compileScriptBody(next)
	c.emit(opPop)
	c.adjust(-1)
	c.rangeDepth--

	c.fixJump(testJump)
	c.emitPushString(test)
	c.emit(opExprStk)
	c.emitJumpBack(opJumpTrue1, opJumpTrue4, top)
	end := len(c.proc.code)
	c.emitPushString("")

	rg := &c.proc.ranges[ri]
	rg.from, rg.to = top, end
	rg.breakTarget, rg.continueTarget = end, nextTarget
	return statusOK
}

// compileForeach lowers [foreach varlist list ?varlist list ...? body]. The
// auxiliary-data block lists the variable bindings of each value list; the
// start instruction captures the lists and the step instruction assigns one
// iteration, padding odd tails with empty strings.
func compileForeach(c *compiler, r *parse.Result) status {
	if r.Words < 4 || r.Words%2 != 0 {
		return statusDefer
	}
	body, ok := literalWord(r, r.Words-1)
	if !ok {
		return statusDefer
	}
	aux := &foreachAux{}
	for w := 1; w < r.Words-1; w += 2 {
		varlist, ok := literalWord(r, w)
		if !ok {
			return statusDefer
		}
		names, err := vals.SplitList(varlist)
		if err != nil || len(names) == 0 {
			return statusDefer
		}
		aux.varLists = append(aux.varLists, names)
	}
	for w := 2; w < r.Words-1; w += 2 {
		c.compileWord(r, r.WordIdx(w))
	}
	auxIdx := c.addAux(aux)
	c.emitImm4(opForeachStart4, auxIdx)
	c.adjust(-len(aux.varLists))

	step := len(c.proc.code)
	c.emitImm4(opForeachStep4, auxIdx)
	c.adjust(1)
	jf := c.emitJump(opJumpFalse4)

	ri := c.newRange(loopRange)
	c.rangeDepth++
	c.compileScriptBody(body)
	c.emit(opPop)
	c.adjust(-1)
	c.rangeDepth--
	c.emitJumpBack(opJump1, opJump4, step)

	c.fixJump(jf)
	end := len(c.proc.code)
	c.emitPushString("")

	rg := &c.proc.ranges[ri]
	rg.from, rg.to = step, end
	rg.breakTarget, rg.continueTarget = end, step
	return statusOK
}

func compileBreak(c *compiler, r *parse.Result) status {
	if r.Words != 1 {
		return statusDefer
	}
	c.emit(opBreak)
	// Unreachable; keeps the static stack model balanced.
	c.emitPushString("")
	return statusOK
}

func compileContinue(c *compiler, r *parse.Result) status {
	if r.Words != 1 {
		return statusDefer
	}
	c.emit(opContinue)
	c.emitPushString("")
	return statusOK
}

// compileReturn lowers the optionless [return ?value?]; option forms defer
// to the runtime command.
func compileReturn(c *compiler, r *parse.Result) status {
	if r.Words > 2 {
		return statusDefer
	}
	if r.Words == 2 {
		c.compileWord(r, r.WordIdx(1))
	} else {
		c.emitPushString("")
	}
	c.emitImm44(opReturnImm8, int(CodeOK), 1)
	c.adjust(-1)
	c.emitPushString("")
	return statusOK
}

// compileError lowers [error message] as a synthesized return with code
// error and level 0.
func compileError(c *compiler, r *parse.Result) status {
	if r.Words != 2 {
		return statusDefer
	}
	c.compileWord(r, r.WordIdx(1))
	c.emitImm44(opReturnImm8, int(CodeError), 0)
	c.adjust(-1)
	c.emitPushString("")
	return statusOK
}
