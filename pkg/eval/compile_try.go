package eval

import (
	"strconv"
	"strings"

	"github.com/gotcl/gotcl/pkg/parse"
	"github.com/gotcl/gotcl/pkg/vals"
)

func init() {
	registerSpecializer("try", compileTry)
}

// tryArm is one literal on clause of a compiled try.
type tryArm struct {
	code    Code
	varList []string
	body    string
	fall    bool
}

// compileTry lowers [try body ?on code varList body ...? ?finally script?]
// when every word is literal and all handlers are on clauses. The body runs
// inside a catch range; the completion code travels on the operand stack
// through handler dispatch and the finally script, and the closing
// instruction re-raises any code the handlers did not turn into a normal
// completion. trap clauses and dynamic words defer to the runtime command.
func compileTry(c *compiler, r *parse.Result) status {
	if r.Words < 2 {
		return statusDefer
	}
	body, ok := literalWord(r, 1)
	if !ok {
		return statusDefer
	}
	var arms []tryArm
	finally := ""
	hasFinally := false
	w := 2
	for w < r.Words {
		kw, ok := literalWord(r, w)
		if !ok {
			return statusDefer
		}
		switch kw {
		case "on":
			if w+3 >= r.Words {
				return statusDefer
			}
			codeWord, ok1 := literalWord(r, w+1)
			varsWord, ok2 := literalWord(r, w+2)
			bodyWord, ok3 := literalWord(r, w+3)
			if !ok1 || !ok2 || !ok3 {
				return statusDefer
			}
			code, ok := ParseCode(codeWord)
			if !ok {
				return statusDefer
			}
			vl, err := vals.SplitList(varsWord)
			if err != nil {
				return statusDefer
			}
			for _, name := range vl {
				if strings.Contains(name, "(") {
					return statusDefer
				}
			}
			arms = append(arms, tryArm{
				code: code, varList: vl, body: bodyWord, fall: bodyWord == "-"})
			w += 4
		case "finally":
			if w+2 != r.Words {
				return statusDefer
			}
			finally, ok = literalWord(r, w+1)
			if !ok {
				return statusDefer
			}
			hasFinally = true
			w += 2
		default:
			return statusDefer
		}
	}
	if len(arms) > 0 && arms[len(arms)-1].fall {
		return statusDefer
	}

	base := c.depth
	ri := c.newRange(catchRange)
	begin := c.emitImm4(opBeginCatch4, ri)
	c.rangeDepth++
	c.compileScriptBody(body)
	c.emit(opSetResult)
	c.adjust(-1)
	c.emit(opEndCatch)
	c.rangeDepth--
	bodyEnd := len(c.proc.code)

	// Every path joins with [code result] on the stack.
	var joinJumps []int
	joinWith := func() {
		c.emit(opPushResult)
		c.adjust(1)
		joinJumps = append(joinJumps, c.emitJump(opJump4))
		c.adjust(-2)
	}

	c.emitPush(vals.NewInt(0))
	joinWith()

	// The catch target resumes at the range's entry depth with the absorbed
	// code; each on clause compares against it in order.
	c.depth = base
	dispatch := len(c.proc.code)
	c.emit(opPushReturnCode)
	c.adjust(1)
	armJumps := make([]int, len(arms))
	for i := range arms {
		c.emit(opDup)
		c.adjust(1)
		c.emitPushString(strconv.Itoa(int(arms[i].code)))
		c.emitImm1(opStrMatch1, matchExact)
		c.adjust(-1)
		armJumps[i] = c.emitJump(opJumpTrue4)
	}
	joinWith()

	for t := range arms {
		if arms[t].fall {
			continue
		}
		for i := range arms {
			if tryFallTarget(arms, i) == t {
				c.fixJump(armJumps[i])
			}
		}
		c.depth = base + 1
		c.emit(opPop)
		c.adjust(-1)
		if len(arms[t].varList) >= 1 {
			c.storeNamed(arms[t].varList[0], opPushResult)
		}
		if len(arms[t].varList) >= 2 {
			c.storeNamed(arms[t].varList[1], opPushReturnOptions)
		}
		// The handler body gets its own catch range so that a finally script
		// still runs when the handler itself raises.
		hri := c.newRange(catchRange)
		hbegin := c.emitImm4(opBeginCatch4, hri)
		c.rangeDepth++
		c.compileScriptBody(arms[t].body)
		c.emit(opSetResult)
		c.adjust(-1)
		c.emit(opEndCatch)
		c.rangeDepth--
		hEnd := len(c.proc.code)
		c.emitPush(vals.NewInt(0))
		joinWith()

		c.depth = base
		hcatch := len(c.proc.code)
		c.emit(opPushReturnCode)
		c.adjust(1)
		joinWith()

		hrg := &c.proc.ranges[hri]
		hrg.from, hrg.to = hbegin, hEnd
		hrg.catchTarget = hcatch
	}

	for _, j := range joinJumps {
		c.fixJump(j)
	}
	c.depth = base + 2
	if hasFinally {
		c.compileScriptBody(finally)
		c.emit(opPop)
		c.adjust(-1)
	}
	c.emit(opTryDone)
	c.adjust(-1)

	rg := &c.proc.ranges[ri]
	rg.from, rg.to = begin, bodyEnd
	rg.catchTarget = dispatch
	return statusOK
}

// tryFallTarget returns the index of the arm whose body arm i selects,
// following fall-through marks.
func tryFallTarget(arms []tryArm, i int) int {
	for arms[i].fall {
		i++
	}
	return i
}
