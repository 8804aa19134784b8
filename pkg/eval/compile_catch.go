package eval

import (
	"strings"

	"github.com/gotcl/gotcl/pkg/parse"
	"github.com/gotcl/gotcl/pkg/vals"
)

func init() {
	registerSpecializer("catch", compileCatch)
}

// compileCatch lowers [catch script ?resultVar? ?optionsVar?] onto an
// exception range. The normal path stores the script result and pushes 0;
// the handler receives control with the stack truncated to the range's entry
// depth and pushes the absorbed completion code.
func compileCatch(c *compiler, r *parse.Result) status {
	if r.Words < 2 || r.Words > 4 {
		return statusDefer
	}
	body, ok := literalWord(r, 1)
	if !ok {
		return statusDefer
	}
	resVar, optVar := "", ""
	if r.Words >= 3 {
		resVar, ok = literalWord(r, 2)
		if !ok || strings.Contains(resVar, "(") {
			return statusDefer
		}
	}
	if r.Words == 4 {
		optVar, ok = literalWord(r, 3)
		if !ok || strings.Contains(optVar, "(") {
			return statusDefer
		}
	}

	ri := c.newRange(catchRange)
	begin := c.emitImm4(opBeginCatch4, ri)
	c.rangeDepth++
	c.compileScriptBody(body)
	c.emit(opSetResult)
	c.adjust(-1)
	c.emit(opEndCatch)
	c.rangeDepth--
	bodyEnd := len(c.proc.code)

	// Normal completion: result and options are those of the script itself.
	if resVar != "" {
		c.storeNamed(resVar, opPushResult)
	}
	if optVar != "" {
		c.emitPushString(optVar)
		c.emitPushString("-code 0 -level 0")
		c.emit(opStoreStk)
		c.adjust(-1)
		c.emit(opPop)
		c.adjust(-1)
	}
	c.emitPush(vals.NewInt(0))
	endJump := c.emitJump(opJump4)
	// The handler resumes at the range's entry depth.
	c.adjust(-1)

	handler := len(c.proc.code)
	if resVar != "" {
		c.storeNamed(resVar, opPushResult)
	}
	if optVar != "" {
		c.storeNamed(optVar, opPushReturnOptions)
	}
	c.emit(opPushReturnCode)
	c.adjust(1)
	c.fixJump(endJump)

	rg := &c.proc.ranges[ri]
	rg.from, rg.to = begin, bodyEnd
	rg.catchTarget = handler
	return statusOK
}

// storeNamed stores the value pushed by the given push instruction into the
// named variable, leaving the stack balanced.
func (c *compiler) storeNamed(name string, push op) {
	c.emitPushString(name)
	c.emit(push)
	c.adjust(1)
	c.emit(opStoreStk)
	c.adjust(-1)
	c.emit(opPop)
	c.adjust(-1)
}
