package eval

import (
	"strconv"

	"github.com/gotcl/gotcl/pkg/parse"
)

func init() {
	registerSpecializer("set", compileSet)
	registerSpecializer("incr", compileIncr)
}

// compileSet lowers [set var ?value?]. Simple scalar locals compile to the
// indexed load/store instructions; literal array elements push the element
// key; everything else uses the stack-named variants. Dynamic variable names
// defer to the runtime command.
func compileSet(c *compiler, r *parse.Result) status {
	if r.Words != 2 && r.Words != 3 {
		return statusDefer
	}
	nameText, ok := literalWord(r, 1)
	if !ok {
		return statusDefer
	}
	name, index := splitIndexedName(nameText)

	if r.Words == 2 {
		if i, ok := c.localSlot(name); ok {
			if index == "" {
				c.emitLocal(opLoadScalar1, opLoadScalar4, i)
				c.adjust(1)
				return statusOK
			}
			if i < 256 {
				c.emitPushString(index)
				c.emitImm1(opLoadArray1, i)
				return statusOK
			}
			return statusDefer
		}
		c.emitPushString(name)
		if index == "" {
			c.emit(opLoadStk)
		} else {
			c.emitPushString(index)
			c.emit(opLoadArrayStk)
			c.adjust(-1)
		}
		return statusOK
	}

	valueIdx := r.WordIdx(2)
	if i, ok := c.localSlot(name); ok {
		if index == "" {
			c.compileWord(r, valueIdx)
			c.emitLocal(opStoreScalar1, opStoreScalar4, i)
			return statusOK
		}
		if i < 256 {
			c.emitPushString(index)
			c.compileWord(r, valueIdx)
			c.emitImm1(opStoreArray1, i)
			c.adjust(-1)
			return statusOK
		}
		return statusDefer
	}
	c.emitPushString(name)
	if index == "" {
		c.compileWord(r, valueIdx)
		c.emit(opStoreStk)
		c.adjust(-1)
		return statusOK
	}
	c.emitPushString(index)
	c.compileWord(r, valueIdx)
	c.emit(opStoreArrayStk)
	c.adjust(-2)
	return statusOK
}

// compileIncr lowers [incr var ?by?] when the increment is a literal that
// fits in a signed byte.
func compileIncr(c *compiler, r *parse.Result) status {
	if r.Words != 2 && r.Words != 3 {
		return statusDefer
	}
	nameText, ok := literalWord(r, 1)
	if !ok {
		return statusDefer
	}
	by := 1
	if r.Words == 3 {
		byText, ok := literalWord(r, 2)
		if !ok {
			return statusDefer
		}
		n, err := strconv.Atoi(byText)
		if err != nil || n < -128 || n > 127 {
			return statusDefer
		}
		by = n
	}
	name, index := splitIndexedName(nameText)
	if index == "" {
		if i, ok := c.localSlot(name); ok && i < 256 {
			c.emitImm1(opIncrScalarImm1, i)
			c.proc.code = append(c.proc.code, byte(int8(by)))
			c.adjust(1)
			return statusOK
		}
	}
	c.emitPushString(nameText)
	c.emitImm1(opIncrStkImm1, by)
	return statusOK
}
