package eval

import (
	"github.com/gotcl/gotcl/pkg/parse"
	"github.com/gotcl/gotcl/pkg/vals"
)

func init() {
	registerSpecializer("switch", compileSwitch)
}

// switchArm is one pattern/body pair. A "-" body marks fall-through into the
// next arm; the trailing "default" pattern catches everything.
type switchArm struct {
	pattern   string
	body      string
	fall      bool
	isDefault bool
}

// compileSwitch lowers [switch ?options? string pattern body ...], in both
// the paired-words and single-braced-list forms. Exact matching without
// -nocase compiles to a jump table; the other modes compile to a chain of
// match tests against the duplicated value.
func compileSwitch(c *compiler, r *parse.Result) status {
	mode := matchExact
	w := 1
	for ; w < r.Words; w++ {
		opt, ok := literalWord(r, w)
		if !ok || len(opt) == 0 || opt[0] != '-' {
			break
		}
		if opt == "--" {
			w++
			break
		}
		switch opt {
		case "-exact":
			mode = mode&matchNocase | matchExact
		case "-glob":
			mode = mode&matchNocase | matchGlob
		case "-regexp":
			mode = mode&matchNocase | matchRe
		case "-nocase":
			mode |= matchNocase
		default:
			return statusDefer
		}
	}
	if w >= r.Words {
		return statusDefer
	}
	strIdx := r.WordIdx(w)
	w++

	arms, st := switchArms(c, r, w)
	if st != statusOK {
		return st
	}

	c.compileWord(r, strIdx)
	if mode == matchExact {
		compileSwitchTable(c, arms)
	} else {
		compileSwitchChain(c, arms, mode)
	}
	return statusOK
}

// switchArms collects the pattern/body pairs, from either the remaining
// words or a single braced list.
func switchArms(c *compiler, r *parse.Result, w int) ([]switchArm, status) {
	var parts []string
	if r.Words == w+1 {
		text, ok := literalWord(r, w)
		if !ok {
			return nil, statusDefer
		}
		elems, err := vals.SplitList(text)
		if err != nil || len(elems) == 0 {
			return nil, statusDefer
		}
		parts = elems
	} else {
		for ; w < r.Words; w++ {
			text, ok := literalWord(r, w)
			if !ok {
				return nil, statusDefer
			}
			parts = append(parts, text)
		}
	}
	if len(parts)%2 != 0 {
		return nil, c.fail("extra switch pattern with no body")
	}
	var arms []switchArm
	for i := 0; i < len(parts); i += 2 {
		arm := switchArm{pattern: parts[i], body: parts[i+1]}
		if arm.body == "-" {
			if i+2 >= len(parts) {
				return nil, c.fail("no body specified for pattern %q", arm.pattern)
			}
			arm.body, arm.fall = "", true
		}
		if arm.pattern == "default" && i+2 >= len(parts) {
			arm.isDefault = true
		}
		arms = append(arms, arm)
	}
	return arms, statusOK
}

// fallTarget returns the index of the arm whose body arm i selects,
// following fall-through marks.
func fallTarget(arms []switchArm, i int) int {
	for arms[i].fall {
		i++
	}
	return i
}

// compileSwitchTable emits the jump-table form. The tested value is on the
// stack; the table instruction pops it and transfers to the matching arm's
// body or to the no-match target.
func compileSwitchTable(c *compiler, arms []switchArm) {
	base := c.depth - 1
	aux := &jumpTableAux{targets: map[string]int{}}
	c.emitImm4(opJumpTable4, c.addAux(aux))
	c.adjust(-1)

	bodyPC := make([]int, len(arms))
	defaultIdx := -1
	var endJumps []int
	for i := range arms {
		if arms[i].fall {
			continue
		}
		bodyPC[i] = len(c.proc.code)
		c.depth = base
		c.compileScriptBody(arms[i].body)
		endJumps = append(endJumps, c.emitJump(opJump4))
		if arms[i].isDefault {
			defaultIdx = i
		}
	}
	if defaultIdx >= 0 {
		aux.noMatch = bodyPC[defaultIdx]
	} else {
		aux.noMatch = len(c.proc.code)
		c.depth = base
		c.emitPushString("")
	}
	for i := range arms {
		if arms[i].isDefault {
			continue
		}
		// The first arm with a given pattern wins, as in sequential matching.
		if _, dup := aux.targets[arms[i].pattern]; dup {
			continue
		}
		aux.targets[arms[i].pattern] = bodyPC[fallTarget(arms, i)]
	}
	for _, j := range endJumps {
		c.fixJump(j)
	}
	c.depth = base + 1
}

// compileSwitchChain emits the chained-test form used by -glob, -regexp and
// -nocase: the value stays on the stack through the tests and each arm pops
// it before running its body. Tests selecting the default arm jump to the
// shared no-match path.
func compileSwitchChain(c *compiler, arms []switchArm, mode int) {
	base := c.depth - 1
	defaultIdx := -1
	for i := range arms {
		if arms[i].isDefault {
			defaultIdx = i
		}
	}
	armJumps := make([][]int, len(arms))
	var defaultJumps []int
	for i := range arms {
		if arms[i].isDefault {
			continue
		}
		c.emit(opDup)
		c.adjust(1)
		c.emitPushString(arms[i].pattern)
		c.emitImm1(opStrMatch1, mode)
		c.adjust(-1)
		j := c.emitJump(opJumpTrue4)
		if t := fallTarget(arms, i); t == defaultIdx {
			defaultJumps = append(defaultJumps, j)
		} else {
			armJumps[t] = append(armJumps[t], j)
		}
	}
	// No pattern matched (or one fell through to default): drop the value
	// and run the default body, or produce the empty string.
	for _, j := range defaultJumps {
		c.fixJump(j)
	}
	c.emit(opPop)
	c.adjust(-1)
	if defaultIdx >= 0 {
		c.compileScriptBody(arms[defaultIdx].body)
	} else {
		c.emitPushString("")
	}
	endJumps := []int{c.emitJump(opJump4)}

	for i := range arms {
		if arms[i].fall || arms[i].isDefault || len(armJumps[i]) == 0 {
			continue
		}
		for _, j := range armJumps[i] {
			c.fixJump(j)
		}
		c.depth = base + 1
		c.emit(opPop)
		c.adjust(-1)
		c.compileScriptBody(arms[i].body)
		endJumps = append(endJumps, c.emitJump(opJump4))
	}
	for _, j := range endJumps {
		c.fixJump(j)
	}
	c.depth = base + 1
}
