package shell

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lmorg/readline"

	"github.com/gotcl/gotcl/pkg/eval"
	"github.com/gotcl/gotcl/pkg/parse"
	"github.com/gotcl/gotcl/pkg/store"
)

const (
	mainPrompt = "% "
	contPrompt = "> "

	// How many stored commands to load into the recall buffer on startup.
	historyLoad = 500
)

// editor wraps readline with continuation prompts, history recall and
// command-name completion.
type editor struct {
	rl   *readline.Instance
	in   *eval.Interp
	hist *history
}

func newEditor(in *eval.Interp, st store.Store) *editor {
	ed := &editor{rl: readline.NewInstance(), in: in, hist: newHistory(st)}
	ed.rl.History = ed.hist
	ed.rl.TabCompleter = ed.complete
	return ed
}

// ReadCode reads one complete piece of code, prompting for continuation
// lines while the input ends inside an open brace, bracket or quote.
func (ed *editor) ReadCode() (string, error) {
	ed.rl.SetPrompt(mainPrompt)
	code, err := ed.rl.Readline()
	if err != nil {
		return "", err
	}
	for !parse.IsComplete(code) {
		ed.rl.SetPrompt(contPrompt)
		line, err := ed.rl.Readline()
		if err != nil {
			return "", err
		}
		code += "\n" + line
	}
	return code, nil
}

// AddHistory records an accepted piece of code.
func (ed *editor) AddHistory(code string) { ed.hist.Write(code) }

// complete offers command names for the word under the cursor.
func (ed *editor) complete(line []rune, pos int, _ readline.DelayedTabContext) (string, []string, map[string]string, readline.TabDisplayType) {
	s := string(line[:pos])
	start := len(s)
	for start > 0 && !strings.ContainsRune(" \t;[{", rune(s[start-1])) {
		start--
	}
	prefix := s[start:]

	names := ed.in.CommandNames()
	sort.Strings(names)
	var suggestions []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			suggestions = append(suggestions, name[len(prefix):])
		}
	}
	return s, suggestions, nil, readline.TabDisplayGrid
}

// history is the readline history provider, optionally persisted to a store.
type history struct {
	st    store.Store
	lines []string
}

func newHistory(st store.Store) *history {
	h := &history{st: st}
	if st == nil {
		return h
	}
	upto, err := st.NextCmdSeq()
	if err != nil {
		return h
	}
	from := upto - historyLoad
	if from < 0 {
		from = 0
	}
	cmds, err := st.CmdsWithSeq(from, upto)
	if err != nil {
		return h
	}
	for _, cmd := range cmds {
		h.lines = append(h.lines, cmd.Text)
	}
	return h
}

// Write appends a line to the history, skipping consecutive duplicates.
func (h *history) Write(s string) (int, error) {
	if n := len(h.lines); n > 0 && h.lines[n-1] == s {
		return n - 1, nil
	}
	h.lines = append(h.lines, s)
	if h.st != nil {
		if _, err := h.st.AddCmd(s); err != nil {
			return len(h.lines) - 1, err
		}
	}
	return len(h.lines) - 1, nil
}

func (h *history) GetLine(i int) (string, error) {
	if i < 0 || i >= len(h.lines) {
		return "", fmt.Errorf("history: no line %d", i)
	}
	return h.lines[i], nil
}

func (h *history) Len() int { return len(h.lines) }

func (h *history) Dump() any { return h.lines }
