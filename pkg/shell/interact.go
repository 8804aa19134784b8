package shell

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gotcl/gotcl/pkg/eval"
	"github.com/gotcl/gotcl/pkg/store"
)

// interactCfg keeps configuration for the interactive mode.
type interactCfg struct {
	// RC is the path of the rc file to source on startup; empty to skip.
	RC string
	// DB is the path of the history database; empty for in-memory history.
	DB string
}

// interact runs an interactive session on the terminal.
func interact(fds [3]*os.File, cfg *interactCfg) {
	in := eval.NewInterp()
	in.Stdout, in.Stderr = fds[1], fds[2]

	var st store.Store
	if cfg.DB != "" {
		var err error
		st, err = store.NewStore(cfg.DB)
		if err != nil {
			fmt.Fprintln(fds[2], "Warning: cannot open history database:", err)
			fmt.Fprintln(fds[2], "History will not be persisted.")
		} else {
			defer st.Close()
		}
	}

	ed := newEditor(in, st)

	if cfg.RC != "" {
		if err := sourceRC(fds, in, cfg.RC); err != nil {
			fmt.Fprintln(fds[2], err)
		}
	}

	for {
		line, err := ed.ReadCode()
		if err == io.EOF {
			break
		} else if err != nil {
			fmt.Fprintln(fds[2], "Editor error:", err)
			break
		}
		if line == "" {
			continue
		}

		ed.AddHistory(line)
		result, code := in.Eval(line)
		if code != eval.CodeOK {
			showError(fds[2], in, code)
		} else if result != "" {
			fmt.Fprintln(fds[1], result)
		}
	}
}

func sourceRC(fds [3]*os.File, in *eval.Interp, rcPath string) error {
	absPath, err := filepath.Abs(rcPath)
	if err != nil {
		return fmt.Errorf("cannot get full path of rc file: %v", err)
	}
	code, err := readFileUTF8(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cannot read rc file: %v", err)
	}
	if _, c := in.Eval(code); c != eval.CodeOK {
		showError(fds[2], in, c)
	}
	return nil
}
