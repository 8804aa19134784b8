package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/gotcl/gotcl/pkg/diag"
	"github.com/gotcl/gotcl/pkg/eval"
	"github.com/gotcl/gotcl/pkg/vals"
)

// Configuration for the script mode.
type scriptCfg struct {
	Cmd         bool
	CompileOnly bool
	JSON        bool
}

// script executes a script file, or a code snippet with -c.
func script(fds [3]*os.File, args []string, cfg *scriptCfg) int {
	arg0 := args[0]

	var name, code string
	if cfg.Cmd {
		name = "code from -c"
		code = arg0
	} else {
		var err error
		name, err = filepath.Abs(arg0)
		if err != nil {
			fmt.Fprintf(fds[2],
				"cannot get full path of script %q: %v\n", arg0, err)
			return 2
		}
		code, err = readFileUTF8(name)
		if err != nil {
			fmt.Fprintf(fds[2], "cannot read script %q: %v\n", name, err)
			return 2
		}
	}

	in := eval.NewInterp()
	in.Stdout, in.Stderr = fds[1], fds[2]
	setScriptArgs(in, args)

	if cfg.CompileOnly {
		err := in.Check(name, code)
		if cfg.JSON {
			fmt.Fprintf(fds[1], "%s\n", errorToJSON(err))
		} else if err != nil {
			fmt.Fprintln(fds[2], err)
		}
		if err != nil {
			return 2
		}
		return 0
	}

	return evalInTerm(in, fds, code)
}

// setScriptArgs populates argv0, argv and argc the way tclsh does.
func setScriptArgs(in *eval.Interp, args []string) {
	rest := args[1:]
	elems := make([]*vals.Val, len(rest))
	for i, a := range rest {
		elems[i] = vals.NewString(a)
	}
	in.SetVar("argv0", "", vals.NewString(args[0]))
	in.SetVar("argv", "", vals.NewList(elems...))
	in.SetVar("argc", "", vals.NewInt(int64(len(rest))))
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

func readFileUTF8(fname string) (string, error) {
	bytes, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bytes) {
		return "", errSourceNotUTF8
	}
	return string(bytes), nil
}

// An auxiliary struct for converting errors with position information to
// JSON.
type errorInJSON struct {
	FileName string `json:"fileName"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Message  string `json:"message"`
}

// errorToJSON converts a parse or compile error into a JSON array.
func errorToJSON(err error) []byte {
	converted := []errorInJSON{}
	var parseErr *diag.Error
	var compileErr *eval.CompileError
	switch {
	case err == nil:
	case errors.As(err, &parseErr):
		r := parseErr.Range()
		converted = append(converted,
			errorInJSON{parseErr.Context.Name, r.From, r.To, parseErr.Message})
	case errors.As(err, &compileErr):
		converted = append(converted,
			errorInJSON{compileErr.Name, 0, 0, compileErr.Msg})
	default:
		converted = append(converted, errorInJSON{Message: err.Error()})
	}

	out, errMarshal := json.Marshal(converted)
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the errors to JSON"}]`)
	}
	return out
}
