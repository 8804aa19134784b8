package eval

import (
	"sort"

	"github.com/gotcl/gotcl/pkg/encodings"
	"github.com/gotcl/gotcl/pkg/vals"
)

func registerEncodingCmds(in *Interp) {
	register(in, "encoding", encodingCmd)
}

func encodingCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 2 {
		return in.WrongNumArgs("encoding subcommand ?arg ...?")
	}
	switch sub := args[1].String(); sub {
	case "system":
		if len(args) != 2 {
			return in.WrongNumArgs("encoding system")
		}
		return doneStr(in, encodings.System)
	case "names":
		if len(args) != 2 {
			return in.WrongNumArgs("encoding names")
		}
		names := encodings.Names()
		sort.Strings(names)
		return doneStr(in, vals.JoinList(names))
	case "convertfrom", "convertto":
		name := encodings.System
		var data string
		switch len(args) {
		case 3:
			data = args[2].String()
		case 4:
			name, data = args[2].String(), args[3].String()
		default:
			return in.WrongNumArgs("encoding " + sub + " ?encoding? data")
		}
		convert := encodings.Decode
		if sub == "convertto" {
			convert = encodings.Encode
		}
		out, err := convert(name, data)
		if err != nil {
			return in.Error(err)
		}
		return doneStr(in, out)
	default:
		return in.Errorf("unknown or ambiguous subcommand %q", sub)
	}
}
