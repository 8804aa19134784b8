package eval

import (
	"os"

	"github.com/gotcl/gotcl/pkg/paths"
	"github.com/gotcl/gotcl/pkg/vals"
)

func registerFileCmds(in *Interp) {
	register(in, "file", fileCmd)
	register(in, "pwd", pwdCmd)
	register(in, "cd", cdCmd)
}

// fileCmd dispatches the path-manipulation and filesystem-query subcommands.
// Pure path operations go through the path value layer and never touch the
// filesystem; queries resolve the owning filesystem first.
func fileCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 2 {
		return in.WrongNumArgs("file subcommand ?arg ...?")
	}
	sub := args[1].String()

	switch sub {
	case "join":
		if len(args) < 3 {
			return in.WrongNumArgs("file join name ?name ...?")
		}
		parts := make([]string, len(args)-2)
		for i, a := range args[2:] {
			parts[i] = a.String()
		}
		return done(in, paths.JoinVal(parts...))
	case "split":
		if len(args) != 3 {
			return in.WrongNumArgs("file split name")
		}
		return doneStr(in, vals.JoinList(paths.Split(args[2].String())))
	case "separator":
		return doneStr(in, "/")
	case "volumes":
		return doneStr(in, vals.JoinList(paths.Native.ListVolumes()))
	}

	if len(args) < 3 {
		return in.WrongNumArgs("file " + sub + " name")
	}
	pathVal := args[2]

	switch sub {
	case "dirname":
		s, err := paths.Dirname(pathVal)
		if err != nil {
			return in.Error(err)
		}
		return doneStr(in, s)
	case "tail":
		s, err := paths.Tail(pathVal)
		if err != nil {
			return in.Error(err)
		}
		return doneStr(in, s)
	case "extension":
		s, err := paths.Extension(pathVal)
		if err != nil {
			return in.Error(err)
		}
		return doneStr(in, s)
	case "rootname":
		s, err := paths.Rootname(pathVal)
		if err != nil {
			return in.Error(err)
		}
		return doneStr(in, s)
	case "pathtype":
		return doneStr(in, paths.Type(pathVal.String()))
	}

	translated, err := paths.Translated(pathVal)
	if err != nil {
		return in.Error(err)
	}
	fs := paths.FilesystemFor(translated)

	switch sub {
	case "normalize":
		s, err := paths.Normalized(pathVal, fs)
		if err != nil {
			return in.Error(err)
		}
		return doneStr(in, s)
	case "system":
		return doneStr(in, fs.Name())
	case "exists":
		return doneBool(in, fs.Access(translated, paths.Exists) == nil)
	case "readable":
		return doneBool(in, fs.Access(translated, paths.Read) == nil)
	case "writable":
		return doneBool(in, fs.Access(translated, paths.Write) == nil)
	case "executable":
		return doneBool(in, fs.Access(translated, paths.Exec) == nil)
	case "isfile":
		fi, err := fs.Stat(translated)
		return doneBool(in, err == nil && fi.Mode().IsRegular())
	case "isdirectory":
		fi, err := fs.Stat(translated)
		return doneBool(in, err == nil && fi.IsDir())
	case "size":
		fi, err := fs.Stat(translated)
		if err != nil {
			return in.Errorf("could not read %q: no such file or directory", pathVal.String())
		}
		return doneInt(in, fi.Size())
	case "mtime":
		fi, err := fs.Stat(translated)
		if err != nil {
			return in.Errorf("could not read %q: no such file or directory", pathVal.String())
		}
		return doneInt(in, fi.ModTime().Unix())
	case "atime":
		fi, err := fs.Stat(translated)
		if err != nil {
			return in.Errorf("could not read %q: no such file or directory", pathVal.String())
		}
		return doneInt(in, paths.Atime(fi).Unix())
	case "type":
		fi, err := fs.Lstat(translated)
		if err != nil {
			return in.Errorf("could not read %q: no such file or directory", pathVal.String())
		}
		return doneStr(in, fileType(fi))
	case "readlink":
		target, err := fs.Readlink(translated)
		if err != nil {
			return in.Errorf("could not readlink %q: %s", pathVal.String(), err)
		}
		return doneStr(in, target)
	case "owned":
		owned, err := paths.Owned(translated)
		if err != nil {
			return in.Error(err)
		}
		return doneBool(in, owned)
	case "stat", "lstat":
		if len(args) != 4 {
			return in.WrongNumArgs("file " + sub + " name varName")
		}
		statFn := fs.Stat
		if sub == "lstat" {
			statFn = fs.Lstat
		}
		fi, err := statFn(translated)
		if err != nil {
			return in.Errorf("could not read %q: no such file or directory", pathVal.String())
		}
		arr := args[3].String()
		uid, gid := paths.OwnerIDs(fi)
		fields := map[string]*vals.Val{
			"size":  vals.NewInt(fi.Size()),
			"mtime": vals.NewInt(fi.ModTime().Unix()),
			"atime": vals.NewInt(paths.Atime(fi).Unix()),
			"uid":   vals.NewInt(int64(uid)),
			"gid":   vals.NewInt(int64(gid)),
			"mode":  vals.NewInt(int64(fi.Mode())),
			"type":  vals.NewString(fileType(fi)),
		}
		for k, v := range fields {
			if _, code := in.SetVar(arr, k, v); code != CodeOK {
				return code
			}
		}
		return doneStr(in, "")
	}
	return in.Errorf("unknown or ambiguous subcommand %q", sub)
}

func fileType(fi os.FileInfo) string {
	switch {
	case fi.Mode().IsRegular():
		return "file"
	case fi.IsDir():
		return "directory"
	case fi.Mode()&os.ModeSymlink != 0:
		return "link"
	case fi.Mode()&os.ModeNamedPipe != 0:
		return "fifo"
	case fi.Mode()&os.ModeSocket != 0:
		return "socket"
	case fi.Mode()&os.ModeDevice != 0:
		return "characterSpecial"
	}
	return "unknown"
}

func pwdCmd(in *Interp, args []*vals.Val) Code {
	if len(args) != 1 {
		return in.WrongNumArgs("pwd")
	}
	dir, err := paths.Native.Getwd()
	if err != nil {
		return in.Error(err)
	}
	return doneStr(in, dir)
}

func cdCmd(in *Interp, args []*vals.Val) Code {
	if len(args) > 2 {
		return in.WrongNumArgs("cd ?dirName?")
	}
	var dir string
	if len(args) == 2 {
		s, err := paths.Translated(args[1])
		if err != nil {
			return in.Error(err)
		}
		dir = s
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return in.Error(err)
		}
		dir = home
	}
	fs := paths.FilesystemFor(dir)
	if err := fs.Chdir(dir); err != nil {
		return in.Errorf("couldn't change working directory to %q: %s", dir, err)
	}
	return doneStr(in, "")
}
