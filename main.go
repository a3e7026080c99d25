/*
Copyright (C) 2023, 2024  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
/*
	memcp date/time toolkit: a scriptable strftime/strptime workbench

	https://pkelchte.wordpress.com/2013/12/31/scm-go/

*/
package main

import "os"
import "io"
import "fmt"
import "flag"
import "time"
import "bufio"
import "io/ioutil"
import "os/signal"
import "syscall"
import "path/filepath"
import "runtime/pprof"
import "github.com/fsnotify/fsnotify"
import "github.com/launix-de/memcp/scm"

var IOEnv scm.Env

func getImport(path string) func (a ...scm.Scmer) scm.Scmer {
	return func (a ...scm.Scmer) scm.Scmer {
			filename := path + "/" + scm.String(a[0])
			wd := filepath.Dir(filename)
			otherPath := scm.Env {
				scm.Vars {
					"__DIR__": path,
					"__FILE__": filename,
					"import": getImport(wd),
					"load": getLoad(wd),
					"watch": getWatch(wd),
				},
				nil,
				&IOEnv,
				true,
			}
			bytes, err := ioutil.ReadFile(filename)
			if err != nil {
				panic(err)
			}
			return scm.EvalAll(filename, string(bytes), &otherPath)
		}
}

func getLoad(path string) func (a ...scm.Scmer) scm.Scmer {
	return func (a ...scm.Scmer) scm.Scmer {
			filename := path + "/" + scm.String(a[0])
			if len(a) > 2 {
				file, err := os.Open(filename)
				if err != nil {
					panic(err)
				}
				splitter := bufio.NewReader(file)
				delimiter := scm.String(a[2])
				if len(delimiter) != 1 {
					panic("load delimiter must be 1 byte long")
				}
				for {
					str, err := splitter.ReadString(delimiter[0])
					if err == io.EOF {
						break // file is finished
					}
					if err != nil {
						panic(err)
					}
					scm.Apply(a[1], str);
				}
			} else {
				// read in whole
				bytes, err := ioutil.ReadFile(filename)
				if err != nil {
					panic(err)
				}
				if len(a) > 1 {
					scm.Apply(a[1], string(bytes));
				} else {
					return string(bytes)
				}
			}
			return true
		}
}

func getWatch(path string) func (a ...scm.Scmer) scm.Scmer {
	return func (a ...scm.Scmer) scm.Scmer {
		filename := path + "/" + scm.String(a[0])
		reread := func () {
			bytes, err := ioutil.ReadFile(filename)
			if err != nil {
				panic(err)
			}
			scm.Apply(a[1], string(bytes))
		}
		reread() // read once at the beginning in sync
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			panic(err)
		}
		go func() {
			for {
				select {
				case /*event :=*/ <- watcher.Events:
					for {
						time.Sleep(10 * time.Millisecond) // delay a bit, so we don't read empty files
						select {
						case <- watcher.Events:
							// ignore
						default:
							goto to_reread
						}
					}
					to_reread:
					func () {
						defer func() {
							if err := recover(); err != nil {
								fmt.Println(err)
							}
						}()
						reread()
					}()
					watcher.Add(filename) // text editors rename, so we have to rewatch
				}
			}
		}()
		err = watcher.Add(filename)
		if err != nil {
			panic(err)
		}
		return true
	}
}

// workaround for flags package to allow multiple values
type arrayFlags []string

func (i *arrayFlags) String() string {
    return "dummy"
}

func (i *arrayFlags) Set(value string) error {
    *i = append(*i, value)
    return nil
}

func setupIO(wd string) {
	// define some IO functions (scm will not provide them since it is sandboxable)
	IOEnv = scm.Env {
		scm.Vars {},
		nil,
		&scm.Globalenv,
		true, // other defines go into Globalenv
	}
	scm.DeclareTitle("IO")
	scm.Declare(&IOEnv, &scm.Declaration{
		"print", "Prints values to stdout (only in IO environment)",
		1, 1000,
		[]scm.DeclarationParameter{
			scm.DeclarationParameter{"value...", "any", "values to print"},
		}, "bool",
		func (a ...scm.Scmer) scm.Scmer {
			for _, s := range a {
				fmt.Print(scm.String(s))
			}
			fmt.Println()
			return true
		},
	})
	scm.Declare(&IOEnv, &scm.Declaration{
		"env", "returns the content of a environment variable",
		1, 2,
		[]scm.DeclarationParameter{
			scm.DeclarationParameter{"var", "string", "envvar"},
			scm.DeclarationParameter{"default", "string", "default if the env is not found"},
		}, "string",
		func (a ...scm.Scmer) scm.Scmer {
			if len(a) > 1 {
				if val, ok := os.LookupEnv(scm.String(a[0])); ok {
					return val
				} else {
					return a[1]
				}
			} else {
				return os.Getenv(scm.String(a[0]))
			}
		},
	})
	scm.Declare(&IOEnv, &scm.Declaration{
		"help", "Lists all functions or print help for a specific function",
		0, 1,
		[]scm.DeclarationParameter{
			scm.DeclarationParameter{"topic", "string", "function to print help about"},
		}, "nil",
		func (a ...scm.Scmer) scm.Scmer {
			if len(a) == 0 {
				scm.Help(nil)
			} else {
				scm.Help(a[0])
			}
			return nil
		},
	})
	scm.Declare(&IOEnv, &scm.Declaration{
		"import", "Imports a file .scm file into current namespace",
		1, 1,
		[]scm.DeclarationParameter{
			scm.DeclarationParameter{"filename", "string", "filename relative to folder of source file"},
		}, "any",
		(func(...scm.Scmer) scm.Scmer)(getImport(wd)),
	})
	scm.Declare(&IOEnv, &scm.Declaration{
		"load", "Loads a file and returns the string",
		1, 3,
		[]scm.DeclarationParameter{
			scm.DeclarationParameter{"filename", "string", "filename relative to folder of source file"},
			scm.DeclarationParameter{"linehandler", "func", "handler that reads each line"},
			scm.DeclarationParameter{"delimiter", "string", "delimiter to extract"},
		}, "string|bool",
		(func(...scm.Scmer) scm.Scmer)(getLoad(wd)),
	})
	scm.Declare(&IOEnv, &scm.Declaration{
		"watch", "Loads a file and calls the callback. Whenever the file changes on disk, the file is load again.",
		2, 2,
		[]scm.DeclarationParameter{
			scm.DeclarationParameter{"filename", "string", "filename relative to folder of source file"},
			scm.DeclarationParameter{"updatehandler", "func", "handler that receives the file content func(content)"},
		}, "bool",
		(func(...scm.Scmer) scm.Scmer)(getWatch(wd)),
	})
}

func main() {
	fmt.Print(`memcp date/time toolkit Copyright (C) 2023, 2024   Carl-Philip Hänsch
    This program comes with ABSOLUTELY NO WARRANTY;
    This is free software, and you are welcome to redistribute it
    under certain conditions;

`)

	// parse command line options
	var commands arrayFlags
	flag.Var(&commands, "c", "Execute scm command")

	profile := ""
	flag.StringVar(&profile, "profile", "", "Write a CPU profile to this file")

	wd, _ := os.Getwd() // libraries are relative to working directory... or change with -wd PATH
	flag.StringVar(&wd, "wd", wd, "Working Directory for (import) and (load) (Default: .)")

	flag.Parse()
	imports := flag.Args()

	setupIO(wd)
	if len(imports) == 0 {
		// load default script
		IOEnv.Vars["import"].(func(...scm.Scmer)scm.Scmer)("lib/main.scm")
	} else {
		// load scripts from command line
		for _, scmfile := range imports {
			fmt.Println("Loading " + scmfile + " ...")
			IOEnv.Vars["import"].(func(...scm.Scmer)scm.Scmer)(scmfile)
		}
	}
	for _, command := range commands {
		fmt.Println("Executing " + command + " ...")
		code := scm.Read("command line", command)
		scm.Validate(code, "any")
		code = scm.Optimize(code, &IOEnv)
		scm.Eval(code, &IOEnv)
	}

	// install exit handler
	cancelChan := make(chan os.Signal, 1)
	signal.Notify(cancelChan, syscall.SIGTERM, syscall.SIGINT)
	go (func () {
		<-cancelChan
		os.Exit(1)
	})()

	fmt.Print(`

    Type (help) to show help

`)
	// init profiling
	if profile != "" {
		f, err := os.Create(profile)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	// REPL shell
	scm.Repl(&IOEnv)
}
