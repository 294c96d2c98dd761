package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  objcore [--config <file.yaml|file.toml>] demo")
	fmt.Fprintln(os.Stderr, "  objcore [--config <file.yaml|file.toml>] repl")
	fmt.Fprintln(os.Stderr, "  objcore version")
}

func printReplHelp() {
	fmt.Fprintln(os.Stdout, "Commands:")
	fmt.Fprintln(os.Stdout, "  type <Name> [base ...] [--slots a,b] [--dict]   define a type")
	fmt.Fprintln(os.Stdout, "  new <var> <Type> [arg ...]                      construct an instance")
	fmt.Fprintln(os.Stdout, "  get <var> <attr> | set <var> <attr> <value> | del <var> <attr>")
	fmt.Fprintln(os.Stdout, "  call <var> <method> [arg ...]")
	fmt.Fprintln(os.Stdout, "  gen <var> <n> | iter <var> <source> | next <var> | close <var>")
	fmt.Fprintln(os.Stdout, "  mro <Type> | id <var> | types | classes | vars")
	fmt.Fprintln(os.Stdout, "  :quit")
}
