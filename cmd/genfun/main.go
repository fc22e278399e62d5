package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/funvibe/genfun/internal/dispatch"
	"github.com/funvibe/genfun/internal/manifest"
	"github.com/funvibe/genfun/internal/term"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  genfun describe [--json] [--manifest <path>] [name...]")
	fmt.Fprintln(os.Stderr, "  genfun check [--manifest <path>]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "describe  print the generic functions a manifest declares, with their methods")
	fmt.Fprintln(os.Stderr, "check     parse and validate the manifest, printing nothing on success")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "describe":
		os.Exit(runDescribe(os.Args[2:]))
	case "check":
		os.Exit(runCheck(os.Args[2:]))
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "genfun: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func parseCommon(args []string) (manifestPath string, asJSON bool, rest []string, err error) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--json":
			asJSON = true
		case "--manifest", "-m":
			if i+1 >= len(args) {
				return "", false, nil, fmt.Errorf("%s requires a path", args[i])
			}
			i++
			manifestPath = args[i]
		default:
			if strings.HasPrefix(args[i], "-") {
				return "", false, nil, fmt.Errorf("unknown flag %q", args[i])
			}
			rest = append(rest, args[i])
		}
	}
	return manifestPath, asJSON, rest, nil
}

func loadTable(manifestPath string) (*dispatch.Table, error) {
	t := dispatch.NewTable()
	if manifestPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		manifestPath, err = manifest.Find(wd)
		if err != nil {
			return nil, err
		}
		if manifestPath == "" {
			return t, nil
		}
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	if err := m.Apply(t); err != nil {
		return nil, err
	}
	return t, nil
}

func runCheck(args []string) int {
	manifestPath, _, _, err := parseCommon(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "genfun: %v\n", err)
		return 2
	}
	if _, err := loadTable(manifestPath); err != nil {
		fmt.Fprintf(os.Stderr, "genfun: %v\n", err)
		return 1
	}
	return 0
}

func runDescribe(args []string) int {
	manifestPath, asJSON, names, err := parseCommon(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "genfun: %v\n", err)
		return 2
	}
	t, err := loadTable(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "genfun: %v\n", err)
		return 1
	}

	var infos []dispatch.GenericInfo
	if len(names) == 0 {
		infos = t.DescribeAll()
	} else {
		for _, name := range names {
			info, ok := t.Describe(name)
			if !ok {
				fmt.Fprintf(os.Stderr, "genfun: undefined generic function '%s'\n", name)
				return 1
			}
			infos = append(infos, info)
		}
	}

	if asJSON {
		out, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "genfun: %v\n", err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}
	for _, info := range infos {
		printInfo(info)
	}
	return 0
}

func printInfo(info dispatch.GenericInfo) {
	header := info.Name
	if len(info.Params) > 0 {
		header += "(" + strings.Join(info.Params, ", ") + ")"
	}
	fmt.Println(term.Bold(header))
	if info.Documentation != "" {
		fmt.Printf("  %s\n", term.Dim(info.Documentation))
	}
	if len(info.Precedence) > 0 {
		fmt.Printf("  precedence: %s\n", strings.Join(info.Precedence, " > "))
	}
	if !info.Cached {
		fmt.Printf("  dispatch: %s\n", term.Dim("direct (nothing discriminates)"))
	}
	if len(info.Methods) == 0 {
		fmt.Printf("  %s\n", term.Dim("no methods"))
	}
	for _, m := range info.Methods {
		line := "  method"
		if len(m.Qualifiers) > 0 {
			line += " " + term.Fg(33, strings.Join(m.Qualifiers, " "))
		}
		line += " (" + strings.Join(m.Specializers, ", ") + ")"
		var ctxNames []string
		for ctx := range m.Contexts {
			ctxNames = append(ctxNames, ctx)
		}
		sort.Strings(ctxNames)
		for _, ctx := range ctxNames {
			line += fmt.Sprintf(" @%s=%s", ctx, m.Contexts[ctx])
		}
		fmt.Println(line)
	}
	fmt.Println()
}
