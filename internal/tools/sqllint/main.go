// Command sqllint checks that every inline SQL constant starts with a
// "--sql <uuid>" audit marker. Run it against internal/ before committing
// new queries:
//
//	go run ./internal/tools/sqllint ./internal/sqlinline
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	sqlKeyword = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with)\b`)
	auditLine  = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

func main() {
	flag.Parse()
	roots := flag.Args()
	if len(roots) == 0 {
		roots = []string{"./internal/sqlinline"}
	}

	failed := false
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			bad, err := checkFile(path)
			if err != nil {
				return err
			}
			for _, b := range bad {
				failed = true
				fmt.Fprintf(os.Stderr, "%s: %s lacks a --sql <uuid> marker\n", b.pos, b.name)
			}
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
			os.Exit(1)
		}
	}
	if failed {
		os.Exit(1)
	}
}

type unmarked struct {
	pos  string
	name string
}

// checkFile reports string constants that look like SQL but carry no marker.
func checkFile(path string) ([]unmarked, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, 0)
	if err != nil {
		return nil, err
	}

	var bad []unmarked
	ast.Inspect(file, func(n ast.Node) bool {
		spec, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		for i, value := range spec.Values {
			lit, ok := value.(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				continue
			}
			text := literalText(lit.Value)
			if !sqlKeyword.MatchString(text) {
				continue
			}
			if auditLine.MatchString(headerLine(text)) {
				continue
			}
			name := "const"
			if i < len(spec.Names) && spec.Names[i] != nil {
				name = spec.Names[i].Name
			}
			bad = append(bad, unmarked{pos: fset.Position(lit.Pos()).String(), name: name})
		}
		return true
	})
	return bad, nil
}

func headerLine(s string) string {
	s = strings.TrimLeft(s, " \t\r\n")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, " \t\r")
}

func literalText(raw string) string {
	if strings.HasPrefix(raw, "`") {
		return strings.Trim(raw, "`")
	}
	s, err := strconv.Unquote(raw)
	if err != nil {
		return ""
	}
	return s
}
