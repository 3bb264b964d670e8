package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/goliatone/go-formtree/pkg/formconfig"
	"github.com/goliatone/go-formtree/pkg/options"
)

type violation struct {
	file     string
	location string
	message  string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("formtree-lint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [paths...]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(fs.Output(), "\nLint form configs for references and patterns that only fail at runtime.\n")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{"forms"}
	}

	files, err := expand(paths)
	if err != nil {
		fmt.Fprintf(stderr, "lint: %v\n", err)
		return 1
	}

	var violations []violation
	for _, path := range files {
		cfg, err := formconfig.LoadFile(path)
		if err != nil {
			violations = append(violations, violation{file: path, location: "config", message: err.Error()})
			continue
		}
		violations = append(violations, lintConfig(path, cfg)...)
	}

	if len(violations) == 0 {
		fmt.Fprintf(stdout, "%d config(s) ok\n", len(files))
		return 0
	}
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			if violations[i].location == violations[j].location {
				return violations[i].message < violations[j].message
			}
			return violations[i].location < violations[j].location
		}
		return violations[i].file < violations[j].file
	})
	for _, v := range violations {
		fmt.Fprintf(stderr, "%s: %s -> %s\n", v.file, v.location, v.message)
	}
	return 1
}

// expand turns directories into the config files they contain.
func expand(paths []string) ([]string, error) {
	var out []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, entry os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			switch strings.ToLower(filepath.Ext(p)) {
			case ".json", ".yaml", ".yml":
				if !entry.IsDir() {
					out = append(out, p)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

type linter struct {
	file     string
	refs     *formconfig.References
	resolver *options.Resolver
	owners   map[string]string
	result   []violation
}

func lintConfig(file string, cfg *formconfig.FormConfig) []violation {
	l := &linter{
		file:     file,
		refs:     cfg.References(),
		resolver: options.NewResolver(nil),
		owners:   make(map[string]string),
	}
	l.spec(&cfg.Spec, nil)
	for _, id := range sortedKeys(cfg.Validations) {
		rule := cfg.Validations[id]
		l.rule(appendPath([]string{"validations", id}, "rule"), rule.Rule)
	}
	return l.result
}

func (l *linter) add(path []string, format string, args ...any) {
	l.result = append(l.result, violation{
		file:     l.file,
		location: formatLocation(path),
		message:  fmt.Sprintf(format, args...),
	})
}

func (l *linter) spec(spec *formconfig.Spec, path []string) {
	if spec == nil {
		return
	}
	for _, id := range spec.Keys() {
		attr := spec.Attributes[id]
		if attr == nil {
			continue
		}
		next := appendPath(path, id)
		location := formatLocation(next)
		if owner, seen := l.owners[id]; seen {
			l.add(next, "attribute id %q is shadowed by %s; conditions resolve to the first one", id, owner)
		} else {
			l.owners[id] = location
		}

		l.rule(appendPath(next, "visibility"), attr.Visibility)
		l.rule(appendPath(next, "editableLogic"), attr.EditableLogic)
		for i, ref := range attr.Validations {
			if ref.Rule != nil {
				l.rule(appendPath(next, fmt.Sprintf("validations.%d", i)), ref.Rule.Rule)
			}
		}
		if attr.Options != nil && attr.Options.Type == formconfig.OptionsDynamic {
			if err := l.resolver.Compile(attr.Options.URL); err != nil {
				l.add(appendPath(next, "options"), "%v", err)
			}
		}
		l.spec(attr.Spec, next)
	}
}

func (l *linter) rule(path []string, rule *formconfig.AccessRule) {
	if rule == nil {
		return
	}
	if rule.Readonly && rule.AllWaysEditable {
		l.add(path, "readonly and allWaysEditable are both set; readonly wins")
	}
	for g, group := range rule.ConditionGroups {
		for c, cond := range group {
			at := appendPath(path, fmt.Sprintf("conditionGroups.%d.%d", g, c))
			switch cond.SourceType {
			case formconfig.SourceSelf, formconfig.SourceUserAttribute:
			case formconfig.SourceFormAttribute:
				if _, ok := l.refs.Attribute(cond.Source); !ok {
					l.add(at, "source %q is not an attribute of this form", cond.Source)
				}
			default:
				l.add(at, "unknown source type %q", cond.SourceType)
			}
			if cond.ValueSource != "" {
				if _, ok := l.refs.Attribute(cond.ValueSource); !ok {
					l.add(at, "valueSource %q is not an attribute of this form", cond.ValueSource)
				}
			}
			if cond.Operator == formconfig.OpRegex && cond.ValueSource == "" {
				pattern, _ := cond.Value.(string)
				if _, err := regexp.Compile(pattern); err != nil {
					l.add(at, "invalid pattern %q: %v", pattern, err)
				}
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func appendPath(path []string, segment string) []string {
	next := append([]string(nil), path...)
	next = append(next, segment)
	return next
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
