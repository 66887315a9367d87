package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hanpama/queryflow/internal/schema"
)

const rootUsage = `queryflow — scheduler-driven GraphQL engine & tools

USAGE:
  queryflow <command> [flags]

COMMANDS:
  check            Merge & validate GraphQL SDL
  render           Print the merged schema as canonical SDL
  help             Show help for any command
`

const checkUsage = `check FLAGS:
  -schema <path>   SDL file or directory of .graphql files. Repeatable (required)
  (Validation always runs; exits non-zero on errors)
`

const renderUsage = `render FLAGS:
  -schema <path>   SDL file or directory of .graphql files. Repeatable (required)
  -out <file>      Write rendered SDL to file (default: stdout)
`

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := run(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("command failed")
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("queryflow", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "check":
		return cmdCheck(cmdArgs)
	case "render":
		return cmdRender(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "check":
		fmt.Print(checkUsage)
	case "render":
		fmt.Print(renderUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func cmdCheck(args []string) error {
	var paths stringListFlag
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.Var(&paths, "schema", "SDL file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, checkUsage)
		return err
	}
	if len(paths) == 0 {
		fmt.Fprint(os.Stderr, checkUsage)
		return fmt.Errorf("-schema is required")
	}

	if _, err := loadSchema(paths); err != nil {
		return err
	}
	fmt.Println("schema is valid")
	return nil
}

func cmdRender(args []string) error {
	var paths stringListFlag
	outFile := ""
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.Var(&paths, "schema", "SDL file or directory")
	fs.StringVar(&outFile, "out", outFile, "Write rendered SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, renderUsage)
		return err
	}
	if len(paths) == 0 {
		fmt.Fprint(os.Stderr, renderUsage)
		return fmt.Errorf("-schema is required")
	}

	sch, err := loadSchema(paths)
	if err != nil {
		return err
	}
	sdl := schema.Render(sch)
	if outFile == "" {
		fmt.Print(sdl)
		return nil
	}
	return os.WriteFile(outFile, []byte(sdl), 0644)
}

// loadSchema reads every named SDL file (directories contribute their
// .graphql files, sorted) and builds the merged schema.
func loadSchema(paths []string) (*schema.Schema, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.graphql"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .graphql files found")
	}

	var merged strings.Builder
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		merged.Write(content)
		merged.WriteString("\n")
	}
	sch, err := schema.BuildFromSDL(merged.String())
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return sch, nil
}
