// Command dia-gencache precompiles a dictionary search path into a
// single cache file, the Go analogue of the original diafuzzer tool's
// generate-cache.py.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/blorticus-go/diafuzzer/dictionary"
)

type cliArgs struct {
	applications string
	searchPath   string
	out          string
	verify       bool
}

func parseArgs() *cliArgs {
	a := &cliArgs{}
	flag.StringVar(&a.applications, "applications", "", "comma-separated list of .dia application files to load")
	flag.StringVar(&a.searchPath, "search-path", "./specs", "comma-separated list of directories searched for @inherits modules")
	flag.StringVar(&a.out, "out", "dictionary.cache", "path to write the precompiled cache to")
	flag.BoolVar(&a.verify, "verify", false, "after writing, read the cache back and compare its .dia round-trip rendering against the source")
	flag.Parse()
	return a
}

func main() {
	args := parseArgs()
	if args.applications == "" {
		dieOnError(fmt.Errorf("-applications is required"))
	}

	paths := strings.Split(args.applications, ",")
	searchPath := strings.Split(args.searchPath, ",")

	dir, err := dictionary.LoadDirectory(paths, dictionary.WithSearchPath(searchPath))
	dieOnError(err)

	f, err := os.Create(args.out)
	dieOnError(err)
	defer f.Close()

	dieOnError(dictionary.WriteCache(dir, f))

	fmt.Printf("wrote cache for %d application(s) to %s\n", len(dir.Applications()), args.out)

	if args.verify {
		verifyCache(args.out, dir)
	}
}

func verifyCache(path string, original *dictionary.Directory) {
	f, err := os.Open(path)
	dieOnError(err)
	defer f.Close()

	reloaded, err := dictionary.ReadCache(f)
	dieOnError(err)

	for i, app := range original.Applications() {
		against := reloaded.Applications()[i]
		if app.String() != against.String() {
			dieOnError(fmt.Errorf("cache round-trip mismatch for application %q", app.Name))
		}
	}

	fmt.Println("cache verified: round-trips to the same .dia rendering as the source")
}

func dieOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
