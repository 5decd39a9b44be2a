// Command dia-dump reads a file of concatenated, length-prefixed
// Diameter messages (as captured by a baseline run) and prints the
// decoded tree of each, optionally annotated with dictionary names.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blorticus-go/diafuzzer/dictionary"
	"github.com/blorticus-go/diafuzzer/replay"
	"github.com/blorticus-go/diafuzzer/tagger"
)

type cliArgs struct {
	capturePath  string
	applications string
	searchPath   string
}

func parseArgs() *cliArgs {
	a := &cliArgs{}
	flag.StringVar(&a.capturePath, "capture", "", "path to a file of concatenated length-prefixed Diameter messages")
	flag.StringVar(&a.applications, "applications", "", "comma-separated .dia application files to tag messages against (optional)")
	flag.StringVar(&a.searchPath, "search-path", "./specs", "comma-separated directories searched for @inherits modules")
	flag.Parse()
	return a
}

func main() {
	args := parseArgs()
	if args.capturePath == "" {
		dieOnError(fmt.Errorf("-capture is required"))
	}

	var dir *dictionary.Directory
	if args.applications != "" {
		var err error
		dir, err = dictionary.LoadDirectory(strings.Split(args.applications, ","),
			dictionary.WithSearchPath(strings.Split(args.searchPath, ",")))
		dieOnError(err)
	}

	f, err := os.Open(args.capturePath)
	dieOnError(err)
	defer f.Close()

	reader := replay.NewMessageStreamReader(f)

	count := 0
	for {
		msg, err := reader.ReadNextMessage()
		if errors.Is(err, io.EOF) {
			break
		}
		dieOnError(err)

		if dir != nil {
			if tagErr := tagger.Tag(msg, dir); tagErr != nil {
				fmt.Fprintf(os.Stderr, "warning: %s\n", tagErr)
			}
		}

		fmt.Println(renderMessage(msg))
		count++
	}

	fmt.Printf("%d message(s)\n", count)
}

func dieOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
