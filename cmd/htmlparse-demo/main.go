// Command htmlparse-demo reads an HTML document from stdin and prints
// the resulting tree outline.
package main

import (
	"fmt"
	"io"
	"os"

	html5parser "github.com/jsimonetti/html5parser"
	"github.com/jsimonetti/html5parser/sink/reftree"
)

func main() {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "htmlparse-demo:", err)
		os.Exit(1)
	}

	tree := reftree.New()
	p := html5parser.New(html5parser.WithTreeHandler(tree))
	if err := p.ParseChunk(data); err != nil {
		fmt.Fprintln(os.Stderr, "htmlparse-demo:", err)
		os.Exit(1)
	}
	if err := p.Completed(); err != nil {
		fmt.Fprintln(os.Stderr, "htmlparse-demo:", err)
		os.Exit(1)
	}

	fmt.Print(tree.Root.String())
}
