// wordvec serves word embedding lookups and similarity queries, and converts
// vocabularies between the supported artifact formats.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
