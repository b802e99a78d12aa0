// Command onesdk is a reference CLI driving the SDK runtime against a
// super.json configuration: performing use cases, validating configuration,
// and printing its JSON Schema.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
