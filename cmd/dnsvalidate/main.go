// Command dnsvalidate sends a single query through the validating
// resolver core and prints the result, or dumps the trust anchors a
// config file would load. It exists to exercise the library from the
// command line without standing up a full server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
