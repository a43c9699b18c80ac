// Command consolectl administers the asset console from the shell: it runs
// the API, seeds approval configurations, exports module workbooks and
// records workflow actions.
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
