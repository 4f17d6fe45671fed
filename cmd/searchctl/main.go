// searchctl runs the query pipeline offline: normalization, spelling,
// synonyms, navigation search and table filtering.
package main

import (
	"os"

	"github.com/kailas-cloud/storesearch/cmd/searchctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
