// Command validate-data checks the integrity of the embedded reference
// datasets (or a local override directory).
//
// Usage:
//
//	go run ./cmd/validate-data [data-dir]
//
// With a data-dir argument, files under it shadow the embedded datasets,
// which is how edited datasets are verified before being re-embedded.
package main

import (
	"fmt"
	"os"

	"github.com/countrykit/countries"
)

func main() {
	var opts []countries.Option
	if len(os.Args) > 1 {
		opts = append(opts, countries.WithDataDir(os.Args[1]))
		fmt.Printf("Validating datasets with override directory %s...\n", os.Args[1])
	} else {
		fmt.Println("Validating embedded datasets...")
	}

	svc := countries.New(opts...)
	if err := svc.ValidateData(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Datasets validated successfully.")
}
