// Command iolib reads and writes tabular data across BigQuery, object
// storage, Drive, Sheets and FTP.
package main

import (
	"os"

	"iolib/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
