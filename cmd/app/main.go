package main

import (
    "os"

    "github.com/local/pdfplanner/internal/cli"
)

func main() {
    os.Exit(cli.Execute())
}
