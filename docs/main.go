package main

import (
	"log"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/photo-cycler/backend/internal/cli"
)

func main() {
	err := doc.GenMarkdown(cli.NewPhotoCyclerCommand(), os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
}
