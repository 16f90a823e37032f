package main

import (
	"log"
	"os"

	"github.com/anicoll/buttonplus-integration/cmd"
)

func main() {
	if err := cmd.NewApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
