package main

import (
	"os"

	gts "github.com/CovidOH/gettheshot-scrapers/golang"
)

func main() {
	if err := gts.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
