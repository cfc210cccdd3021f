package main

import (
	"log"

	"github.com/mockmate/mockmate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
