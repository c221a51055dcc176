package main

import (
	"log"

	"nonprofit-platform/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
