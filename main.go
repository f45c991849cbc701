package main

import (
	"log"

	"github.com/satops/gsched/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
