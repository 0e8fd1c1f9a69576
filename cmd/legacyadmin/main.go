package main

import (
	"log"

	tool "github.com/themanaworld/api/internal/tools/legacyadmin"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
