package main

import (
	"log"

	"github.com/anoixa/image-craft/cmd"
	"github.com/anoixa/image-craft/config"
)

func main() {
	log.Printf("image craft %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
