package main

import (
	"log"
	"os"

	"github.com/chordcraft/core/cmd/chordcraft/commands"
)

// @title ChordCraft API
// @version 1.0
// @description Store chord progressions and guitar chord shapes

// @host localhost:8000
// @BasePath /api

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
