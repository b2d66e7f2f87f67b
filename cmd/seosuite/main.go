package main

import (
	"seosuite/cmd/handlers"
	"seosuite/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
