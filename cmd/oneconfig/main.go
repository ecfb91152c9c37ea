package main

import (
	"fmt"

	"github.com/polyfrost/oneconfig/internal/cli"
	"github.com/polyfrost/oneconfig/internal/utils"
)

// main is the entry point for the oneconfig command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(utils.DefaultLogLevel)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
