package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/recipe-journal/tests/helpers"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	usage := `
Run the recipe-journal testcontainers (database, optional Redis, Authorizer and
the service itself) with the environment variables from the .env file.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file

example
  testcontainers -f /path/to/something/.env
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	started := make(chan *helpers.TestContainers, 1)
	go func() {
		testContainers, err := helpers.CreateAllTestContainers(nil)
		if err != nil {
			log.Fatalf("Failed to create test containers: %v\n", err)
		}
		started <- testContainers
	}()

	var testContainers *helpers.TestContainers
	select {
	case testContainers = <-started:
		log.Printf("Containers running, press Ctrl-C to terminate\n")
		sig := <-sigs
		log.Printf("\nReceived signal: %v, terminating test containers...\n", sig)
	case sig := <-sigs:
		log.Printf("\nReceived signal: %v before startup completed\n", sig)
	}
	if testContainers != nil {
		testContainers.Terminate(nil)
	}
}
