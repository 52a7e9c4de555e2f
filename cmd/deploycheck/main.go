package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/albert-sebastian93/wanderlust/pkg/deploy"
)

func main() {
	var (
		composePath = flag.String("compose", "docker-compose.yml", "Path to the compose file")
		envPath     = flag.String("env", ".env.sample", "Path to the sample env file; empty skips the env checks")
		dataDir     = flag.String("data-dir", "data", "Directory expected to hold the seed file; empty skips the check")
	)
	flag.Parse()

	violations, err := deploy.Check(*composePath, *envPath, *dataDir)
	if err != nil {
		log.Fatalf("Deploy check failed to run: %v", err)
	}

	if len(violations) == 0 {
		fmt.Println("deploy topology OK")
		return
	}

	for _, v := range violations {
		fmt.Println(v)
	}
	fmt.Printf("%d violation(s) found\n", len(violations))
	os.Exit(1)
}
