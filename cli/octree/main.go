// Package main is the octree CLI command itself.
package main

import (
	"log"
	"os"

	"go.viam.com/meshoctree/cli"
)

func main() {
	if err := cli.NewApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
