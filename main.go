package main

import (
	"fmt"
	"os"

	cmd "github.com/fwctl/fwctl/cmd/fwctl"
)

func main() {
	err := cmd.Fwctl.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
