package main

import (
	"fmt"
	"os"

	"github.com/dewprince2005/Private-Blockchain-Implementation/backend/pkg/fabricclient"
)

func main() {
	root := newRootCmd(func(opts fabricclient.Options) (Gateway, error) {
		return fabricclient.NewClient(opts)
	})
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
