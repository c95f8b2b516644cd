package main

import (
	"github.com/zostay/go-mdmail/cmd/mdmail/cmd"
)

func main() {
	cmd.Execute()
}
