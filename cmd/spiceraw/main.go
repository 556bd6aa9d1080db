package main

import "github.com/spicetools/spiceraw/cmd/spiceraw/cmd"

func main() {
	cmd.Execute()
}
