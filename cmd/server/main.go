package main

import "github.com/Togather-Foundation/listings/cmd/server/cmd"

func main() {
	cmd.Execute()
}
