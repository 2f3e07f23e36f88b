// The main package for the jobscrawler executable.
package main

import (
	"github.com/rolehounds/jobscrawler/cmd"
)

// main defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
