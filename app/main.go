package main

import (
	"github.com/ReEnvision-AI/appshell/app/lifecycle"
	"github.com/ReEnvision-AI/appshell/app/shell"
)

// Compile with the following to get rid of the cmd popup on windows
// go build -ldflags="-H windowsgui"

func main() {
	lifecycle.Run(shell.Main)
}
