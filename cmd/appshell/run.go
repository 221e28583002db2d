package main

import (
	"github.com/ReEnvision-AI/appshell/app/lifecycle"
	"github.com/ReEnvision-AI/appshell/app/shell"
)

var runShell = func() {
	lifecycle.Run(shell.Main)
}
