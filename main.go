package main

import (
	"fmt"
	"os"
	"strings"

	"inkpost/service"
)

const CliVersion = "1.0.0"

// exit is replaced in tests.
var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches os.Args to the version command or to the service
// commands and exits with their status.
func RealMain() {
	if len(os.Args) < 2 {
		service.PrintHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	if cmd == "version" {
		fmt.Printf("inkpost version %s\n", CliVersion)
		return
	}

	args := append([]string{cmd}, os.Args[2:]...)
	if code := service.HandleCommand(args); code != 0 {
		exit(code)
	}
}
