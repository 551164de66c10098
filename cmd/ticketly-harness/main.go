package main

import (
	"github.com/ticketly/system-tests/cmd/ticketly-harness/cmd"
	"github.com/ticketly/system-tests/internal/common"
)

func main() {
	common.ConfigureCommandLineLogging()
	cmd.Execute()
}
