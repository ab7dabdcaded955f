package main

import (
	"ghscraper/cmd/ghscraper/commands"
	"ghscraper/internal/components/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
