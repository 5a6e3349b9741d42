package main

import (
	"fmt"
	"os"
)

type ScanCommand struct {
	BusOptions

	From int `long:"from" default:"0" description:"First ID to scan"`
	To   int `long:"to" default:"253" description:"Last ID to scan"`
}

func (c *ScanCommand) Execute(args []string) error {
	cfg := c.mustLoad()

	fmt.Printf("Scanning IDs %d-%d on %s at %d baud...\n", c.From, c.To, cfg.Port, cfg.BaudRate)
	found, missing, err := scanBus(cfg, c.From, c.To)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning bus: %v\n", err)
		os.Exit(1)
	}
	if len(found) == 0 {
		fmt.Println("No actuators answered.")
		return nil
	}

	fmt.Println(renderFound(found, cfg.IDs))
	for _, id := range missing {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Configured actuator #%d did not answer", id)))
	}
	return nil
}
