package main

import (
	"context"
	"fmt"
)

type RelaxCommand struct {
	BusOptions
}

func (c *RelaxCommand) Execute(args []string) error {
	cfg := c.mustLoad()

	chain := openChain(cfg)
	defer chain.Close()

	failed := 0
	for _, r := range chain.DisableAll(context.Background()) {
		if r.Err != nil {
			failed++
		}
		fmt.Println(torqueLine(r, false))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d actuators could not be relaxed", failed, len(cfg.IDs))
	}
	return nil
}
