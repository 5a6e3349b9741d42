package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.bug.st/serial/enumerator"
)

type PortsCommand struct{}

func (c *PortsCommand) Execute(args []string) error {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		// Fall back to plain names where USB details are unavailable.
		for _, p := range listPorts() {
			fmt.Println(p)
		}
		return nil
	}
	if len(details) == 0 {
		fmt.Println("No serial ports found.")
		return nil
	}

	headStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(details))
	for _, d := range details {
		usb := ""
		if d.IsUSB {
			usb = fmt.Sprintf("%s:%s %s", d.VID, d.PID, d.SerialNumber)
		}
		rows = append(rows, []string{d.Name, usb})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Port", "USB").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headStyle
			}
			return cellStyle
		})
	fmt.Println(t.Render())
	return nil
}
