package cmd

import "github.com/pterm/pterm"

// printSeparator prints a green separator line to the console.
func printSeparator() {
	pterm.Println(pterm.Green("----------------------------------------"))
}
