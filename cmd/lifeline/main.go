// Command lifeline runs the blood-supply matching and forecasting service
// and its maintenance tasks.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
