// Command audren replays guest sessions against the effect renderer.
package main

import "github.com/sarchlab/audren/cmd/audren/cmd"

func main() {
	cmd.Execute()
}
