// Command gossipsim runs the gossip consensus simulator: build a random
// topology, seed initial positions, and gossip until a supermajority
// forms or the event queue drains.
package main

import "gossipsim/cmd/gossipsim/cmd"

func main() {
	cmd.Execute()
}
