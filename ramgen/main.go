// Command ramgen generates Verilog memory modules, their testbenches and
// verification environments, and runs a behavioural memory simulator.
package main

import "github.com/sarchlab/ramgen/ramgen/cmd"

func main() {
	cmd.Execute()
}
