// Command memctlsim runs synthetic workloads against the memory controller
// model.
package main

func main() {
	Execute()
}
