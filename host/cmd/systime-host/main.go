// systime-host talks to a board running the time firmware: it reads and sets
// the board clock, monitors its drift against the host, and can simulate a
// board entirely on the host
package main

func main() {
	Execute()
}
