// Package main is the entry point for the Robin AI group chat responder.
package main

func main() {
	Execute()
}
