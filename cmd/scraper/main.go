// Package main provides the entry point for the site scraper CLI.
package main

func main() {
	Execute()
}
