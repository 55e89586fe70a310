package main

import "seatmap-scraper/cmd"

func main() {
	cmd.Execute()
}
