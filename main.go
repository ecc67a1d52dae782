package main

import "github.com/paul5577/AI-analysis-of-scoliosis/cmd"

func main() {
	cmd.Execute()
}
