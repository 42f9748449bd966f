package main

import "github.com/SAP-F-2025/training-service/cmd"

func main() {
	cmd.Execute()
}
