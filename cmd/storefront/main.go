package main

import "github.com/pinobite/storefront/internal/cmd"

func main() {
	cmd.Execute()
}
