package main

import (
	"os"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/app"
)

func main() {
	if err := app.BuildRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
