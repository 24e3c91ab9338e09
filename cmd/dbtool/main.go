package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/cli"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/db"
)

func main() {
	_ = godotenv.Load()

	if err := cli.NewRootCommand(db.Connect, nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
