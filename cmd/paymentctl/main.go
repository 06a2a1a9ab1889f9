package main

import (
	"os"

	"payment_installments/internal/adapter/cli"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	os.Exit(cli.Execute())
}
