package main

import (
	"github.com/joho/godotenv"

	"github.com/MeKo-Tech/floorscan/cmd/floorscan/cmd"
)

func main() {
	// Local .env files may carry TESSDATA_PREFIX or FLOORSCAN_* vars;
	// a missing file is not an error.
	_ = godotenv.Load()

	cmd.Execute()
}
