package main

import (
	"context"

	"github.com/ewilliams-labs/cadence/internal/cli"
)

func main() {
	cli.Execute(context.Background())
}
