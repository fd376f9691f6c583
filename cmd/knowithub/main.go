package main

import (
	"context"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	app.Run(context.Background(), bootstrap.Hooks)
}
