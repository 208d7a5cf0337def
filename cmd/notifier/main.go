package main

import (
	"github.com/merchkit/storefront/internal/app"
	"github.com/merchkit/storefront/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewNotifierApp().Run()
}
