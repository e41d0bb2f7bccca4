package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/zurustar/bangla/pkg/app"
)

func main() {
	application := app.New(os.Stdout, os.Stderr)
	if err := application.Run(context.Background(), os.Args[1:]); err != nil {
		// 詳細はアプリケーション側で表示済み
		if !errors.Is(err, app.ErrScriptFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
