package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/photo-cycler/backend/internal/cli"
)

func main() {
	cmd := cli.NewPhotoCyclerCommand()
	cmd.SilenceErrors = true

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		logrus.WithError(err).Fatal("photo-cycler failed")
	}
}
