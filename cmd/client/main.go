package main

import (
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"drawpoker/client"
)

const serverAddr = "localhost:31415"

func main() {
	handler := pterm.NewSlogHandler(&pterm.DefaultLogger)
	logger := slog.New(handler)
	slog.SetDefault(logger)

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Draw", pterm.FgLightRed.ToStyle()),
		putils.LettersFromStringWithStyle("Poker", pterm.FgDarkGray.ToStyle()),
	).Render()

	c, err := client.Dial(serverAddr, logger)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}

	if err := c.Run(); err != nil {
		logger.Error("session ended", "error", err)
		os.Exit(1)
	}
}
