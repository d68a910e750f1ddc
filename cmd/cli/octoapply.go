package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/args"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/entry"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/logger"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/output"
	"go.uber.org/zap"
)

var Version = "development"

func main() {
	logger.BuildLogger()

	parseArgs, argsErrors, err := args.ParseArgs(os.Args[1:])

	if errors.Is(err, flag.ErrHelp) {
		zap.L().Error(argsErrors)
		os.Exit(2)
	} else if err != nil {
		zap.L().Error("got error: " + err.Error())
		zap.L().Error("argsErrors:\n" + argsErrors)
		os.Exit(1)
	}

	if parseArgs.Version {
		zap.L().Info("Version: " + Version)
		os.Exit(0)
	}

	result, err := entry.Entry(context.Background(), parseArgs)

	if err != nil {
		errorExit(err.Error())
	}

	if parseArgs.Destination != "" {
		if err := output.StageFixture(parseArgs.FixturePath, parseArgs.Destination); err != nil {
			errorExit(err.Error())
		}
	}

	err = output.WriteFiles(result.Files, parseArgs.Destination, parseArgs.Console)

	if err != nil {
		errorExit(err.Error())
	}
}

func errorExit(message string) {
	if len(message) == 0 {
		message = "No error message provided"
	}
	zap.L().Error(message)
	os.Exit(1)
}
