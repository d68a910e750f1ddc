package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/writers"
	cp "github.com/otiai10/copy"
)

// WriteFiles writes the rendered Terraform files to the destination
// directory, the console, or both.
func WriteFiles(files map[string]string, dest string, console bool) error {
	if dest != "" {
		writer := writers.NewFileWriter(dest)
		_, err := writer.Write(files)
		if err != nil {
			return err
		}
	}

	if console || dest == "" {
		consoleWriter := writers.ConsoleWriter{}
		output, err := consoleWriter.Write(files)
		if err != nil {
			return err
		}
		fmt.Println(output)
	}

	return nil
}

// StageFixture copies the fixture directory to the destination before the
// rendered files are written over it. This carries along supporting files
// like tfvars or README files that the renderer does not regenerate. State
// and lock files are never copied.
func StageFixture(fixtureDir string, dest string) error {
	if dest == "" {
		return nil
	}

	if err := os.MkdirAll(dest, os.ModePerm); err != nil {
		return err
	}

	return cp.Copy(fixtureDir, dest, cp.Options{
		Skip: func(srcinfo os.FileInfo, src string, destination string) (bool, error) {
			return strings.HasSuffix(src, ".state.json") || strings.HasSuffix(src, ".lock"), nil
		},
	})
}
