package args

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Arguments struct {
	ConfigFile    string
	ConfigPath    string
	Version       bool
	Url           string
	ApiKey        string
	Space         string
	FixturePath   string
	Variables     StringSliceArgs
	VarFiles      StringSliceArgs
	StateFile     string
	Apply         bool
	Destination   string
	Console       bool
	Parallelism   int
	LenientSchema bool
}

// Online is true when the arguments allow queries against a live Octopus
// instance. Without a url and api key the tool runs offline, returning
// unknown values for data source lookups.
func (arguments *Arguments) Online() bool {
	return arguments.Url != "" && arguments.ApiKey != ""
}

type StringSliceArgs []string

func (i *StringSliceArgs) String() string {
	return "A collection of strings passed as arguments"
}

func (i *StringSliceArgs) Set(value string) error {
	trimmed := strings.TrimSpace(value)

	if len(trimmed) == 0 {
		return nil
	}

	*i = append(*i, trimmed)
	return nil
}

func ParseArgs(args []string) (Arguments, string, error) {
	flags := flag.NewFlagSet("octoapply", flag.ContinueOnError)
	var buf bytes.Buffer
	flags.SetOutput(&buf)

	arguments := Arguments{}

	flags.StringVar(&arguments.ConfigFile, "configFile", "octoapply", "The name of the configuration file to use. Do not include the extension. Defaults to octoapply")
	flags.StringVar(&arguments.ConfigPath, "configPath", ".", "The path of the configuration file to use. Defaults to the current directory")
	flags.BoolVar(&arguments.Version, "version", false, "Print the version")
	flags.StringVar(&arguments.Url, "url", "", "The Octopus URL e.g. https://myinstance.octopus.app")
	flags.StringVar(&arguments.Space, "space", "", "The Octopus space name or ID")
	flags.StringVar(&arguments.ApiKey, "apiKey", "", "The Octopus api key")
	flags.StringVar(&arguments.FixturePath, "fixture", ".", "The directory containing the Terraform configuration files to plan and apply")
	flags.Var(&arguments.Variables, "var", "The value of an input variable, in the format \"name=value\". Can be specified multiple times.")
	flags.Var(&arguments.VarFiles, "varFile", "A file containing input variable values as HCL attributes. Can be specified multiple times; later files override earlier ones.")
	flags.StringVar(&arguments.StateFile, "state", "octoapply.state.json", "The path of the state file recording the ids of previously applied resources")
	flags.BoolVar(&arguments.Apply, "apply", false, "Apply the plan to the Octopus instance. Without this option only the plan is calculated and printed.")
	flags.StringVar(&arguments.Destination, "dest", "", "The directory to place the rendered Terraform files in")
	flags.BoolVar(&arguments.Console, "console", false, "Dump the rendered Terraform files to the console")
	flags.IntVar(&arguments.Parallelism, "parallelism", 10, "The maximum number of concurrent operations while applying a plan")
	flags.BoolVar(&arguments.LenientSchema, "lenientSchema", false, "Skip validation of blocks whose type has no registered schema instead of failing. Attributes of recognised types are always validated.")

	err := flags.Parse(args)

	if err != nil {
		return Arguments{}, buf.String(), err
	}

	err = overrideArgs(flags, arguments.ConfigPath, arguments.ConfigFile)

	if err != nil {
		return Arguments{}, buf.String(), err
	}

	// The fixture directory can also be passed as the first positional
	// argument, matching the terraform CLI convention.
	if flags.NArg() != 0 {
		arguments.FixturePath = flags.Arg(0)
	}

	if arguments.Url == "" {
		arguments.Url = os.Getenv("OCTOPUS_CLI_SERVER")
	}

	if arguments.ApiKey == "" {
		arguments.ApiKey = os.Getenv("OCTOPUS_CLI_API_KEY")
	}

	if arguments.Apply && !arguments.Online() {
		return Arguments{}, buf.String(), errors.New("the -apply option requires -url and -apiKey (or the OCTOPUS_CLI_SERVER and OCTOPUS_CLI_API_KEY environment variables)")
	}

	return arguments, buf.String(), nil
}

// Inspired by https://github.com/carolynvs/stingoftheviper
// Viper needs manual handling to implement reading settings from env vars, config files, and from the command line
func overrideArgs(flags *flag.FlagSet, configPath string, configFile string) error {
	v := viper.New()

	// Set the base name of the config file, without the file extension.
	v.SetConfigName(configFile)

	// Set as many paths as you like where viper should look for the
	// config file. We are only looking in the current working directory.
	v.AddConfigPath(configPath)

	// Attempt to read the config file, gracefully ignoring errors
	// caused by a config file not being found. Return an error
	// if we cannot parse the config file.
	if err := v.ReadInConfig(); err != nil {
		// It's okay if there isn't a config file
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	// When we bind flags to environment variables expect that the
	// environment variables are prefixed, e.g. a flag like --number
	// binds to an environment variable STING_NUMBER. This helps
	// avoid conflicts.
	v.SetEnvPrefix("octoapply")

	// Environment variables can't have dashes in them, so bind them to their equivalent
	// keys with underscores, e.g. --favorite-color to STING_FAVORITE_COLOR
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Bind to environment variables
	// Works great for simple config names, but needs help for names
	// like --favorite-color which we fix in the bindFlags function
	v.AutomaticEnv()

	// Bind the current command's flags to viper
	return bindFlags(flags, v)
}

// Bind each flag to its associated viper configuration (config file and environment variable)
func bindFlags(flags *flag.FlagSet, v *viper.Viper) (funErr error) {
	var funcError error = nil

	flags.VisitAll(func(allFlags *flag.Flag) {
		defined := false
		flags.Visit(func(definedFlag *flag.Flag) {
			if definedFlag.Name == allFlags.Name && definedFlag.Name != "configFile" && definedFlag.Name != "configPath" {
				defined = true
			}
		})

		if !defined && v.IsSet(allFlags.Name) {
			configName := strings.ReplaceAll(allFlags.Name, "-", "")

			for _, value := range v.GetStringSlice(configName) {
				err := flags.Set(allFlags.Name, value)
				funcError = errors.Join(funcError, err)
			}
		}
	})

	return funcError
}
