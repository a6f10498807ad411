package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ownerapi/tesla-owner/pkg/account"
	"github.com/ownerapi/tesla-owner/pkg/cli"
	"github.com/ownerapi/tesla-owner/pkg/vehicle"
)

var (
	ErrCommandLineArgs = errors.New("invalid command line arguments")
	ErrUnknownCommand  = errors.New("unrecognized command")
	ErrRequiresVehicle = errors.New("command requires a vehicle id")
)

type Argument struct {
	name string
	help string
}

type Handler func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error

type Command struct {
	help            string
	requiresVehicle bool // True if the command targets a vehicle rather than the account
	args            []Argument
	optional        []Argument
	handler         Handler
}

// parseTemperature converts a command-line temperature argument. A "-" placeholder leaves the
// value unset so the other seat's setting is preserved.
func parseTemperature(arg string) (*float64, error) {
	if arg == "" || arg == "-" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid temperature %q", ErrCommandLineArgs, arg)
	}
	return &value, nil
}

func checkReadiness(commandName string, haveVehicle bool) (*Command, error) {
	info, ok := commands[commandName]
	if !ok {
		return nil, ErrUnknownCommand
	}
	if info.requiresVehicle && !haveVehicle {
		return nil, ErrRequiresVehicle
	}
	return info, nil
}

func execute(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args []string) error {
	if len(args) == 0 {
		return errors.New("missing COMMAND")
	}

	info, err := checkReadiness(args[0], car != nil)
	if err != nil {
		return err
	}

	if len(args)-1 < len(info.args) || len(args)-1 > len(info.args)+len(info.optional) {
		writeErr("Invalid number of command line arguments: %d (%d required, %d optional).", len(args)-1, len(info.args), len(info.optional))
		err = ErrCommandLineArgs
	} else {
		keywords := make(map[string]string)
		for i, argInfo := range info.args {
			keywords[argInfo.name] = args[i+1]
		}
		index := len(info.args) + 1
		for _, argInfo := range info.optional {
			if index >= len(args) {
				break
			}
			keywords[argInfo.name] = args[index]
			index++
		}
		err = info.handler(ctx, acct, car, keywords)
	}

	// Print command-specific help
	if errors.Is(err, ErrCommandLineArgs) {
		info.Usage(args[0])
	}
	return err
}

func (c *Command) Usage(name string) {
	fmt.Printf("Usage: %s", name)
	maxLength := 0
	for _, arg := range c.args {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" [")
	}
	for _, arg := range c.optional {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" ]")
	}
	fmt.Printf("\n%s\n", c.help)
	maxLength++
	for _, arg := range c.args {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
	for _, arg := range c.optional {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
}

func printJSON(value interface{}) error {
	formatted, err := json.MarshalIndent(value, "", "    ")
	if err != nil {
		return err
	}
	fmt.Println(string(formatted))
	return nil
}

var commands = map[string]*Command{
	"list": &Command{
		help: "List vehicles on the account",
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			cars, err := acct.Vehicles(ctx)
			if err != nil {
				return err
			}
			for _, car := range cars {
				summary := car.Summary()
				fmt.Printf("%d\t%s\t%s\t%s\t%s\n", summary.ID, summary.VIN, summary.DisplayName, summary.State, summary.TokenList())
			}
			return nil
		},
	},
	"state": &Command{
		help:            "Fetch the vehicle's combined state bundle",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			data, err := car.Data(ctx)
			if err != nil {
				return err
			}
			return printJSON(data)
		},
	},
	"climate": &Command{
		help:            "Fetch the vehicle's climate settings",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			climate, err := car.ClimateState(ctx)
			if err != nil {
				return err
			}
			return printJSON(climate)
		},
	},
	"wake": &Command{
		help:            "Bring the vehicle online",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return car.Wakeup(ctx)
		},
	},
	"lock": &Command{
		help:            "Lock vehicle",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return car.Lock(ctx)
		},
	},
	"unlock": &Command{
		help:            "Unlock vehicle",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return car.Unlock(ctx)
		},
	},
	"honk": &Command{
		help:            "Honk horn",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return car.HonkHorn(ctx)
		},
	},
	"flash": &Command{
		help:            "Flash headlights",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return car.FlashLights(ctx)
		},
	},
	"charge-start": &Command{
		help:            "Start charging",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return car.StartCharging(ctx)
		},
	},
	"charge-stop": &Command{
		help:            "Stop charging",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return car.StopCharging(ctx)
		},
	},
	"charge-port-open": &Command{
		help:            "Open charge port",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return car.OpenChargePort(ctx)
		},
	},
	"charge-port-close": &Command{
		help:            "Close charge port",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return car.CloseChargePort(ctx)
		},
	},
	"charging-set-limit": &Command{
		help:            "Set charge limit",
		requiresVehicle: true,
		args: []Argument{
			Argument{name: "PERCENT", help: "Charge limit as a percentage (50-100)"},
		},
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			percent, err := strconv.Atoi(args["PERCENT"])
			if err != nil {
				return fmt.Errorf("%w: expected integer percentage", ErrCommandLineArgs)
			}
			return car.SetChargeLimit(ctx, percent)
		},
	},
	"climate-on": &Command{
		help:            "Turn on climate control",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return car.ClimateOn(ctx)
		},
	},
	"climate-off": &Command{
		help:            "Turn off climate control",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return car.ClimateOff(ctx)
		},
	},
	"climate-set-temps": &Command{
		help:            "Set cabin temperature setpoints. Values above 28 are treated as Fahrenheit.",
		requiresVehicle: true,
		args: []Argument{
			Argument{name: "DRIVER", help: "Driver setpoint, or '-' to keep the current setting"},
		},
		optional: []Argument{
			Argument{name: "PASSENGER", help: "Passenger setpoint, or '-' to keep the current setting"},
		},
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			driver, err := parseTemperature(args["DRIVER"])
			if err != nil {
				return err
			}
			passenger, err := parseTemperature(args["PASSENGER"])
			if err != nil {
				return err
			}
			return car.SetTemperatures(ctx, driver, passenger)
		},
	},
	"sunroof-vent": &Command{
		help:            "Vent the panoramic sunroof",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return car.VentSunroof(ctx)
		},
	},
	"sunroof-close": &Command{
		help:            "Close the panoramic sunroof",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return car.CloseSunroof(ctx)
		},
	},
	"valet-on": &Command{
		help:            "Enable valet mode",
		requiresVehicle: true,
		optional: []Argument{
			Argument{name: "PIN", help: "Four-digit PIN for disabling valet mode from the touchscreen"},
		},
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return car.EnableValetMode(ctx, args["PIN"])
		},
	},
	"valet-off": &Command{
		help:            "Disable valet mode",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return car.DisableValetMode(ctx)
		},
	},
	"valet-reset-pin": &Command{
		help:            "Clear the saved valet PIN",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return car.ResetValetPIN(ctx)
		},
	},
	"remote-start": &Command{
		help:            "Allow keyless driving for the next two minutes. Prompts for the account password.",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			password, err := cli.PromptSecret("Account password")
			if err != nil {
				return err
			}
			return car.RemoteStart(ctx, password)
		},
	},
}
