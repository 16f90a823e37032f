package cmd

import (
	"github.com/urfave/cli/v2"
)

// NewApp describes the command line. Every flag can also be set through the
// environment variables read by config.Load; a flag given explicitly wins.
func NewApp() *cli.App {
	return &cli.App{
		Name:  "buttonplus",
		Usage: "provision Button+ devices for Home Assistant",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "INFO",
			},
			&cli.StringFlag{
				Name: "mqtt-host",
			},
			&cli.IntFlag{
				Name:  "mqtt-port",
				Value: 1883,
			},
			&cli.StringFlag{
				Name: "mqtt-user",
			},
			&cli.StringFlag{
				Name: "mqtt-pass",
			},
			&cli.StringFlag{
				Name:  "mqtt-advertised-host",
				Usage: "broker address written to devices when mqtt-host is local",
			},
			&cli.StringFlag{
				Name: "database-url",
			},
			&cli.StringFlag{
				Name:  "migrations-folder",
				Value: "migrations",
			},
			&cli.DurationFlag{
				Name: "request-timeout",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "provision",
				Usage:  "add the broker and topics to devices on the LAN",
				Action: ProvisionCommand,
				Flags:  []cli.Flag{ipFlag()},
			},
			{
				Name:   "import",
				Usage:  "provision every physical device of a button.plus account",
				Action: ImportCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email"},
					&cli.StringFlag{Name: "password"},
					&cli.StringFlag{Name: "cookie", Usage: "auth_cookie=... instead of email and password"},
					&cli.IntSliceFlag{Name: "website-id", Usage: "only import these account devices, repeatable"},
				},
			},
			{
				Name:   "backup",
				Usage:  "store the current configuration of devices",
				Action: BackupCommand,
				Flags:  []cli.Flag{ipFlag()},
			},
			{
				Name:   "restore",
				Usage:  "push the latest backup of a device back to it",
				Action: RestoreCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "device", Required: true},
				},
			},
			{
				Name:   "verify",
				Usage:  "check that a configuration file decodes and encodes unchanged",
				Action: VerifyCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Required: true},
				},
			},
			{
				Name:   "serve",
				Usage:  "run the HTTP API, follow button events and take scheduled backups",
				Action: ServeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr"},
					&cli.StringFlag{Name: "backup-schedule"},
				},
			},
		},
	}
}

func ipFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "ip",
		Usage: "device address, repeatable; defaults to DEVICES",
	}
}
