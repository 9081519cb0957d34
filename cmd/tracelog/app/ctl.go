package app

import (
	"fmt"

	"github.com/nats-io/nats.go"

	"Stylus/cmd/tracelog/app/options"
	"Stylus/pkg/control"
	"Stylus/pkg/util/app"
)

const (
	registerDesc = `push a new staging directory and file size limit to a running writer`
	triggerDesc  = `run the built-in load test on a running writer`
)

func newRegisterCommand() *app.Command {
	opts := options.NewRegisterOptions()
	return app.NewCommand("register", registerDesc,
		app.WithCommandOptions(opts),
		app.WithCommandRunFunc(registerRun(opts)),
	)
}

func registerRun(opts *options.RegisterOptions) app.RunCommandFunc {
	return func(args []string) error {
		nc, err := nats.Connect(opts.GetNatsURL())
		if err != nil {
			return err
		}
		defer nc.Close()

		code, err := control.Register(nc, opts.GetSubject(),
			opts.GetStagingDir(), opts.GetMaxFileBytes(), opts.GetTimeout())
		if err != nil {
			return err
		}
		if code != control.AckOK {
			return fmt.Errorf("writer rejected register, ack code %d", code)
		}
		fmt.Printf("registered staging dir %s, max file size %d bytes\n",
			opts.GetStagingDir(), opts.GetMaxFileBytes())
		return nil
	}
}

func newTriggerCommand() *app.Command {
	opts := options.NewTriggerOptions()
	return app.NewCommand("trigger", triggerDesc,
		app.WithCommandOptions(opts),
		app.WithCommandRunFunc(triggerRun(opts)),
	)
}

func triggerRun(opts *options.CtlOptions) app.RunCommandFunc {
	return func(args []string) error {
		nc, err := nats.Connect(opts.GetNatsURL())
		if err != nil {
			return err
		}
		defer nc.Close()

		code, err := control.Trigger(nc, opts.GetSubject(), opts.GetTimeout())
		if err != nil {
			return err
		}
		if code != control.AckOK {
			return fmt.Errorf("writer rejected trigger, ack code %d", code)
		}
		fmt.Println("load test completed")
		return nil
	}
}
