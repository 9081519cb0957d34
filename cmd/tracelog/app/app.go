package app

import (
	"os"

	"k8s.io/klog/v2"

	"Stylus/cmd/tracelog/app/options"
	"Stylus/pkg/util/app"
	"Stylus/pkg/util/signal"
)

const commandDesc = `run the trace log writer daemon`

func New(basename string) *app.App {
	opts := options.New()
	application := app.NewApp(
		basename,
		app.WithOptions(opts),
		app.WithDescription(commandDesc),
		app.WithConfiguration(opts.GetWriterOpts()),
		app.WithRunFunc(run(opts)),
	)
	application.AddCommands(
		newRegisterCommand(),
		newTriggerCommand(),
	)
	return application
}

func run(opts *options.Options) app.RunFunc {
	return func(basename string) error {
		srv := NewTraceLogServer(opts)
		go func() {
			if err := srv.Run(); err != nil {
				klog.Errorln("srv.Run() return err: ", err)
			}
			os.Exit(0)
		}()
		stopCh := signal.SetupSignalHandler()
		<-stopCh
		_ = srv.Shutdown()
		return nil
	}
}
