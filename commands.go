package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-page/framework/app"
	"github.com/km-arc/go-page/framework/config"
	"github.com/km-arc/go-page/framework/design"
	"github.com/km-arc/go-page/framework/page"
	"github.com/km-arc/go-page/framework/providers"
	"github.com/km-arc/go-page/framework/view"
)

var (
	envFiles   []string
	locale     string
	stringsDir string
	awake      bool
	designMode bool

	rootCmd = &cobra.Command{
		Use:           "gopage",
		Short:         "Load page designs and serve them for inspection",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the page catalog and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	inspectCmd = &cobra.Command{
		Use:   "inspect [design.yaml]",
		Short: "Load one page design and print the state of every slot",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
)

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "env files to load (default .env)")

	inspectCmd.Flags().StringVar(&locale, "locale", "", "apply the string bundle of this locale")
	inspectCmd.Flags().StringVar(&stringsDir, "strings", "./strings", "directory of <locale>.yaml string bundles")
	inspectCmd.Flags().BoolVar(&awake, "awake", false, "build every view before printing")
	inspectCmd.Flags().BoolVar(&designMode, "design-mode", false, "skip finalize hooks on created views")

	rootCmd.AddCommand(serveCmd, inspectCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	application, err := app.New(envFiles...)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return application.Run(ctx)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg := config.Load(envFiles...)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := providers.NewLogger(cfg.Log, cmd.ErrOrStderr())

	doc, err := design.Load(args[0])
	if err != nil {
		return err
	}
	reg := view.NewRegistry()
	view.RegisterDefaults(reg)

	p, err := design.Build(doc, reg, page.Options{
		DesignMode: designMode || cfg.Page.DesignMode,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	if locale != "" {
		bundle, err := design.LoadBundle(stringsDir, locale)
		if err != nil {
			return err
		}
		p.Loc(bundle.Table(p.Name()).Payloads())
	}
	if awake {
		if _, err := p.Awake(); err != nil {
			return err
		}
	}
	return printPage(cmd.OutOrStdout(), p)
}

func printPage(w io.Writer, p *page.Page) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "page %s (resettable=%t)\n", p.Name(), p.Resettable())
	for _, name := range p.Names() {
		state := p.State(name)
		line := fmt.Sprintf("  %s\t%s", name, state)
		if desc, ok := p.Descriptor(name); ok {
			line += "\t" + desc.Kind().String()
		}
		if state == page.Materialized {
			if v, err := p.GetIfConfigured(name); err == nil {
				if vw, ok := v.(*view.View); ok {
					line += fmt.Sprintf("\t%s %q", vw.Kind, vw.Title())
				}
			}
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}
