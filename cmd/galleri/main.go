// galleri turns a directory of photos into a static web gallery.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/tstromberg/galleri/pkg/galleri"
)

var configPath string

func main() {
	klog.InitFlags(nil)

	if err := newRootCmd().Execute(); err != nil {
		klog.Exitf("%v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "galleri",
		Short:         "Static photo gallery generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", galleri.DefaultConfigFile, "path to the gallery configuration")
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	root.AddCommand(newBuildCmd())
	root.AddCommand(newNewCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newServeCmd())
	return root
}

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Write a default configuration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := galleri.WriteDefaultConfig(configPath); err != nil {
				return fmt.Errorf("write %s: %w", configPath, err)
			}
			fmt.Printf("Wrote %s.\n", configPath)
			return nil
		},
	}
}

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the static gallery",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c, r, err := setup()
			if err != nil {
				return err
			}
			_, err = galleri.Build(c, r)
			return err
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Build the gallery, then rebuild whenever the input changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, r, err := setup()
			if err != nil {
				return err
			}
			if err := buildTolerant(c, r); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, c, r)
		},
	}
}

func newServeCmd() *cobra.Command {
	var (
		addr      string
		watchFlag bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Build the gallery and serve it via HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, r, err := setup()
			if err != nil {
				return err
			}
			if err := buildTolerant(c, r); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var wg sync.WaitGroup
			if watchFlag {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := watch(ctx, c, r); err != nil {
						klog.Errorf("watch failed: %v", err)
					}
				}()
			}

			err = serve(ctx, c.Output, addr)
			stop()
			wg.Wait()
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:12800", "host:port to bind to")
	cmd.Flags().BoolVar(&watchFlag, "watch", false, "rebuild when the input changes")
	return cmd
}

// setup loads the configuration and the theme's templates.
func setup() (*galleri.Config, galleri.Renderer, error) {
	c, err := galleri.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	r, err := galleri.NewTemplateRenderer(c.Theme)
	if err != nil {
		return nil, nil, err
	}
	return c, r, nil
}

// buildTolerant builds, only failing on errors that leave no usable gallery behind.
func buildTolerant(c *galleri.Config, r galleri.Renderer) error {
	_, err := galleri.Build(c, r)
	var te *galleri.TranscodeError
	if errors.As(err, &te) {
		klog.Errorf("%v", err)
		return nil
	}
	return err
}

func watch(ctx context.Context, c *galleri.Config, r galleri.Renderer) error {
	return galleri.Watch(ctx, c.Input, func() error {
		_, err := galleri.Build(c, r)
		return err
	})
}

// serve serves a static web directory and build metrics via HTTP
func serve(ctx context.Context, path string, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", http.FileServer(http.Dir(path)))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			klog.Errorf("shutdown: %v", err)
		}
	}()

	klog.Infof("Listening on %s...", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}
