// esxictl - CLI tool for managing ESXi hosts through VMware vCenter
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Bibi40k/vmware-esxi-manager/configs"
	"github.com/Bibi40k/vmware-esxi-manager/pkg/esxi"
)

var vcenterConfigFile string
var debugLogs bool
var outputFormat string
var metricsTextfile string
var assumeYes bool
var scope esxi.Scope

var rootCmd = &cobra.Command{
	Use:           "esxictl",
	Short:         "Query and manage ESXi hosts through VMware vCenter",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = initDebugLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&vcenterConfigFile, "vcenter-config", "configs/vcenter.yaml",
		"Path to vCenter config file (*.sops.yaml files are decrypted with sops)")
	rootCmd.PersistentFlags().StringVar(&scope.Datacenter, "datacenter", "", "Limit to hosts of this datacenter")
	rootCmd.PersistentFlags().StringVar(&scope.Cluster, "cluster", "", "Limit to hosts of this cluster (needs --datacenter)")
	rootCmd.PersistentFlags().StringVar(&scope.Host, "host", "", "Limit to this host")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", configs.Defaults.Output.Format, "Output format: yaml, json or table")
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "Enable debug logging to "+configs.Defaults.Output.DebugLogPath)
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "",
		"Write operation metrics in Prometheus text format to this file")

	registerQueryCommands()
	registerHostCommands()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if debugCleanup != nil {
		defer debugCleanup()
	}
	if err == nil {
		return
	}

	const (
		red    = "\033[31m"
		yellow = "\033[33m"
		cyan   = "\033[36m"
		reset  = "\033[0m"
	)
	var ue *userError
	switch {
	case errors.As(err, &ue):
		fmt.Fprintf(os.Stderr, "%sError:%s %s\n", red, reset, ue.Error())
		if hint := ue.Hint(); hint != "" {
			fmt.Fprintf(os.Stderr, "%sHint:%s %s%s%s\n", yellow, reset, cyan, hint, reset)
		}
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "\nCancelled.")
	default:
		fmt.Fprintf(os.Stderr, "%sError:%s %v\n", red, reset, err)
	}
	if debugCleanup != nil {
		debugCleanup()
	}
	os.Exit(1)
}
