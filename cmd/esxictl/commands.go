package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Bibi40k/vmware-esxi-manager/configs"
	"github.com/Bibi40k/vmware-esxi-manager/internal/utils"
	"github.com/Bibi40k/vmware-esxi-manager/pkg/esxi"
	"github.com/Bibi40k/vmware-esxi-manager/pkg/vcenter"
)

// operation runs against a connected Manager and returns what gets rendered.
type operation func(ctx context.Context, m *esxi.Manager) (any, error)

// run connects to vCenter, executes op and renders its result.
func run(cmd *cobra.Command, op operation) error {
	ctx := cmd.Context()
	logger := getLogger()

	cfg, err := loadVCenterConfig(vcenterConfigFile)
	if err != nil {
		return err
	}
	logger.Debug("Connecting to vCenter", "host", cfg.VCenter.Host, "scope", scope.String())

	client, err := vcenter.NewClient(ctx, cfg.clientConfig())
	if err != nil {
		return &userError{
			msg:  fmt.Sprintf("cannot connect to vCenter %s: %v", cfg.VCenter.Host, err),
			hint: "check --vcenter-config or VCENTER_HOST/VCENTER_USERNAME/VCENTER_PASSWORD",
		}
	}
	defer func() {
		_ = client.Disconnect()
	}()

	reg := prometheus.NewRegistry()
	m := esxi.NewManager(client,
		esxi.WithLogger(logger),
		esxi.WithMetrics(esxi.NewMetrics(reg)),
	)

	result, err := op(ctx, m)
	if metricsTextfile != "" {
		if werr := prometheus.WriteToTextfile(metricsTextfile, reg); werr != nil {
			logger.Warn("Failed to write metrics", "path", metricsTextfile, "error", werr)
		}
	}
	if err != nil {
		return explain(err)
	}
	return render(cmd.OutOrStdout(), outputFormat, result)
}

// explain adds a hint to library errors a user can act on.
func explain(err error) error {
	switch {
	case errors.Is(err, esxi.ErrInvalidArgument):
		return &userError{msg: err.Error(), hint: "see --help for accepted values"}
	case errors.Is(err, esxi.ErrNotFound):
		return &userError{msg: err.Error(), hint: "check --datacenter, --cluster and --host"}
	}
	return err
}

func registerQueryCommands() {
	lunsCmd := &cobra.Command{
		Use:   "luns",
		Short: "List the NAA ids of disks backing VMFS datastores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
				return m.GetLunIDs(ctx)
			})
		},
	}

	capabilitiesCmd := &cobra.Command{
		Use:   "capabilities",
		Short: "Show host capability flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
				return m.GetCapabilities(ctx, scope)
			})
		},
	}

	pkgsCmd := &cobra.Command{
		Use:   "pkgs",
		Short: "List installed packages (VIBs)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
				return m.ListPkgs(ctx, scope)
			})
		},
	}

	var filter esxi.ServiceFilter
	servicesCmd := &cobra.Command{Use: "services", Short: "List and manage host services"}
	servicesListCmd := &cobra.Command{
		Use:   "list",
		Short: "List host services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
				return m.ListServices(ctx, scope, filter)
			})
		},
	}
	servicesListCmd.Flags().StringVar(&filter.Name, "name", "", "Only this service (e.g. TSM-SSH)")
	servicesListCmd.Flags().StringVar(&filter.State, "state", "", "Only services in this state: running or stopped")
	servicesListCmd.Flags().StringVar(&filter.StartupPolicy, "policy", "", "Only services with this startup policy: on, off or automatic")

	var action esxi.ServiceAction
	servicesManageCmd := &cobra.Command{
		Use:   "manage SERVICE",
		Short: "Start, stop or restart a service and/or set its startup policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
				return m.ManageService(ctx, scope, args[0], action)
			})
		},
	}
	servicesManageCmd.Flags().StringVar(&action.State, "state", "", "start, stop or restart")
	servicesManageCmd.Flags().StringVar(&action.StartupPolicy, "policy", "", "on, off or automatic")
	servicesCmd.AddCommand(servicesListCmd, servicesManageCmd)

	acceptanceCmd := &cobra.Command{Use: "acceptance", Short: "Show or set the image acceptance level"}
	acceptanceCmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Show the acceptance level",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
					return m.GetAcceptanceLevel(ctx, scope)
				})
			},
		},
		&cobra.Command{
			Use:       "set LEVEL",
			Short:     "Set the acceptance level",
			Args:      cobra.ExactArgs(1),
			ValidArgs: configs.Defaults.Host.AcceptanceLevels,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
					return m.SetAcceptanceLevel(ctx, scope, args[0])
				})
			},
		},
	)

	advancedCmd := &cobra.Command{Use: "advanced", Short: "Show or set advanced options"}
	advancedCmd.AddCommand(
		&cobra.Command{
			Use:   "get [NAME]",
			Short: "Show an advanced option, a subtree (NAME ending in \".\") or all options",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := ""
				if len(args) == 1 {
					name = args[0]
				}
				return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
					return m.GetAdvancedConfig(ctx, scope, name)
				})
			},
		},
		&cobra.Command{
			Use:   "set NAME=VALUE...",
			Short: "Set advanced options",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				values, err := parseAssignments(args)
				if err != nil {
					return err
				}
				return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
					return m.SetAdvancedConfigs(ctx, scope, values)
				})
			},
		},
	)

	dnsCmd := &cobra.Command{
		Use:   "dns",
		Short: "Show DNS configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
				return m.GetDNSConfig(ctx, scope)
			})
		},
	}

	var key string
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show a host summary, or one value of it with --key (e.g. vsan:health)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
				return m.Get(ctx, scope, key)
			})
		},
	}
	getCmd.Flags().StringVar(&key, "key", "", "Colon-delimited path into the summary")

	clustersCmd := &cobra.Command{
		Use:   "clusters",
		Short: "List the clusters of --datacenter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
				return m.ListClusters(ctx, scope.Datacenter)
			})
		},
	}

	datastoresCmd := &cobra.Command{
		Use:   "datastores",
		Short: "List the datastores of --datacenter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
				return m.ListDatastores(ctx, scope.Datacenter)
			})
		},
	}

	rootCmd.AddCommand(lunsCmd, capabilitiesCmd, pkgsCmd, servicesCmd, acceptanceCmd, advancedCmd, dnsCmd, getCmd,
		clustersCmd, datastoresCmd)
}

func registerHostCommands() {
	hostCmd := &cobra.Command{Use: "host", Short: "Add, remove, move, connect or disconnect hosts"}
	hostCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	var spec esxi.AddSpec
	var noConnect bool
	addCmd := &cobra.Command{
		Use:   "add HOST",
		Short: "Add a host to --cluster (or standalone to --datacenter)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec.Host = args[0]
			spec.Cluster = scope.Cluster
			spec.Datacenter = scope.Datacenter
			if noConnect {
				connect := false
				spec.Connect = &connect
			}
			if err := preflightHost(spec.Host); err != nil {
				return err
			}
			if spec.Password == "" {
				spec.Password = readPassword(fmt.Sprintf("Password for %s@%s", spec.User, spec.Host))
			}
			return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
				return m.Add(ctx, spec)
			})
		},
	}
	addCmd.Flags().StringVar(&spec.User, "user", "root", "ESXi user vCenter logs in with")
	addCmd.Flags().StringVar(&spec.Password, "password", "", "ESXi password (prompted when empty)")
	addCmd.Flags().BoolVar(&spec.VerifyHostCert, "verify-cert", false, "Let vCenter verify the host certificate instead of trusting its thumbprint")
	addCmd.Flags().BoolVar(&noConnect, "no-connect", false, "Add the host in disconnected state")

	removeCmd := &cobra.Command{
		Use:   "remove HOST",
		Short: "Remove a host from the inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return confirmed(cmd, fmt.Sprintf("Remove host %s from vCenter?", args[0]), func() error {
				return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
					return m.Remove(ctx, args[0])
				})
			})
		},
	}

	moveCmd := &cobra.Command{
		Use:   "move HOST CLUSTER",
		Short: "Move a host into another cluster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return confirmed(cmd, fmt.Sprintf("Move host %s into cluster %s?", args[0], args[1]), func() error {
				return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
					return m.Move(ctx, args[0], args[1])
				})
			})
		},
	}

	connectCmd := &cobra.Command{
		Use:   "connect HOST",
		Short: "Reconnect a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
				return m.Connect(ctx, args[0])
			})
		},
	}

	disconnectCmd := &cobra.Command{
		Use:   "disconnect HOST",
		Short: "Disconnect a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return confirmed(cmd, fmt.Sprintf("Disconnect host %s?", args[0]), func() error {
				return run(cmd, func(ctx context.Context, m *esxi.Manager) (any, error) {
					return m.Disconnect(ctx, args[0])
				})
			})
		},
	}

	hostCmd.AddCommand(addCmd, removeCmd, moveCmd, connectCmd, disconnectCmd)
	rootCmd.AddCommand(hostCmd)
}

// askConfirm is swapped in tests.
var askConfirm = confirm

// confirmed runs fn once the user agrees. A refusal is reported on stderr so
// stdout only ever carries rendered results.
func confirmed(cmd *cobra.Command, msg string, fn func() error) error {
	ok, err := askConfirm(msg)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.ErrOrStderr(), "  Cancelled.")
		return nil
	}
	return fn()
}

// preflightHost checks that a host about to be added answers on its management port.
func preflightHost(host string) error {
	if err := utils.ValidateHostAddress(host); err != nil {
		return &userError{msg: err.Error(), hint: "pass the host name or IP address vCenter should connect to"}
	}
	port := configs.Defaults.Host.ThumbprintPort
	timeout := configs.Defaults.Timeouts.ThumbprintDial()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if !utils.IsPortOpen(host, port, timeout) {
		return &userError{
			msg:  fmt.Sprintf("%s does not answer on port %d", host, port),
			hint: "check that the host is powered on and reachable from here",
		}
	}
	return nil
}
