package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/born-ml/torchbridge/bridge"
	"github.com/born-ml/torchbridge/internal/envconfig"
	"github.com/born-ml/torchbridge/internal/logutil"
)

const version = "v0.1.0-dev"

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "torchbridge",
		Short: "Compile and run tensor scripts on the torchbridge engine",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
			slog.SetDefault(logutil.NewLogger(os.Stderr, logutil.Level(envconfig.LogLevel)))
		},
	}

	rootCmd.PersistentFlags().Int64("seed", 0, "Seed for random tensors (overrides TORCHBRIDGE_SEED)")

	cobra.EnableCommandSorting = false

	runCmd := &cobra.Command{
		Use:   "run FILE FUNCTION [TENSOR...]",
		Short: "Call a script function and print the result",
		Long: `Call a script function and print the result.

Tensors are written as comma separated values with an optional shape,
e.g. "1,2,3,4:2x2". A shape of ":" alone makes a 0-d tensor.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runHandler,
	}

	functionsCmd := &cobra.Command{
		Use:     "functions FILE",
		Aliases: []string{"ls"},
		Short:   "List the functions defined by a script",
		Args:    cobra.ExactArgs(1),
		RunE:    functionsHandler,
	}

	fitCmd := &cobra.Command{
		Use:   "fit FILE FUNCTION",
		Short: "Fit script parameters to targets",
		Long: `Fit script parameters to targets.

FUNCTION is called with every --param followed by --input and its result is
compared against --target with the chosen loss. Parameters are printed once
training finishes.`,
		Args: cobra.ExactArgs(2),
		RunE: fitHandler,
	}
	fitCmd.Flags().StringArray("param", nil, "Initial parameter tensor (repeatable)")
	fitCmd.Flags().String("input", "", "Input tensor")
	fitCmd.Flags().String("target", "", "Target tensor")
	fitCmd.Flags().String("loss", "mse", "Loss function (mse, l1, nll)")
	fitCmd.Flags().String("optimizer", "adam", "Optimizer (adam, sgd)")
	fitCmd.Flags().Float32("lr", 0.01, "Learning rate")
	fitCmd.Flags().Float32("momentum", 0, "SGD momentum")
	fitCmd.Flags().Int("steps", 100, "Number of optimizer steps")
	fitCmd.Flags().Int("every", 10, "Report the loss every N steps")

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Show environment configuration",
		Args:  cobra.NoArgs,
		RunE:  envHandler,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "torchbridge %s\n", version)
		},
	}

	rootCmd.AddCommand(runCmd, functionsCmd, fitCmd, envCmd, versionCmd)
	return rootCmd
}

func newRuntime(cmd *cobra.Command) *bridge.Runtime {
	var opts []bridge.Option
	if seed, err := cmd.Flags().GetInt64("seed"); err == nil && seed != 0 {
		opts = append(opts, bridge.WithSeed(seed))
	}
	return bridge.NewRuntime(opts...)
}

func compileFile(rt *bridge.Runtime, path string) (bridge.UnitHandle, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	u, err := rt.Compile(string(src))
	if err != nil {
		return 0, errors.Wrap(err, path)
	}
	return u, nil
}

func loadTensor(rt *bridge.Runtime, s string) (bridge.TensorHandle, error) {
	data, shape, err := parseTensor(s)
	if err != nil {
		return 0, err
	}
	return rt.TensorFromBuffer(data, shape)
}

func printTensor(w io.Writer, rt *bridge.Runtime, h bridge.TensorHandle) error {
	sizes, err := rt.Sizes(h)
	if err != nil {
		return err
	}
	data, err := rt.Data(h)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "shape: %s\n", formatShape(sizes))
	fmt.Fprintf(w, "data:  %s\n", formatValues(data))
	return nil
}

func runHandler(cmd *cobra.Command, args []string) error {
	rt := newRuntime(cmd)
	u, err := compileFile(rt, args[0])
	if err != nil {
		return err
	}

	inputs := make([]bridge.TensorHandle, 0, len(args)-2)
	for _, s := range args[2:] {
		h, err := loadTensor(rt, s)
		if err != nil {
			return err
		}
		inputs = append(inputs, h)
	}

	out, err := rt.Invoke(u, args[1], inputs)
	if err != nil {
		return err
	}
	return printTensor(cmd.OutOrStdout(), rt, out)
}

func functionsHandler(cmd *cobra.Command, args []string) error {
	rt := newRuntime(cmd)
	u, err := compileFile(rt, args[0])
	if err != nil {
		return err
	}
	sigs, err := rt.Functions(u)
	if err != nil {
		return err
	}

	var data [][]string
	for _, sig := range sigs {
		returns := sig.Returns
		if returns == "" {
			returns = "-"
		}
		data = append(data, []string{sig.Name, strconv.Itoa(len(sig.Params)), returns, sig.String()})
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"NAME", "PARAMS", "RETURNS", "SIGNATURE"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
	return nil
}

type fitOptions struct {
	params        []string
	input, target string
	loss          bridge.BinaryOp
	optimizer     string
	lr, momentum  float32
	steps, every  int
}

func fitFlags(cmd *cobra.Command) (fitOptions, error) {
	var opts fitOptions
	var err error
	flags := cmd.Flags()
	if opts.params, err = flags.GetStringArray("param"); err != nil {
		return opts, err
	}
	if opts.input, err = flags.GetString("input"); err != nil {
		return opts, err
	}
	if opts.target, err = flags.GetString("target"); err != nil {
		return opts, err
	}
	loss, err := flags.GetString("loss")
	if err != nil {
		return opts, err
	}
	if opts.loss, err = bridge.ParseBinaryOp(loss + "_loss"); err != nil {
		return opts, errors.Errorf("unknown loss %q", loss)
	}
	if opts.optimizer, err = flags.GetString("optimizer"); err != nil {
		return opts, err
	}
	if !slices.Contains([]string{"adam", "sgd"}, opts.optimizer) {
		return opts, errors.Errorf("unknown optimizer %q", opts.optimizer)
	}
	if opts.lr, err = flags.GetFloat32("lr"); err != nil {
		return opts, err
	}
	if opts.momentum, err = flags.GetFloat32("momentum"); err != nil {
		return opts, err
	}
	if opts.steps, err = flags.GetInt("steps"); err != nil {
		return opts, err
	}
	if opts.every, err = flags.GetInt("every"); err != nil {
		return opts, err
	}

	switch {
	case len(opts.params) == 0:
		return opts, errors.New("at least one --param is required")
	case opts.input == "" || opts.target == "":
		return opts, errors.New("--input and --target are required")
	case opts.steps <= 0:
		return opts, errors.Errorf("--steps must be positive, got %d", opts.steps)
	}
	return opts, nil
}

func fitHandler(cmd *cobra.Command, args []string) error {
	opts, err := fitFlags(cmd)
	if err != nil {
		return err
	}

	rt := newRuntime(cmd)
	u, err := compileFile(rt, args[0])
	if err != nil {
		return err
	}

	params := make([]bridge.TensorHandle, len(opts.params))
	for i, s := range opts.params {
		if params[i], err = loadTensor(rt, s); err != nil {
			return errors.Wrapf(err, "param %d", i)
		}
	}
	input, err := loadTensor(rt, opts.input)
	if err != nil {
		return errors.Wrap(err, "input")
	}
	target, err := loadTensor(rt, opts.target)
	if err != nil {
		return errors.Wrap(err, "target")
	}

	var opt bridge.OptimizerHandle
	switch opts.optimizer {
	case "adam":
		opt, err = rt.NewAdam(params, opts.lr)
	default:
		opt, err = rt.NewSGDWithMomentum(params, opts.lr, opts.momentum)
	}
	if err != nil {
		return err
	}
	defer rt.DestroyOptimizer(opt) //nolint:errcheck

	w := cmd.OutOrStdout()
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"STEP", "LOSS"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")

	fnArgs := append(slices.Clone(params), input)
	for step := 1; step <= opts.steps; step++ {
		loss, err := fitStep(rt, u, args[1], fnArgs, target, opts.loss, opt)
		if err != nil {
			return errors.Wrapf(err, "step %d", step)
		}
		if opts.every > 0 && (step%opts.every == 0 || step == opts.steps) {
			table.Append([]string{strconv.Itoa(step), strconv.FormatFloat(float64(loss), 'g', 6, 32)})
		}
	}
	table.Render()

	for i, p := range params {
		fmt.Fprintf(w, "\nparam %d\n", i)
		if err := printTensor(w, rt, p); err != nil {
			return err
		}
	}
	return nil
}

// fitStep runs one forward, backward and update cycle and returns the loss.
func fitStep(rt *bridge.Runtime, u bridge.UnitHandle, fn string, args []bridge.TensorHandle, target bridge.TensorHandle, op bridge.BinaryOp, opt bridge.OptimizerHandle) (float32, error) {
	if err := rt.ZeroGrad(opt); err != nil {
		return 0, err
	}

	pred, err := rt.Invoke(u, fn, args)
	if err != nil {
		return 0, err
	}
	defer rt.DestroyTensor(pred) //nolint:errcheck

	loss, err := rt.Binary(op, pred, target)
	if err != nil {
		return 0, err
	}
	defer rt.DestroyTensor(loss) //nolint:errcheck

	data, err := rt.Data(loss)
	if err != nil {
		return 0, err
	}
	if err := rt.Backward(loss); err != nil {
		return 0, err
	}
	if err := rt.Step(opt); err != nil {
		return 0, err
	}
	return data[0], nil
}

func envHandler(cmd *cobra.Command, args []string) error {
	vars := envconfig.AsMap()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)

	var data [][]string
	for _, name := range names {
		v := vars[name]
		data = append(data, []string{v.Name, fmt.Sprintf("%v", v.Value), v.Description})
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"NAME", "VALUE", "DESCRIPTION"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
	return nil
}
