package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/op-create2/op-create2/config"
	opservice "github.com/mantlenetworkio/op-create2/op-service"
	"github.com/mantlenetworkio/op-create2/op-service/cliutil"
	oplog "github.com/mantlenetworkio/op-create2/op-service/log"
	opmetrics "github.com/mantlenetworkio/op-create2/op-service/metrics"
	"github.com/mantlenetworkio/op-create2/op-service/txmgr"
)

const EnvVarPrefix = "OP_CREATE2"

func prefixEnvVars(name string) []string {
	return opservice.PrefixEnvVar(EnvVarPrefix, name)
}

var (
	ConfigFlag = &cli.PathFlag{
		Name:    "config",
		Usage:   "Path to a TOML deployment manifest",
		EnvVars: prefixEnvVars("CONFIG"),
	}
	FactoryFlag = &cli.StringFlag{
		Name:    "factory",
		Usage:   "Address of the CREATE2 factory. Defaults to the canonical factory.",
		EnvVars: prefixEnvVars("FACTORY"),
	}
	SaltFlag = &cli.StringFlag{
		Name:    "salt",
		Usage:   "CREATE2 salt, decimal or 0x-prefixed hex",
		EnvVars: prefixEnvVars("SALT"),
	}
	BytecodeFlag = &cli.StringFlag{
		Name:    "bytecode",
		Usage:   "Contract creation bytecode as hex",
		EnvVars: prefixEnvVars("BYTECODE"),
	}
	ArtifactFlag = &cli.PathFlag{
		Name:    "artifact",
		Usage:   "Path to a Hardhat or Foundry artifact, or a file with the creation bytecode as hex",
		EnvVars: prefixEnvVars("ARTIFACT"),
	}
	ConstructorTypeFlag = &cli.StringSliceFlag{
		Name:  "constructor-type",
		Usage: "ABI type of a constructor argument. Repeat in argument order.",
	}
	ConstructorArgFlag = &cli.StringSliceFlag{
		Name:  "constructor-arg",
		Usage: "Constructor argument value. Arrays are given as JSON. Repeat in argument order.",
	}
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Usage:   "Output format: 'json' or 'table'",
		Value:   string(config.FormatJSON),
		EnvVars: prefixEnvVars("FORMAT"),
	}
	OutfileFlag = &cli.PathFlag{
		Name:    "outfile",
		Usage:   "Output file. '-' writes to stdout.",
		Value:   "-",
		EnvVars: prefixEnvVars("OUTFILE"),
	}
	AddressFlag = &cli.StringSliceFlag{
		Name:  "address",
		Usage: "Address to check. Repeat to check several.",
	}
	SkipExistingFlag = &cli.BoolFlag{
		Name:    "skip-existing",
		Usage:   "Skip deployments whose predicted address already has code instead of failing",
		EnvVars: prefixEnvVars("SKIP_EXISTING"),
	}
	FailOnMissingFlag = &cli.BoolFlag{
		Name:  "fail-on-missing",
		Usage: "Exit with a non-zero code if any address has no code",
	}
	FunderPrivateKeyFlag = &cli.StringFlag{
		Name:    "funder-private-key",
		Usage:   "Private key that funds the bootstrap account if its balance is too low",
		EnvVars: prefixEnvVars("FUNDER_PRIVATE_KEY"),
	}
	FundingAmountFlag = &cli.StringFlag{
		Name:    "funding-amount",
		Usage:   "Balance the bootstrap account is topped up to, e.g. '1 ether' or '500 gwei'",
		Value:   "1 ether",
		EnvVars: prefixEnvVars("FUNDING_AMOUNT"),
	}
)

// Flags are accepted by every command.
var Flags []cli.Flag

// DeploymentFlags describe the contracts a command works on.
var DeploymentFlags = []cli.Flag{
	ConfigFlag,
	FactoryFlag,
	SaltFlag,
	BytecodeFlag,
	ArtifactFlag,
	ConstructorTypeFlag,
	ConstructorArgFlag,
}

// OutputFlags select how results are written.
var OutputFlags = []cli.Flag{
	FormatFlag,
	OutfileFlag,
}

// TxFlags configure the RPC connection and the signer.
var TxFlags = txmgr.CLIFlags(EnvVarPrefix)

var BootstrapFlags = []cli.Flag{
	FunderPrivateKeyFlag,
	FundingAmountFlag,
}

func init() {
	Flags = append(Flags, oplog.CLIFlags(EnvVarPrefix)...)
	Flags = append(Flags, opmetrics.CLIFlags(EnvVarPrefix)...)
}

// CheckRequired fails if one of the given flags is not set.
func CheckRequired(ctx *cli.Context, required ...cli.Flag) error {
	for _, f := range required {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}

func stringOverride(ctx *cli.Context, f cli.Flag) *string {
	name := f.Names()[0]
	if !ctx.IsSet(name) {
		return nil
	}
	v := ctx.String(name)
	return &v
}

func sliceOverride(ctx *cli.Context, f cli.Flag) []string {
	name := f.Names()[0]
	if !ctx.IsSet(name) {
		return nil
	}
	return ctx.StringSlice(name)
}

// ConfigFromCLI reads the config from the manifest, if any, and lets the
// flags set on the command line override it.
func ConfigFromCLI(ctx *cli.Context, version string) (*config.Config, error) {
	cfg := config.DefaultCLIConfig()
	cfg.Version = version
	cfg.LogConfig = oplog.ReadCLIConfig(ctx)
	cfg.MetricsConfig = opmetrics.ReadCLIConfig(ctx)
	if ctx.IsSet(txmgr.RPCURLFlagName) || ctx.IsSet(txmgr.PrivateKeyFlagName) || ctx.IsSet(txmgr.MnemonicFlagName) {
		cfg.TxMgrConfig = txmgr.ReadCLIConfig(ctx)
	}
	if ctx.IsSet(FormatFlag.Name) {
		cfg.Format = config.OutputFormat(ctx.String(FormatFlag.Name))
	}
	if ctx.IsSet(OutfileFlag.Name) {
		cfg.Outfile = ctx.Path(OutfileFlag.Name)
	}

	if path := ctx.Path(ConfigFlag.Name); path != "" {
		var loader config.Loader = &config.TomlLoader{Path: path}
		m, err := loader.Load()
		if err != nil {
			return nil, err
		}
		cfg.Manifest = *m
	}

	if ctx.IsSet(SaltFlag.Name) {
		if _, err := cliutil.Uint256Flag(ctx, SaltFlag.Name); err != nil {
			return nil, err
		}
	}
	overrides := config.Overrides{
		Factory:          stringOverride(ctx, FactoryFlag),
		Salt:             stringOverride(ctx, SaltFlag),
		Bytecode:         stringOverride(ctx, BytecodeFlag),
		Artifact:         stringOverride(ctx, ArtifactFlag),
		ConstructorTypes: sliceOverride(ctx, ConstructorTypeFlag),
		ConstructorArgs:  sliceOverride(ctx, ConstructorArgFlag),
	}
	if err := overrides.Apply(&cfg.Manifest); err != nil {
		return nil, err
	}
	return cfg, nil
}
