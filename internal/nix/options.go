package nix

// EvalOptions carries the read-only parameters shared by every nix
// evaluation in one extraction run.
type EvalOptions struct {
	// FlakeRef is the flake to extract from, either a registry name or a
	// URL, e.g. "nixpkgs" or "github:NixOS/nix".
	FlakeRef string
	// System is the platform to evaluate for, e.g. "x86_64-linux". Empty
	// means the evaluating machine's own system.
	System string
	// Offline forbids nix from touching the network during evaluation.
	Offline bool
	// RuntimeOnly limits dependency expansion to run-time input kinds.
	RuntimeOnly bool

	Lib    *HelperLib
	Runner Runner
}

// evalArgs assembles the argument list for one `nix eval` of expr.
func (o EvalOptions) evalArgs(expr string) []string {
	args := []string{
		"eval",
		"-I", "lib=" + o.Lib.Path(),
		"--json", "--expr", expr,
		"--impure",
		"--extra-experimental-features", "flakes nix-command",
	}
	if o.Offline {
		args = append(args, "--offline")
	}
	return args
}

// evalEnv assembles the environment variable protocol shared by the
// embedded expressions. Unfree, insecure and broken packages are allowed
// so that evaluation never refuses to describe a derivation we were asked
// about.
func (o EvalOptions) evalEnv() map[string]string {
	env := map[string]string{
		"TARGET_FLAKE_REF":       o.FlakeRef,
		"NIXPKGS_ALLOW_UNFREE":   "1",
		"NIXPKGS_ALLOW_INSECURE": "1",
		"NIXPKGS_ALLOW_BROKEN":   "1",
	}
	if o.System != "" {
		env["TARGET_SYSTEM"] = o.System
	}
	return env
}
